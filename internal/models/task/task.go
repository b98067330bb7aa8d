package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID        uuid.UUID  `json:"uuid" db:"uuid"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	Version     int        `db:"version" json:"version"`
}

type Status string

const StatusInProgress Status = "in_progress"
const StatusCompleted Status = "completed"

func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// HasOwner - задача без владельца допустима, уведомлять некого
func (t *Task) HasOwner() bool {
	return t.OwnerID != uuid.Nil
}

// Snapshot возвращает копию задачи, чтобы сравнить состояние до и после обновления
func (t *Task) Snapshot() Task {
	cp := *t
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		cp.UpdatedAt = &updated
	}
	return cp
}

type Comment struct {
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	TaskID    uuid.UUID `json:"task_id" db:"task_id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
