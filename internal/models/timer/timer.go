package timer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Timer - рабочий регистр для пары (задача, владелец), история хранится в TimeRecord
type Timer struct {
	UUID      uuid.UUID  `json:"uuid" db:"uuid"`
	TaskID    uuid.UUID  `json:"task_id" db:"task_id"`
	OwnerID   uuid.UUID  `json:"owner_id" db:"owner_id"`
	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	IsStarted bool       `json:"is_started" db:"is_started"`
}

type Key struct {
	TaskID  uuid.UUID
	OwnerID uuid.UUID
}

func (k Key) String() string {
	return fmt.Sprintf("timer:%s:%s", k.TaskID, k.OwnerID)
}

func (t *Timer) Key() Key {
	return Key{TaskID: t.TaskID, OwnerID: t.OwnerID}
}

// TimeRecord неизменяем после создания
type TimeRecord struct {
	UUID      uuid.UUID     `json:"uuid" db:"uuid"`
	TaskID    uuid.UUID     `json:"task_id" db:"task_id"`
	OwnerID   uuid.UUID     `json:"owner_id" db:"owner_id"`
	StartedAt time.Time     `json:"started_at" db:"started_at"`
	Duration  time.Duration `json:"duration" db:"duration_ns"`
}

type TaskTotal struct {
	TaskID uuid.UUID     `json:"task_id"`
	Total  time.Duration `json:"total_duration"`
}
