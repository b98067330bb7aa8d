package dto

import (
	"time"

	"timeTracker/internal/models/task"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/models/user"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest: отсутствующее поле не меняется, owner_id = нулевой uuid снимает владельца
type UpdateTaskRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *task.Status `json:"status,omitempty"`
	OwnerID     *uuid.UUID   `json:"owner_id,omitempty"`
}

func (r UpdateTaskRequest) Options() []task.TaskOption {
	var opts []task.TaskOption
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.Status != nil {
		opts = append(opts, task.WithStatus(*r.Status))
	}
	if r.OwnerID != nil {
		opts = append(opts, task.WithOwner(*r.OwnerID))
	}
	return opts
}

type TaskResponse struct {
	UUID        uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	OwnerID     *uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Version     int        `json:"version"`
}

func FromTask(t *task.Task) TaskResponse {
	res := TaskResponse{
		UUID:        t.UUID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
	if t.HasOwner() {
		owner := t.OwnerID
		res.OwnerID = &owner
	}
	return res
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type UpdateTaskResponse struct {
	Task          TaskResponse `json:"task"`
	Notifications int          `json:"notifications"`
}

type CreateCommentRequest struct {
	TaskID uuid.UUID `json:"task_id"`
	Text   string    `json:"text"`
}

type CommentResponse struct {
	UUID      uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func FromComments(comments []*task.Comment) []CommentResponse {
	result := make([]CommentResponse, len(comments))
	for i, c := range comments {
		result[i] = FromComment(c)
	}
	return result
}

func FromComment(c *task.Comment) CommentResponse {
	return CommentResponse{
		UUID:      c.UUID,
		TaskID:    c.TaskID,
		OwnerID:   c.OwnerID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

type TimerResponse struct {
	UUID      uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	StartedAt *time.Time `json:"started_at"`
	IsStarted bool       `json:"is_started"`
	Created   bool       `json:"created"`
}

func FromTimer(t *timer.Timer, created bool) TimerResponse {
	return TimerResponse{
		UUID:      t.UUID,
		TaskID:    t.TaskID,
		OwnerID:   t.OwnerID,
		StartedAt: t.StartedAt,
		IsStarted: t.IsStarted,
		Created:   created,
	}
}

// длительности отдаются секундами и строкой вида 1h30m0s
type TimeRecordResponse struct {
	UUID            uuid.UUID `json:"id"`
	TaskID          uuid.UUID `json:"task_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Duration        string    `json:"duration"`
}

func FromTimeRecord(r *timer.TimeRecord) TimeRecordResponse {
	return TimeRecordResponse{
		UUID:            r.UUID,
		TaskID:          r.TaskID,
		OwnerID:         r.OwnerID,
		StartedAt:       r.StartedAt,
		DurationSeconds: r.Duration.Seconds(),
		Duration:        r.Duration.String(),
	}
}

func FromTimeRecords(records []*timer.TimeRecord) []TimeRecordResponse {
	result := make([]TimeRecordResponse, len(records))
	for i, r := range records {
		result[i] = FromTimeRecord(r)
	}
	return result
}

type TaskTotalResponse struct {
	TaskID       uuid.UUID `json:"task_id"`
	TotalSeconds float64   `json:"total_seconds"`
	Total        string    `json:"total"`
}

func FromTaskTotals(totals []timer.TaskTotal) []TaskTotalResponse {
	result := make([]TaskTotalResponse, len(totals))
	for i, t := range totals {
		result[i] = TaskTotalResponse{
			TaskID:       t.TaskID,
			TotalSeconds: t.Total.Seconds(),
			Total:        t.Total.String(),
		}
	}
	return result
}

// OwnerTotalResponse: null означает, что записей за месяц нет
type OwnerTotalResponse struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	TotalSeconds *float64  `json:"total_seconds"`
	Total        *string   `json:"total"`
}

func FromOwnerTotal(owner uuid.UUID, total *time.Duration) OwnerTotalResponse {
	res := OwnerTotalResponse{OwnerID: owner}
	if total != nil {
		seconds := total.Seconds()
		str := total.String()
		res.TotalSeconds = &seconds
		res.Total = &str
	}
	return res
}

type CreateUserRequest struct {
	Email string `json:"email"`
}

type UserResponse struct {
	UUID      uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		UUID:      u.UUID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func FromUserList(users []*user.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}
