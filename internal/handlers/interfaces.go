package handlers

import (
	"context"
	"time"

	"timeTracker/internal/models/task"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/models/user"
	"timeTracker/internal/notify"
	"timeTracker/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, title, description string, ownerID uuid.UUID) (*task.Task, error)
	GetTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, []notify.Event, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	CreateComment(ctx context.Context, taskID, ownerID uuid.UUID, text string) (*task.Comment, error)
	CommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*task.Comment, error)
}

type TimerService interface {
	StartTimer(ctx context.Context, taskID, ownerID uuid.UUID) (*timer.Timer, service.StartResult, error)
	StopTimer(ctx context.Context, taskID, ownerID uuid.UUID) (*timer.TimeRecord, error)
}

type ReportService interface {
	TopTasksByMonthlyDuration(ctx context.Context, limit int) ([]timer.TaskTotal, error)
	OwnerMonthlyTotal(ctx context.Context, owner uuid.UUID) (*time.Duration, error)
	TimeRecordsByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]*timer.TimeRecord, error)
}

type UserService interface {
	CreateUser(ctx context.Context, email string) (*user.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]*user.User, error)
}
