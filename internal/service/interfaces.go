package service

import (
	"context"
	"time"

	"timeTracker/internal/models/task"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/models/user"
	"timeTracker/internal/notify"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Delete(context.Context, uuid.UUID) error
	GetAllWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error)
}

type CommentRepository interface {
	CreateComment(context.Context, *task.Comment) error
	CommentsByTask(context.Context, uuid.UUID) ([]*task.Comment, error)
}

type UserRepository interface {
	CreateUser(context.Context, *user.User) error
	GetUserByID(context.Context, uuid.UUID) (*user.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]*user.User, error)
}

// TimerRepository: переходы состояний атомарны на стороне хранилища,
// при несовпадении состояния возвращается repository.ErrVersionConflict
type TimerRepository interface {
	GetOrCreateTimer(context.Context, timer.Key) (*timer.Timer, bool, error)
	FindTimer(context.Context, timer.Key) (*timer.Timer, error)
	MarkTimerStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	FinishTimer(ctx context.Context, timerID uuid.UUID, record *timer.TimeRecord) error
}

type TimeRecordRepository interface {
	TotalsByTaskSince(ctx context.Context, since time.Time, limit int) ([]timer.TaskTotal, error)
	OwnerTotalBetween(ctx context.Context, owner uuid.UUID, from, to time.Time) (*time.Duration, error)
	TimeRecordsByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]*timer.TimeRecord, error)
}

// Locker сериализует операции над одним ключом, возвращает функцию освобождения
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// EventPublisher принимает события после фиксации изменений
type EventPublisher interface {
	Publish(ctx context.Context, events []notify.Event)
}

type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
