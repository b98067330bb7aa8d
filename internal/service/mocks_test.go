package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"timeTracker/internal/models/task"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/models/user"
	"timeTracker/internal/notify"
	"timeTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAllWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTimerRepository struct {
	mock.Mock
}

var _ service.TimerRepository = (*MockTimerRepository)(nil)

func (m *MockTimerRepository) GetOrCreateTimer(ctx context.Context, key timer.Key) (*timer.Timer, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*timer.Timer), args.Bool(1), args.Error(2)
}

func (m *MockTimerRepository) FindTimer(ctx context.Context, key timer.Key) (*timer.Timer, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timer.Timer), args.Error(1)
}

func (m *MockTimerRepository) MarkTimerStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	args := m.Called(ctx, id, startedAt)
	return args.Error(0)
}

func (m *MockTimerRepository) FinishTimer(ctx context.Context, timerID uuid.UUID, record *timer.TimeRecord) error {
	args := m.Called(ctx, timerID, record)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

var _ service.CommentRepository = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) CreateComment(ctx context.Context, c *task.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommentRepository) CommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*task.Comment, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Comment), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

var _ service.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) CreateUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, page, limit int) ([]*user.User, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

type MockTimeRecordRepository struct {
	mock.Mock
}

var _ service.TimeRecordRepository = (*MockTimeRecordRepository)(nil)

func (m *MockTimeRecordRepository) TotalsByTaskSince(ctx context.Context, since time.Time, limit int) ([]timer.TaskTotal, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timer.TaskTotal), args.Error(1)
}

func (m *MockTimeRecordRepository) OwnerTotalBetween(ctx context.Context, owner uuid.UUID, from, to time.Time) (*time.Duration, error) {
	args := m.Called(ctx, owner, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Duration), args.Error(1)
}

func (m *MockTimeRecordRepository) TimeRecordsByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]*timer.TimeRecord, error) {
	args := m.Called(ctx, owner, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timer.TimeRecord), args.Error(1)
}

// noopLocker для тестов на моках, где параллелизма нет
type noopLocker struct{}

func (noopLocker) Lock(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now.UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, events []notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) Events() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Event(nil), p.events...)
}

// hasCode проверяет код BusinessError в цепочке ошибок
func hasCode(err error, code string) bool {
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		return busErr.Code == code
	}
	return false
}
