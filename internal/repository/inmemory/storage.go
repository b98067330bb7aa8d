package inmemory

import (
	"context"
	"sync"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/task"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/models/user"

	"github.com/google/uuid"
)

// Storage держит все сущности под одним мьютексом,
// поэтому остановка таймера и запись в журнал происходят атомарно
type Storage struct {
	mtx *sync.RWMutex

	tasks   map[uuid.UUID]*task.Task
	taskIDs []uuid.UUID

	comments []*task.Comment

	users   map[uuid.UUID]*user.User
	userIDs []uuid.UUID
	byEmail map[string]uuid.UUID

	timers      map[uuid.UUID]*timer.Timer
	timersByKey map[timer.Key]uuid.UUID

	records []*timer.TimeRecord
}

func NewStorage() *Storage {
	return &Storage{
		mtx:         &sync.RWMutex{},
		tasks:       make(map[uuid.UUID]*task.Task),
		taskIDs:     []uuid.UUID{},
		comments:    []*task.Comment{},
		users:       make(map[uuid.UUID]*user.User),
		userIDs:     []uuid.UUID{},
		byEmail:     make(map[string]uuid.UUID),
		timers:      make(map[uuid.UUID]*timer.Timer),
		timersByKey: make(map[timer.Key]uuid.UUID),
		records:     []*timer.TimeRecord{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func paginate(page, limit int) (offset int, ok bool) {
	if page < 1 || limit < 1 {
		return 0, false
	}
	return (page - 1) * limit, true
}
