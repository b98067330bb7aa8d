package service

import (
	"context"
	"errors"
	"fmt"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StartResult int

const (
	TimerCreated StartResult = iota + 1
	TimerFound
)

func (r StartResult) String() string {
	switch r {
	case TimerCreated:
		return "created"
	case TimerFound:
		return "found"
	}
	return "unknown"
}

// TimerService ведёт таймеры пар (задача, владелец) и пишет журнал TimeRecord
type TimerService struct {
	tasks  TaskRepository
	timers TimerRepository
	locker Locker
	now    Clock
}

func NewTimerService(tasks TaskRepository, timers TimerRepository, locker Locker, clock Clock) *TimerService {
	if clock == nil {
		clock = utcNow
	}
	return &TimerService{
		tasks:  tasks,
		timers: timers,
		locker: locker,
		now:    clock,
	}
}

// StartTimer запускает таймер; уже запущенный таймер возвращается без изменений
func (s *TimerService) StartTimer(ctx context.Context, taskID, ownerID uuid.UUID) (*timer.Timer, StartResult, error) {
	if ownerID == uuid.Nil {
		return nil, 0, NewValidationError("owner_id", "пользователь не указан")
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", taskID.String()))
			return nil, 0, NewNotFound(ResourceTask, taskID.String())
		}
		return nil, 0, fmt.Errorf("получение задачи: %w", err)
	}

	key := timer.Key{TaskID: taskID, OwnerID: ownerID}
	unlock, err := s.locker.Lock(ctx, key.String())
	if err != nil {
		return nil, 0, fmt.Errorf("блокировка таймера %s: %w", key, err)
	}
	defer unlock()

	t, created, err := s.timers.GetOrCreateTimer(ctx, key)
	if err != nil {
		return nil, 0, fmt.Errorf("получение таймера: %w", err)
	}

	result := TimerFound
	if created {
		result = TimerCreated
		logger.Info("Service: Создан таймер",
			zap.String("timer_id", t.UUID.String()),
			zap.String("task_id", taskID.String()),
			zap.String("owner_id", ownerID.String()))
	}

	if t.IsStarted {
		return t, result, nil
	}

	now := s.now().UTC()
	if err := s.timers.MarkTimerStarted(ctx, t.UUID, now); err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, 0, fmt.Errorf("запуск таймера: %w", err)
		}
		// таймер уже запустил другой экземпляр сервиса
		current, err := s.timers.FindTimer(ctx, t.Key())
		if err != nil {
			return nil, 0, fmt.Errorf("получение таймера: %w", err)
		}
		return current, result, nil
	}

	t.IsStarted = true
	t.StartedAt = &now

	logger.Info("Service: Таймер запущен",
		zap.String("timer_id", t.UUID.String()),
		zap.Time("started_at", now))
	return t, result, nil
}

// StopTimer останавливает таймер и возвращает созданную запись журнала
func (s *TimerService) StopTimer(ctx context.Context, taskID, ownerID uuid.UUID) (*timer.TimeRecord, error) {
	key := timer.Key{TaskID: taskID, OwnerID: ownerID}
	unlock, err := s.locker.Lock(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("блокировка таймера %s: %w", key, err)
	}
	defer unlock()

	t, err := s.timers.FindTimer(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound(ResourceTimer, key.String())
		}
		return nil, fmt.Errorf("получение таймера: %w", err)
	}

	if !t.IsStarted || t.StartedAt == nil {
		return nil, NewNoOngoingTimer(taskID.String(), t.UUID.String())
	}

	now := s.now().UTC()
	duration := now.Sub(*t.StartedAt)
	if duration < 0 {
		logger.Warn("Service: Время остановки раньше времени запуска",
			zap.String("timer_id", t.UUID.String()),
			zap.Time("started_at", *t.StartedAt),
			zap.Time("stopped_at", now))
		duration = 0
	}

	record := &timer.TimeRecord{
		UUID:      uuid.New(),
		TaskID:    taskID,
		OwnerID:   ownerID,
		StartedAt: t.StartedAt.UTC(),
		Duration:  duration,
	}

	if err := s.timers.FinishTimer(ctx, t.UUID, record); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, s.stopConflict(ctx, t, err)
		}
		return nil, fmt.Errorf("остановка таймера: %w", err)
	}

	logger.Info("Service: Таймер остановлен",
		zap.String("timer_id", t.UUID.String()),
		zap.Duration("duration", duration))
	return record, nil
}

// stopConflict: таймер изменили между чтением и записью. Остановлен - ошибка клиента,
// перезапущен - запись по старому запуску отброшена, клиент может повторить
func (s *TimerService) stopConflict(ctx context.Context, stale *timer.Timer, cause error) error {
	current, err := s.timers.FindTimer(ctx, stale.Key())
	if err != nil {
		return fmt.Errorf("получение таймера: %w", err)
	}
	if !current.IsStarted {
		return NewNoOngoingTimer(stale.TaskID.String(), stale.UUID.String())
	}

	logger.Warn("Service: Таймер перезапущен во время остановки",
		zap.String("timer_id", stale.UUID.String()),
		zap.Timep("read_started_at", stale.StartedAt),
		zap.Timep("current_started_at", current.StartedAt))
	return NewVersionConflict(ResourceTimer, stale.UUID.String(), cause)
}
