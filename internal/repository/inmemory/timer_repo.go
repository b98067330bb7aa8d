package inmemory

import (
	"context"
	"time"

	"timeTracker/internal/models/timer"
	repo "timeTracker/internal/repository"

	"github.com/google/uuid"
)

func copyTimer(t *timer.Timer) *timer.Timer {
	cp := *t
	if t.StartedAt != nil {
		startedAt := *t.StartedAt
		cp.StartedAt = &startedAt
	}
	return &cp
}

// GetOrCreateTimer возвращает true, если таймер был создан этим вызовом
func (s *Storage) GetOrCreateTimer(ctx context.Context, key timer.Key) (*timer.Timer, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if id, ok := s.timersByKey[key]; ok {
		return copyTimer(s.timers[id]), false, nil
	}

	t := &timer.Timer{
		UUID:    uuid.New(),
		TaskID:  key.TaskID,
		OwnerID: key.OwnerID,
	}
	s.timers[t.UUID] = t
	s.timersByKey[t.Key()] = t.UUID
	return copyTimer(t), true, nil
}

func (s *Storage) FindTimer(ctx context.Context, key timer.Key) (*timer.Timer, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.timersByKey[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyTimer(s.timers[id]), nil
}

// MarkTimerStarted переводит таймер Idle -> Running, иначе ErrVersionConflict
func (s *Storage) MarkTimerStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return repo.ErrNotFound
	}
	if t.IsStarted {
		return repo.ErrVersionConflict
	}

	startedAt = startedAt.UTC()
	t.IsStarted = true
	t.StartedAt = &startedAt
	return nil
}

// FinishTimer переводит таймер Running -> Idle и добавляет запись в журнал.
// record.StartedAt должен совпадать с текущим запуском таймера, иначе ErrVersionConflict
func (s *Storage) FinishTimer(ctx context.Context, timerID uuid.UUID, record *timer.TimeRecord) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.timers[timerID]
	if !ok {
		return repo.ErrNotFound
	}
	if !t.IsStarted || t.StartedAt == nil || !t.StartedAt.Equal(record.StartedAt) {
		return repo.ErrVersionConflict
	}

	t.IsStarted = false

	cp := *record
	cp.StartedAt = cp.StartedAt.UTC()
	s.records = append(s.records, &cp)
	return nil
}
