package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/timer"
	repo "timeTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func scanTimer(row pgx.Row) (*timer.Timer, error) {
	t := &timer.Timer{}
	if err := row.Scan(&t.UUID, &t.TaskID, &t.OwnerID, &t.StartedAt, &t.IsStarted); err != nil {
		return nil, err
	}
	if t.StartedAt != nil {
		startedAt := t.StartedAt.UTC()
		t.StartedAt = &startedAt
	}
	return t, nil
}

// GetOrCreateTimer опирается на уникальный индекс (task_id, owner_id):
// из двух конкурентных вставок строку создаст только одна
func (s *Storage) GetOrCreateTimer(ctx context.Context, key timer.Key) (*timer.Timer, bool, error) {
	start := time.Now()

	insert := `INSERT INTO timers (uuid, task_id, owner_id, is_started)
				VALUES ($1, $2, $3, FALSE)
				ON CONFLICT (task_id, owner_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, insert, uuid.New(), key.TaskID, key.OwnerID)
	if err != nil {
		logger.Error("Repository: Не удалось создать таймер", err, zap.String("key", key.String()))
		return nil, false, fmt.Errorf("создание таймера: %w", err)
	}

	t, err := s.FindTimer(ctx, key)
	if err != nil {
		return nil, false, err
	}

	warnSlow("get_or_create_timer", start, 100*time.Millisecond)
	return t, tag.RowsAffected() == 1, nil
}

func (s *Storage) FindTimer(ctx context.Context, key timer.Key) (*timer.Timer, error) {
	query := `SELECT uuid, task_id, owner_id, started_at, is_started
				FROM timers
				WHERE task_id = $1 AND owner_id = $2`

	t, err := scanTimer(s.pool.QueryRow(ctx, query, key.TaskID, key.OwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить таймер", err, zap.String("key", key.String()))
		return nil, fmt.Errorf("получение таймера: %w", err)
	}
	return t, nil
}

// MarkTimerStarted - compare-and-swap Idle -> Running на уровне строки
func (s *Storage) MarkTimerStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	start := time.Now()

	query := `UPDATE timers
				SET is_started = TRUE,
					started_at = $2
				WHERE uuid = $1 AND is_started = FALSE`

	tag, err := s.pool.Exec(ctx, query, id, startedAt.UTC())
	if err != nil {
		logger.Error("Repository: Не удалось запустить таймер", err)
		return fmt.Errorf("запуск таймера: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.timerConflict(ctx, id)
	}

	warnSlow("start_timer", start, 100*time.Millisecond)
	return nil
}

// FinishTimer в одной транзакции переводит таймер Running -> Idle и пишет журнал.
// record.StartedAt сверяется с заблокированной строкой
func (s *Storage) FinishTimer(ctx context.Context, timerID uuid.UUID, record *timer.TimeRecord) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		isStarted bool
		startedAt *time.Time
	)
	err = tx.QueryRow(ctx, `SELECT is_started, started_at FROM timers WHERE uuid = $1 FOR UPDATE`, timerID).
		Scan(&isStarted, &startedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		return fmt.Errorf("блокировка таймера: %w", err)
	}
	// запись построена по устаревшему чтению: таймер успели остановить и запустить заново
	if !isStarted || startedAt == nil || !sameInstant(*startedAt, record.StartedAt) {
		return repo.ErrVersionConflict
	}

	if _, err := tx.Exec(ctx, `UPDATE timers SET is_started = FALSE WHERE uuid = $1`, timerID); err != nil {
		logger.Error("Repository: Не удалось остановить таймер", err)
		return fmt.Errorf("остановка таймера: %w", err)
	}

	insert := `INSERT INTO time_records (uuid, task_id, owner_id, started_at, duration_ns)
				VALUES ($1, $2, $3, $4, $5)`
	_, err = tx.Exec(ctx, insert,
		record.UUID,
		record.TaskID,
		record.OwnerID,
		record.StartedAt.UTC(),
		int64(record.Duration),
	)
	if err != nil {
		logger.Error("Repository: Не удалось записать журнал времени", err)
		return fmt.Errorf("запись журнала: %w", mapError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	warnSlow("finish_timer", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) timerConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM timers WHERE uuid = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("проверка таймера: %w", err)
	}
	if !exists {
		return repo.ErrNotFound
	}
	return repo.ErrVersionConflict
}

// sameInstant сравнивает с точностью timestamptz (микросекунды)
func sameInstant(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < time.Microsecond
}
