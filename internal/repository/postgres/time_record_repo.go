package postgres

import (
	"context"
	"fmt"
	"time"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/timer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TotalsByTaskSince: задачи без записей в окне отсекаются самим GROUP BY.
// Журнал не чистится при удалении задачи, поэтому удалённые задачи отсекает JOIN
func (s *Storage) TotalsByTaskSince(ctx context.Context, since time.Time, limit int) ([]timer.TaskTotal, error) {
	start := time.Now()

	query := `SELECT r.task_id, SUM(r.duration_ns)::BIGINT AS total
				FROM time_records r
				JOIN tasks t ON t.uuid = r.task_id
				WHERE r.started_at >= $1
				GROUP BY r.task_id
				HAVING SUM(r.duration_ns) IS NOT NULL
				ORDER BY total DESC, r.task_id
				LIMIT $2`

	rows, err := s.pool.Query(ctx, query, since.UTC(), limit)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать время по задачам", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("время по задачам: %w", err)
	}
	defer rows.Close()

	totals := []timer.TaskTotal{}
	for rows.Next() {
		var (
			taskID uuid.UUID
			total  int64
		)
		if err := rows.Scan(&taskID, &total); err != nil {
			return nil, fmt.Errorf("сканирование итога: %w", err)
		}
		totals = append(totals, timer.TaskTotal{TaskID: taskID, Total: time.Duration(total)})
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnSlow("totals_by_task", start, 200*time.Millisecond)
	return totals, nil
}

// OwnerTotalBetween возвращает nil, если SUM вернул NULL
func (s *Storage) OwnerTotalBetween(ctx context.Context, owner uuid.UUID, from, to time.Time) (*time.Duration, error) {
	start := time.Now()

	query := `SELECT SUM(duration_ns)::BIGINT
				FROM time_records
				WHERE owner_id = $1
					AND started_at >= $2
					AND started_at <= $3`

	var total *int64
	if err := s.pool.QueryRow(ctx, query, owner, from.UTC(), to.UTC()).Scan(&total); err != nil {
		logger.Error("Repository: Не удалось посчитать время владельца", err)
		return nil, fmt.Errorf("время владельца: %w", err)
	}

	warnSlow("owner_total", start, 100*time.Millisecond)
	if total == nil {
		return nil, nil
	}
	d := time.Duration(*total)
	return &d, nil
}

func (s *Storage) TimeRecordsByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]*timer.TimeRecord, error) {
	start := time.Now()
	if page < 1 || limit < 1 {
		return []*timer.TimeRecord{}, nil
	}
	offset := (page - 1) * limit

	query := `SELECT uuid, task_id, owner_id, started_at, duration_ns
				FROM time_records
				WHERE owner_id = $1
				ORDER BY created_at DESC, started_at DESC
				LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, owner, limit, offset)
	if err != nil {
		logger.Error("Repository: Не удалось получить журнал", err)
		return nil, fmt.Errorf("получение журнала: %w", err)
	}
	defer rows.Close()

	records := []*timer.TimeRecord{}
	for rows.Next() {
		r := &timer.TimeRecord{}
		var duration int64
		if err := rows.Scan(&r.UUID, &r.TaskID, &r.OwnerID, &r.StartedAt, &duration); err != nil {
			return nil, fmt.Errorf("сканирование записи: %w", err)
		}
		r.StartedAt = r.StartedAt.UTC()
		r.Duration = time.Duration(duration)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnSlow("list_time_records", start, time.Millisecond*50+time.Millisecond*10*time.Duration(limit))
	return records, nil
}
