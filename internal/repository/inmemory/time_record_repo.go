package inmemory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"timeTracker/internal/models/timer"

	"github.com/google/uuid"
)

// TotalsByTaskSince суммирует записи начиная с since (включительно),
// задачи без записей в окне и удалённые задачи не попадают в результат
func (s *Storage) TotalsByTaskSince(ctx context.Context, since time.Time, limit int) ([]timer.TaskTotal, error) {
	s.mtx.RLock()
	sums := make(map[uuid.UUID]time.Duration)
	for _, r := range s.records {
		if r.StartedAt.Before(since) {
			continue
		}
		if _, ok := s.tasks[r.TaskID]; !ok {
			continue
		}
		sums[r.TaskID] += r.Duration
	}
	s.mtx.RUnlock()

	res := make([]timer.TaskTotal, 0, len(sums))
	for id, total := range sums {
		res = append(res, timer.TaskTotal{TaskID: id, Total: total})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Total != res[j].Total {
			return res[i].Total > res[j].Total
		}
		return bytes.Compare(res[i].TaskID[:], res[j].TaskID[:]) < 0
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// OwnerTotalBetween возвращает nil, если в окне [from, to] нет записей
func (s *Storage) OwnerTotalBetween(ctx context.Context, owner uuid.UUID, from, to time.Time) (*time.Duration, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var total *time.Duration
	for _, r := range s.records {
		if r.OwnerID != owner || r.StartedAt.Before(from) || r.StartedAt.After(to) {
			continue
		}
		if total == nil {
			total = new(time.Duration)
		}
		*total += r.Duration
	}
	return total, nil
}

// записи владельца, новые первыми
func (s *Storage) TimeRecordsByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]*timer.TimeRecord, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*timer.TimeRecord{}
	offset, ok := paginate(page, limit)
	if !ok {
		return res, nil
	}

	skipped := 0
	for i := len(s.records) - 1; i >= 0 && len(res) < limit; i-- {
		r := s.records[i]
		if r.OwnerID != owner {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *r
		res = append(res, &cp)
	}
	return res, nil
}
