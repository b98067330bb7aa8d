package service

import (
	"context"
	"fmt"
	"time"

	"timeTracker/internal/models/timer"

	"github.com/google/uuid"
)

// StartOfMonth - полночь первого числа текущего месяца по UTC
func StartOfMonth(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type ReportService struct {
	records TimeRecordRepository
	now     Clock
}

func NewReportService(records TimeRecordRepository, clock Clock) *ReportService {
	if clock == nil {
		clock = utcNow
	}
	return &ReportService{
		records: records,
		now:     clock,
	}
}

// TopTasksByMonthlyDuration - задачи с наибольшим учтённым временем за текущий месяц
func (s *ReportService) TopTasksByMonthlyDuration(ctx context.Context, limit int) ([]timer.TaskTotal, error) {
	if limit <= 0 {
		return nil, NewValidationError("limit", "должен быть больше нуля")
	}

	since := StartOfMonth(s.now())
	totals, err := s.records.TotalsByTaskSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("подсчёт времени по задачам: %w", err)
	}
	return totals, nil
}

// OwnerMonthlyTotal возвращает nil, если за месяц нет ни одной записи
func (s *ReportService) OwnerMonthlyTotal(ctx context.Context, owner uuid.UUID) (*time.Duration, error) {
	now := s.now().UTC()
	total, err := s.records.OwnerTotalBetween(ctx, owner, StartOfMonth(now), now)
	if err != nil {
		return nil, fmt.Errorf("подсчёт времени пользователя: %w", err)
	}
	return total, nil
}

func (s *ReportService) TimeRecordsByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]*timer.TimeRecord, error) {
	records, err := s.records.TimeRecordsByOwner(ctx, owner, page, limit)
	if err != nil {
		return nil, fmt.Errorf("получение записей времени: %w", err)
	}
	return records, nil
}
