package handlers

import (
	"net/http"
	"time"

	"timeTracker/internal/handlers/dto"
	"timeTracker/internal/logger"
	"timeTracker/internal/service"

	"go.uber.org/zap"
)

const defaultTopLimit = 20

type TimerHandler struct {
	Timers  TimerService
	Reports ReportService
}

func NewTimerHandler(timers TimerService, reports ReportService) *TimerHandler {
	return &TimerHandler{
		Timers:  timers,
		Reports: reports,
	}
}

// StartTimer: 201 при первом запуске таймера, 200 если таймер уже был
func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	t, result, err := h.Timers.StartTimer(r.Context(), taskID, userID)
	if err != nil {
		handleServiceError(w, r, err, "start_timer")
		return
	}

	status := http.StatusOK
	if result == service.TimerCreated {
		status = http.StatusCreated
	}
	responseWithBody(w, status, dto.FromTimer(t, result == service.TimerCreated))
}

func (h *TimerHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	taskID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	record, err := h.Timers.StopTimer(r.Context(), taskID, userID)
	if err != nil {
		handleServiceError(w, r, err, "stop_timer")
		return
	}

	logger.Info("HTTP_OUT: Таймер остановлен",
		zap.String("task_id", taskID.String()),
		zap.Duration("tracked", record.Duration),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.FromTimeRecord(record))
}

func (h *TimerHandler) TopTasks(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", defaultTopLimit)
	if !ok {
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	totals, err := h.Reports.TopTasksByMonthlyDuration(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err, "top_tasks")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTaskTotals(totals))
}

func (h *TimerHandler) MonthlyTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	total, err := h.Reports.OwnerMonthlyTotal(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "monthly_total")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromOwnerTotal(userID, total))
}

func (h *TimerHandler) GetTimeLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	records, err := h.Reports.TimeRecordsByOwner(r.Context(), userID, page, limit)
	if err != nil {
		handleServiceError(w, r, err, "time_logs")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("timelogs", dto.FromTimeRecords(records)),
		toPayload("page", page),
		toPayload("limit", limit))
}
