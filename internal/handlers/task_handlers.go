package handlers

import (
	"net/http"
	"time"

	"timeTracker/internal/handlers/dto"
	"timeTracker/internal/logger"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис нездоров", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "time-tracker"))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "time-tracker"))
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.GetTasks(r.Context(), page, limit)
	if err != nil {
		handleServiceError(w, r, err, "get_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("page", page),
		toPayload("limit", limit))
}

// PostTask создаёт задачу, владелец - текущий пользователь
func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if request.Title == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), request.Title, request.Description, userID)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	found, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(found))
}

// UpdateTaskByID частично обновляет задачу, уведомления уходят в фоне
func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, events, err := h.TaskService.UpdateTask(r.Context(), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Int("notifications", len(events)),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.UpdateTaskResponse{
		Task:          dto.FromTask(updated),
		Notifications: len(events),
	})
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PostTaskComment - POST /tasks/{id}/comments
func (h *TaskHandler) PostTaskComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.CreateCommentRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	request.TaskID = id

	h.createComment(w, r, request)
}

// PostComment - POST /comments, задача передаётся в теле
func (h *TaskHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateCommentRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	h.createComment(w, r, request)
}

func (h *TaskHandler) createComment(w http.ResponseWriter, r *http.Request, request dto.CreateCommentRequest) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	comment, err := h.TaskService.CreateComment(r.Context(), request.TaskID, userID, request.Text)
	if err != nil {
		handleServiceError(w, r, err, "create_comment")
		return
	}

	responseWithBody(w, http.StatusCreated, dto.FromComment(comment))
}

func (h *TaskHandler) GetTaskComments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.TaskService.CommentsByTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_comments")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromComments(comments))
}
