package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/task"
	"timeTracker/internal/notify"
	"timeTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	tasks     TaskRepository
	comments  CommentRepository
	users     UserRepository
	observer  *TaskMutationObserver
	publisher EventPublisher
}

func NewTaskService(tasks TaskRepository, comments CommentRepository, users UserRepository, observer *TaskMutationObserver, publisher EventPublisher) *TaskService {
	return &TaskService{
		tasks:     tasks,
		comments:  comments,
		users:     users,
		observer:  observer,
		publisher: publisher,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string, ownerID uuid.UUID) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}
	if err := s.ensureUser(ctx, ownerID); err != nil {
		return nil, err
	}

	newTask := &task.Task{
		UUID:        uuid.New(),
		Title:       title,
		Description: description,
		Status:      task.StatusInProgress,
		OwnerID:     ownerID,
	}

	if err := s.tasks.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.String("task_id", newTask.UUID.String()))
	return newTask, nil
}

func (s *TaskService) GetTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	tasks, err := s.tasks.GetAllWithLimit(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(ResourceTask, id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// UpdateTask применяет опции, сохраняет задачу и публикует уведомления об изменении.
// Возвращает обновлённую задачу и сформированные события
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, []notify.Event, error) {
	current, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	old := current.Snapshot()
	task.Apply(current, options...)

	if !current.Status.Valid() {
		return nil, nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", current.Status))
	}
	if strings.TrimSpace(current.Title) == "" {
		return nil, nil, NewValidationError("title", "не может быть пустым")
	}
	if current.OwnerID != old.OwnerID {
		if err := s.ensureUser(ctx, current.OwnerID); err != nil {
			return nil, nil, err
		}
	}

	start := time.Now()
	if err := s.tasks.Update(ctx, current); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, nil, NewVersionConflict(ResourceTask, id.String(), err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, nil, NewNotFound(ResourceTask, id.String())
		}
		return nil, nil, fmt.Errorf("обновление задачи: %w", err)
	}

	// уведомления не влияют на результат обновления
	events, err := s.observer.ApplyTaskUpdate(ctx, id, old, current.Snapshot())
	if err != nil {
		logger.Error("Service: Не удалось сформировать уведомления", err, zap.String("task_id", id.String()))
	}
	s.publish(ctx, events)

	logger.Info("Service: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Int("version", current.Version),
		zap.Int("events", len(events)),
		zap.Duration("took", time.Since(start)))
	return current, events, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound(ResourceTask, id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) CreateComment(ctx context.Context, taskID, ownerID uuid.UUID, text string) (*task.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("text", "не может быть пустым")
	}

	t, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	c := &task.Comment{
		UUID:    uuid.New(),
		TaskID:  taskID,
		OwnerID: ownerID,
		Text:    text,
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound(ResourceTask, taskID.String())
		}
		return nil, fmt.Errorf("создание комментария: %w", err)
	}

	events, err := s.observer.CommentAdded(ctx, *t, *c)
	if err != nil {
		logger.Error("Service: Не удалось сформировать уведомление о комментарии", err, zap.String("task_id", taskID.String()))
	}
	s.publish(ctx, events)

	return c, nil
}

func (s *TaskService) CommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*task.Comment, error) {
	if _, err := s.GetTaskByID(ctx, taskID); err != nil {
		return nil, err
	}

	comments, err := s.comments.CommentsByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	return comments, nil
}

func (s *TaskService) publish(ctx context.Context, events []notify.Event) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, events)
}

// ensureUser: uuid.Nil означает "без владельца" и допустим
func (s *TaskService) ensureUser(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound(ResourceUser, id.String())
		}
		return fmt.Errorf("получение пользователя: %w", err)
	}
	return nil
}
