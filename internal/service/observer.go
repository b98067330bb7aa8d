package service

import (
	"context"
	"errors"
	"fmt"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/task"
	"timeTracker/internal/notify"
	"timeTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskMutationObserver сравнивает состояние задачи до и после изменения
// и формирует уведомления. Сам ничего не отправляет
type TaskMutationObserver struct {
	comments CommentRepository
	users    UserRepository
	from     string
}

func NewTaskMutationObserver(comments CommentRepository, users UserRepository, from string) *TaskMutationObserver {
	return &TaskMutationObserver{
		comments: comments,
		users:    users,
		from:     from,
	}
}

func (o *TaskMutationObserver) ApplyTaskUpdate(ctx context.Context, taskID uuid.UUID, old, updated task.Task) ([]notify.Event, error) {
	var events []notify.Event
	emails := make(map[uuid.UUID]string)

	if old.Status != task.StatusCompleted && updated.Status == task.StatusCompleted {
		comments, err := o.comments.CommentsByTask(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("получение комментариев задачи %s: %w", taskID, err)
		}

		// по письму на каждый комментарий, без схлопывания авторов
		for _, c := range comments {
			email, ok, err := o.email(ctx, emails, c.OwnerID)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			events = append(events, notify.TaskCompleted(taskID, updated.Title, o.from, email))
		}
	}

	if old.OwnerID != updated.OwnerID && updated.HasOwner() {
		email, ok, err := o.email(ctx, emails, updated.OwnerID)
		if err != nil {
			return nil, err
		}
		if ok {
			events = append(events, notify.Reassigned(taskID, updated.Title, o.from, email))
		}
	}

	return events, nil
}

// CommentAdded уведомляет владельца задачи о новом комментарии
func (o *TaskMutationObserver) CommentAdded(ctx context.Context, t task.Task, c task.Comment) ([]notify.Event, error) {
	if !t.HasOwner() {
		return nil, nil
	}

	email, ok, err := o.email(ctx, make(map[uuid.UUID]string), t.OwnerID)
	if err != nil || !ok {
		return nil, err
	}
	return []notify.Event{notify.NewComment(t.UUID, t.Title, c.Text, o.from, email)}, nil
}

func (o *TaskMutationObserver) email(ctx context.Context, cache map[uuid.UUID]string, id uuid.UUID) (string, bool, error) {
	if id == uuid.Nil {
		return "", false, nil
	}
	if email, ok := cache[id]; ok {
		return email, true, nil
	}

	u, err := o.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Service: Получатель уведомления не найден", zap.String("user_id", id.String()))
			return "", false, nil
		}
		return "", false, fmt.Errorf("получение пользователя %s: %w", id, err)
	}

	cache[id] = u.Email
	return u.Email, true, nil
}
