package inmemory

import (
	"context"
	"time"

	"timeTracker/internal/models/task"
	repo "timeTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateComment(ctx context.Context, comment *task.Comment) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[comment.TaskID]; !ok {
		return repo.ErrNotFound
	}

	comment.CreatedAt = time.Now().UTC()
	cp := *comment
	s.comments = append(s.comments, &cp)
	return nil
}

// CommentsByTask отдаёт комментарии в порядке добавления
func (s *Storage) CommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*task.Comment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Comment{}
	for _, c := range s.comments {
		if c.TaskID == taskID {
			cp := *c
			res = append(res, &cp)
		}
	}
	return res, nil
}
