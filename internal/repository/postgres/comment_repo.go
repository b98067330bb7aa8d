package postgres

import (
	"context"
	"fmt"
	"time"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Storage) CreateComment(ctx context.Context, comment *task.Comment) error {
	start := time.Now()

	query := `INSERT INTO comments (uuid, task_id, owner_id, text, created_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		comment.UUID,
		comment.TaskID,
		comment.OwnerID,
		comment.Text,
		time.Now().UTC(),
	).Scan(&comment.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить комментарий", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление комментария: %w", mapError(err))
	}
	comment.CreatedAt = comment.CreatedAt.UTC()

	warnSlow("create_comment", start, 50*time.Millisecond)
	return nil
}

// CommentsByTask отдаёт комментарии в порядке добавления
func (s *Storage) CommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*task.Comment, error) {
	start := time.Now()

	query := `SELECT uuid, task_id, owner_id, text, created_at
				FROM comments
				WHERE task_id = $1
				ORDER BY seq`

	rows, err := s.pool.Query(ctx, query, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось получить комментарии", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	defer rows.Close()

	comments := []*task.Comment{}
	for rows.Next() {
		c := &task.Comment{}
		if err := rows.Scan(&c.UUID, &c.TaskID, &c.OwnerID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("сканирование комментария: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnSlow("list_comments", start, 100*time.Millisecond)
	return comments, nil
}
