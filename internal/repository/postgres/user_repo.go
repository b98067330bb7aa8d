package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/user"
	repo "timeTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	start := time.Now()

	query := `INSERT INTO users (uuid, email, created_at)
				VALUES ($1, $2, $3)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, u.UUID, u.Email, time.Now().UTC()).Scan(&u.CreatedAt)
	if err != nil {
		err = mapError(err)
		if !errors.Is(err, repo.ErrAlreadyExists) {
			logger.Error("Repository: Не удалось добавить пользователя", err)
		}
		return fmt.Errorf("добавление пользователя: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()

	warnSlow("create_user", start, 50*time.Millisecond)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	start := time.Now()

	u := &user.User{}
	err := s.pool.QueryRow(ctx, `SELECT uuid, email, created_at FROM users WHERE uuid = $1`, id).
		Scan(&u.UUID, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()

	warnSlow("get_user", start, 100*time.Millisecond)
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context, page, limit int) ([]*user.User, error) {
	start := time.Now()
	if page < 1 || limit < 1 {
		return []*user.User{}, nil
	}

	query := `SELECT uuid, email, created_at
				FROM users
				ORDER BY created_at, uuid
				LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.UUID, &u.Email, &u.CreatedAt); err != nil {
			logger.Warn("Repository: Ошибка сканирования пользователя", zap.Error(err))
			continue
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnSlow("list_users", start, 200*time.Millisecond)
	return users, nil
}
