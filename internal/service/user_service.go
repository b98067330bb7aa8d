package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"timeTracker/internal/logger"
	"timeTracker/internal/models/user"
	"timeTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) CreateUser(ctx context.Context, email string) (*user.User, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, NewValidationError("email", "некорректный адрес")
	}

	u := &user.User{
		UUID:  uuid.New(),
		Email: email,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, NewValidationError("email", "адрес уже зарегистрирован")
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь создан", zap.String("user_id", u.UUID.String()))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, id.String())
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]*user.User, error) {
	users, err := s.users.ListUsers(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return users, nil
}
