package inmemory

import (
	"context"
	"strings"
	"time"

	"timeTracker/internal/models/user"
	repo "timeTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return repo.ErrAlreadyExists
	}

	u.CreatedAt = time.Now().UTC()
	cp := *u
	s.users[u.UUID] = &cp
	s.userIDs = append(s.userIDs, u.UUID)
	s.byEmail[email] = u.UUID
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ListUsers отдаёт пользователей в порядке регистрации
func (s *Storage) ListUsers(ctx context.Context, page, limit int) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*user.User{}
	offset, ok := paginate(page, limit)
	if !ok {
		return res, nil
	}

	for i := offset; i < len(s.userIDs) && len(res) < limit; i++ {
		cp := *s.users[s.userIDs[i]]
		res = append(res, &cp)
	}
	return res, nil
}
