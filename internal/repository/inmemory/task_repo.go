package inmemory

import (
	"context"
	"time"

	"timeTracker/internal/models/task"
	repo "timeTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[taskToCreate.UUID]; ok {
		return repo.ErrAlreadyExists
	}

	taskToCreate.CreatedAt = time.Now().UTC()
	taskToCreate.Version = 1

	stored := taskToCreate.Snapshot()
	s.tasks[taskToCreate.UUID] = &stored
	s.taskIDs = append(s.taskIDs, taskToCreate.UUID)
	return nil
}

// Update проверяет версию, как и postgres-хранилище
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.tasks[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}
	if existed.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	now := time.Now().UTC()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.Version++

	stored := taskToUpdate.Snapshot()
	s.tasks[taskToUpdate.UUID] = &stored
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := taskToGet.Snapshot()
	return &cp, nil
}

// удаление задачи вместе с комментариями; таймеры и журнал не трогаем
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.tasks, id)
	for ind, val := range s.taskIDs {
		if val == id {
			s.taskIDs = append(s.taskIDs[:ind], s.taskIDs[ind+1:]...)
			break
		}
	}

	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.TaskID != id {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return nil
}

// задачи в порядке создания
func (s *Storage) GetAllWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	offset, ok := paginate(page, limit)
	if !ok {
		return res, nil
	}

	for i := offset; i < len(s.taskIDs) && len(res) < limit; i++ {
		cp := s.tasks[s.taskIDs[i]].Snapshot()
		res = append(res, &cp)
	}
	return res, nil
}
