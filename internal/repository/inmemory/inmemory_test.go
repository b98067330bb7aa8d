package inmemory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"timeTracker/internal/models/task"
	"timeTracker/internal/models/timer"
	"timeTracker/internal/models/user"
	"timeTracker/internal/repository"
	"timeTracker/internal/repository/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(title string) *task.Task {
	return &task.Task{
		UUID:   uuid.New(),
		Title:  title,
		Status: task.StatusInProgress,
	}
}

// TestStorage_HealthCheck тестирует проверку здоровья
func TestStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestStorage_CreateAndGet тестирует создание и получение задачи
func TestStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	taskToCreate := newTask("Test Task")
	require.NoError(t, storage.Create(ctx, taskToCreate))

	assert.False(t, taskToCreate.CreatedAt.IsZero())
	assert.Equal(t, 1, taskToCreate.Version)

	retrieved, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrieved.Title)

	// изменение полученной копии не влияет на хранилище
	retrieved.Title = "changed"
	again, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", again.Title)

	assert.ErrorIs(t, storage.Create(ctx, taskToCreate), repository.ErrAlreadyExists)
}

func TestStorage_GetByID_NotFound(t *testing.T) {
	storage := inmemory.NewStorage()

	_, err := storage.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_Update тестирует обновление с проверкой версии
func TestStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	taskToCreate := newTask("Old")
	require.NoError(t, storage.Create(ctx, taskToCreate))

	first, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	second, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)

	first.Status = task.StatusCompleted
	require.NoError(t, storage.Update(ctx, first))
	assert.Equal(t, 2, first.Version)
	assert.NotNil(t, first.UpdatedAt)

	second.Title = "stale"
	assert.ErrorIs(t, storage.Update(ctx, second), repository.ErrVersionConflict)

	stored, err := storage.GetByID(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, stored.Status)
	assert.Equal(t, "Old", stored.Title)
}

// TestStorage_Delete тестирует удаление задачи и её комментариев
func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	taskToDelete := newTask("Delete me")
	require.NoError(t, storage.Create(ctx, taskToDelete))
	require.NoError(t, storage.CreateComment(ctx, &task.Comment{UUID: uuid.New(), TaskID: taskToDelete.UUID, Text: "x"}))

	require.NoError(t, storage.Delete(ctx, taskToDelete.UUID))

	_, err := storage.GetByID(ctx, taskToDelete.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	comments, err := storage.CommentsByTask(ctx, taskToDelete.UUID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, storage.Delete(ctx, taskToDelete.UUID), repository.ErrNotFound)
}

// TestStorage_GetAllWithLimit тестирует пагинацию
func TestStorage_GetAllWithLimit(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	for i := 0; i < 5; i++ {
		require.NoError(t, storage.Create(ctx, newTask("task")))
	}

	tests := []struct {
		name     string
		page     int
		limit    int
		expected int
	}{
		{"first page", 1, 2, 2},
		{"last page", 3, 2, 1},
		{"beyond range", 4, 2, 0},
		{"invalid page", 0, 2, 0},
		{"all", 1, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := storage.GetAllWithLimit(ctx, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Len(t, tasks, tt.expected)
		})
	}
}

// TestStorage_CommentsByTask тестирует порядок комментариев
func TestStorage_CommentsByTask(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	first := newTask("first")
	second := newTask("second")
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	texts := []string{"a", "b", "c"}
	for _, text := range texts {
		require.NoError(t, storage.CreateComment(ctx, &task.Comment{UUID: uuid.New(), TaskID: first.UUID, Text: text}))
	}
	require.NoError(t, storage.CreateComment(ctx, &task.Comment{UUID: uuid.New(), TaskID: second.UUID, Text: "other"}))

	comments, err := storage.CommentsByTask(ctx, first.UUID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, c := range comments {
		assert.Equal(t, texts[i], c.Text)
	}

	err = storage.CreateComment(ctx, &task.Comment{UUID: uuid.New(), TaskID: uuid.New(), Text: "orphan"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_Users тестирует справочник пользователей
func TestStorage_Users(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	alice := &user.User{UUID: uuid.New(), Email: "alice@example.com"}
	require.NoError(t, storage.CreateUser(ctx, alice))

	got, err := storage.GetUserByID(ctx, alice.UUID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	duplicate := &user.User{UUID: uuid.New(), Email: "Alice@Example.com"}
	assert.ErrorIs(t, storage.CreateUser(ctx, duplicate), repository.ErrAlreadyExists)

	_, err = storage.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_ListUsers(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, storage.CreateUser(ctx, &user.User{UUID: uuid.New(), Email: email}))
	}

	page, err := storage.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a@example.com", page[0].Email)
	assert.Equal(t, "b@example.com", page[1].Email)

	page, err = storage.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c@example.com", page[0].Email)

	// копия не меняет хранилище
	page[0].Email = "changed@example.com"
	page, err = storage.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", page[0].Email)

	page, err = storage.ListUsers(ctx, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

// TestStorage_TimerLifecycle тестирует переходы таймера
func TestStorage_TimerLifecycle(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	key := timer.Key{TaskID: uuid.New(), OwnerID: uuid.New()}

	_, err := storage.FindTimer(ctx, key)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	created, isNew, err := storage.GetOrCreateTimer(ctx, key)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.False(t, created.IsStarted)
	assert.Nil(t, created.StartedAt)

	found, isNew, err := storage.GetOrCreateTimer(ctx, key)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.UUID, found.UUID)

	startedAt := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, storage.MarkTimerStarted(ctx, created.UUID, startedAt))
	assert.ErrorIs(t, storage.MarkTimerStarted(ctx, created.UUID, startedAt), repository.ErrVersionConflict)

	running, err := storage.FindTimer(ctx, key)
	require.NoError(t, err)
	assert.True(t, running.IsStarted)
	assert.Equal(t, startedAt, *running.StartedAt)

	record := &timer.TimeRecord{
		UUID:      uuid.New(),
		TaskID:    key.TaskID,
		OwnerID:   key.OwnerID,
		StartedAt: startedAt,
		Duration:  time.Hour,
	}
	require.NoError(t, storage.FinishTimer(ctx, created.UUID, record))
	assert.ErrorIs(t, storage.FinishTimer(ctx, created.UUID, record), repository.ErrVersionConflict)

	idle, err := storage.FindTimer(ctx, key)
	require.NoError(t, err)
	assert.False(t, idle.IsStarted)

	records, err := storage.TimeRecordsByOwner(ctx, key.OwnerID, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Hour, records[0].Duration)
}

// TestStorage_FinishTimer_StaleRead: остановка по снимку прошлого запуска отклоняется
func TestStorage_FinishTimer_StaleRead(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	key := timer.Key{TaskID: uuid.New(), OwnerID: uuid.New()}

	tm, _, err := storage.GetOrCreateTimer(ctx, key)
	require.NoError(t, err)

	first := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, storage.MarkTimerStarted(ctx, tm.UUID, first))

	stale, err := storage.FindTimer(ctx, key)
	require.NoError(t, err)

	require.NoError(t, storage.FinishTimer(ctx, tm.UUID, &timer.TimeRecord{
		UUID: uuid.New(), TaskID: key.TaskID, OwnerID: key.OwnerID,
		StartedAt: first, Duration: time.Hour,
	}))

	second := time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC)
	require.NoError(t, storage.MarkTimerStarted(ctx, tm.UUID, second))

	// вторая остановка построена по чтению до первой
	err = storage.FinishTimer(ctx, tm.UUID, &timer.TimeRecord{
		UUID: uuid.New(), TaskID: key.TaskID, OwnerID: key.OwnerID,
		StartedAt: *stale.StartedAt, Duration: 150 * time.Minute,
	})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	running, err := storage.FindTimer(ctx, key)
	require.NoError(t, err)
	assert.True(t, running.IsStarted)
	assert.True(t, second.Equal(*running.StartedAt))

	total, err := storage.OwnerTotalBetween(ctx, key.OwnerID, first.Add(-time.Hour), second.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, time.Hour, *total)

	require.NoError(t, storage.FinishTimer(ctx, tm.UUID, &timer.TimeRecord{
		UUID: uuid.New(), TaskID: key.TaskID, OwnerID: key.OwnerID,
		StartedAt: second, Duration: 30 * time.Minute,
	}))
}

// TestStorage_GetOrCreateTimer_Concurrent тестирует, что таймер создаётся один раз
func TestStorage_GetOrCreateTimer_Concurrent(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	key := timer.Key{TaskID: uuid.New(), OwnerID: uuid.New()}

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	ids := map[uuid.UUID]struct{}{}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm, created, err := storage.GetOrCreateTimer(ctx, key)
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			if created {
				createdCount++
			}
			ids[tm.UUID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	assert.Len(t, ids, 1)
}

func finish(t *testing.T, storage *inmemory.Storage, taskID, owner uuid.UUID, startedAt time.Time, d time.Duration) {
	t.Helper()
	ctx := context.Background()

	tm, _, err := storage.GetOrCreateTimer(ctx, timer.Key{TaskID: taskID, OwnerID: owner})
	require.NoError(t, err)
	require.NoError(t, storage.MarkTimerStarted(ctx, tm.UUID, startedAt))
	require.NoError(t, storage.FinishTimer(ctx, tm.UUID, &timer.TimeRecord{
		UUID:      uuid.New(),
		TaskID:    taskID,
		OwnerID:   owner,
		StartedAt: startedAt,
		Duration:  d,
	}))
}

// TestStorage_TotalsByTaskSince тестирует границу месяца и сортировку
func TestStorage_TotalsByTaskSince(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	owner := uuid.New()
	monthStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	var oldTask, small, big uuid.UUID
	for _, id := range []*uuid.UUID{&oldTask, &small, &big} {
		created := newTask("report")
		require.NoError(t, storage.Create(ctx, created))
		*id = created.UUID
	}

	finish(t, storage, oldTask, owner, monthStart.Add(-time.Second), 10*time.Hour)
	finish(t, storage, small, owner, monthStart, 25*time.Minute)
	finish(t, storage, big, owner, monthStart.Add(time.Hour), time.Hour)
	finish(t, storage, big, owner, monthStart.Add(3*time.Hour), time.Hour)

	totals, err := storage.TotalsByTaskSince(ctx, monthStart, 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, big, totals[0].TaskID)
	assert.Equal(t, 2*time.Hour, totals[0].Total)
	assert.Equal(t, small, totals[1].TaskID)
	assert.Equal(t, 25*time.Minute, totals[1].Total)

	limited, err := storage.TotalsByTaskSince(ctx, monthStart, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, big, limited[0].TaskID)
}

// TestStorage_OwnerTotalBetween тестирует nil при отсутствии записей
func TestStorage_OwnerTotalBetween(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	owner, other := uuid.New(), uuid.New()
	monthStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	now := monthStart.Add(15 * 24 * time.Hour)

	total, err := storage.OwnerTotalBetween(ctx, owner, monthStart, now)
	require.NoError(t, err)
	assert.Nil(t, total)

	finish(t, storage, uuid.New(), owner, monthStart.Add(-time.Second), time.Hour)
	finish(t, storage, uuid.New(), owner, monthStart, 30*time.Minute)
	finish(t, storage, uuid.New(), owner, now, 15*time.Minute)
	finish(t, storage, uuid.New(), owner, now.Add(time.Second), time.Hour)
	finish(t, storage, uuid.New(), other, monthStart.Add(time.Hour), time.Hour)

	total, err = storage.OwnerTotalBetween(ctx, owner, monthStart, now)
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, 45*time.Minute, *total)
}

// TestStorage_TotalsByTaskSince_DeletedTask: журнал остаётся, отчёт удалённую задачу не показывает
func TestStorage_TotalsByTaskSince_DeletedTask(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	owner := uuid.New()
	monthStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	kept, removed := newTask("kept"), newTask("removed")
	require.NoError(t, storage.Create(ctx, kept))
	require.NoError(t, storage.Create(ctx, removed))

	finish(t, storage, kept.UUID, owner, monthStart.Add(time.Hour), time.Hour)
	finish(t, storage, removed.UUID, owner, monthStart.Add(2*time.Hour), 3*time.Hour)

	require.NoError(t, storage.Delete(ctx, removed.UUID))

	totals, err := storage.TotalsByTaskSince(ctx, monthStart, 10)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, kept.UUID, totals[0].TaskID)

	total, err := storage.OwnerTotalBetween(ctx, owner, monthStart, monthStart.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, 4*time.Hour, *total)
}
