package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore creates a store over a fresh in-memory SQLite database.
func setupStore(t *testing.T) *sqlite.GormTaskStore {
	t.Helper()

	_, log := logger.NewTestLogger()
	db, err := sqlite.Open(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlite.Close(db)
	})

	return sqlite.NewGormTaskStore(db, log)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGormTaskStore_CreateAndGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", DueDate: time.Date(2025, 1, 31, 17, 45, 0, 0, time.UTC)}
	require.NoError(t, s.Create(ctx, task))
	assert.Equal(t, int64(1), task.ID)

	got, err := s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Description)
	assert.False(t, got.IsCompleted)
	assert.Equal(t, date(2025, 1, 31), got.DueDate)

	second := &domain.Task{Description: "Walk the dog", IsCompleted: true, DueDate: date(2025, 2, 1)}
	require.NoError(t, s.Create(ctx, second))
	assert.Equal(t, int64(2), second.ID)
}

func TestGormTaskStore_CreateInvalid(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	err := s.Create(ctx, &domain.Task{Description: "abc", DueDate: date(2025, 1, 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormTaskStore_GetByID_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestGormTaskStore_List(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	for _, desc := range []string{"first task", "second task", "third task"} {
		require.NoError(t, s.Create(ctx, &domain.Task{Description: desc, DueDate: date(2025, 3, 1)}))
	}

	tasks, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "first task", tasks[0].Description)
	assert.Equal(t, "third task", tasks[2].Description)
	assert.Less(t, tasks[0].ID, tasks[1].ID)
}

func TestGormTaskStore_Update(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", IsCompleted: true, DueDate: date(2025, 1, 31)}
	require.NoError(t, s.Create(ctx, task))

	t.Run("applies all fields including false", func(t *testing.T) {
		edit := &domain.Task{ID: task.ID, Description: "Buy oat milk", IsCompleted: false, DueDate: date(2025, 2, 2)}
		result, err := s.Update(ctx, edit)
		require.NoError(t, err)
		assert.Equal(t, store.UpdateApplied, result)

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Description)
		assert.False(t, got.IsCompleted)
		assert.Equal(t, date(2025, 2, 2), got.DueDate)
	})

	t.Run("unchanged values still apply", func(t *testing.T) {
		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		result, err := s.Update(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, store.UpdateApplied, result)
	})

	t.Run("missing row is a conflict", func(t *testing.T) {
		result, err := s.Update(ctx, &domain.Task{ID: 999, Description: "Nobody home", DueDate: date(2025, 1, 1)})
		require.NoError(t, err)
		assert.Equal(t, store.UpdateConflict, result)
	})

	t.Run("invalid data is rejected", func(t *testing.T) {
		result, err := s.Update(ctx, &domain.Task{ID: task.ID, Description: "   ", DueDate: date(2025, 1, 1)})
		assert.Equal(t, store.UpdateUnknown, result)
		assert.ErrorIs(t, err, domain.ErrValidation)

		got, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Description)
	})
}

func TestGormTaskStore_Delete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", DueDate: date(2025, 1, 31)}
	require.NoError(t, s.Create(ctx, task))

	require.NoError(t, s.Delete(ctx, task.ID))
	_, err := s.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.NoError(t, s.Delete(ctx, task.ID), "deleting an absent task is a no-op")

	// identifiers are not reused after deletion
	next := &domain.Task{Description: "Buy bread", DueDate: date(2025, 1, 31)}
	require.NoError(t, s.Create(ctx, next))
	assert.Greater(t, next.ID, task.ID)
}

func TestGormTaskStore_Ping(t *testing.T) {
	s := setupStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpen_MigrationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	// An empty file is a valid database with no tables.
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	buf, log := logger.NewTestLogger()
	db, err := sqlite.Open(context.Background(), "file:"+path+"?mode=ro", log)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to migrate sqlite schema")
	assert.Nil(t, db)
	assert.NotContains(t, buf.String(), "failed to close sqlite database")
}
