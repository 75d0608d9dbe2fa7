package rediscache_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/platform/rediscache"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInnerStore(t *testing.T) store.TaskStore {
	t.Helper()

	_, log := logger.NewTestLogger()
	db, err := sqlite.Open(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })
	return sqlite.NewGormTaskStore(db, log)
}

// newClient connects to the Redis at REDIS_ADDR when set, and to an
// in-process server otherwise. Keys are isolated by a unique prefix.
func newClient(t *testing.T) (*redis.Client, string) {
	t.Helper()

	prefix := "tasktracker-test:" + uuid.NewString() + ":"

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return client, prefix
}

// setupCache wraps inner with a cache on a fresh client.
func setupCache(t *testing.T, inner store.TaskStore) *rediscache.CachedTaskStore {
	t.Helper()

	client, prefix := newClient(t)
	_, log := logger.NewTestLogger()
	return rediscache.NewCachedTaskStore(inner, client, prefix, time.Minute, log)
}

// pausingStore blocks the first List or GetByID call after it has read from
// the wrapped store, until resume is closed.
type pausingStore struct {
	store.TaskStore

	once   sync.Once
	read   chan struct{}
	resume chan struct{}
}

func newPausingStore(inner store.TaskStore) *pausingStore {
	return &pausingStore{
		TaskStore: inner,
		read:      make(chan struct{}),
		resume:    make(chan struct{}),
	}
}

func (p *pausingStore) pause() {
	p.once.Do(func() {
		close(p.read)
		<-p.resume
	})
}

func (p *pausingStore) List(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := p.TaskStore.List(ctx)
	p.pause()
	return tasks, err
}

func (p *pausingStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := p.TaskStore.GetByID(ctx, id)
	p.pause()
	return task, err
}

func due() time.Time {
	return time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
}

func TestCachedTaskStore_ReadThrough(t *testing.T) {
	inner := newInnerStore(t)
	cached := setupCache(t, inner)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", DueDate: due()}
	require.NoError(t, cached.Create(ctx, task))

	first, err := cached.GetByID(ctx, task.ID)
	require.NoError(t, err)
	second, err := cached.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, due(), second.DueDate)

	stats := cached.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)

	// a write that bypasses the cache is not visible until invalidation
	_, err = inner.Update(ctx, &domain.Task{ID: task.ID, Description: "Buy bread", DueDate: due()})
	require.NoError(t, err)
	stale, err := cached.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", stale.Description)
}

func TestCachedTaskStore_WritesInvalidate(t *testing.T) {
	cached := setupCache(t, newInnerStore(t))
	ctx := context.Background()

	tasks, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)

	task := &domain.Task{Description: "Buy milk", DueDate: due()}
	require.NoError(t, cached.Create(ctx, task))

	tasks, err = cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	result, err := cached.Update(ctx, &domain.Task{ID: task.ID, Description: "Buy bread", DueDate: due()})
	require.NoError(t, err)
	assert.Equal(t, store.UpdateApplied, result)

	got, err := cached.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", got.Description)

	tasks, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", tasks[0].Description)

	require.NoError(t, cached.Delete(ctx, task.ID))
	_, err = cached.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	tasks, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCachedTaskStore_ConflictInvalidates(t *testing.T) {
	cached := setupCache(t, newInnerStore(t))
	ctx := context.Background()

	tasks, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	result, err := cached.Update(ctx, &domain.Task{ID: 42, Description: "Buy bread", DueDate: due()})
	require.NoError(t, err)
	assert.Equal(t, store.UpdateConflict, result)
	assert.Equal(t, uint64(2), cached.Stats().Invalidations)
}

func TestCachedTaskStore_DeleteDuringReadIsNotCached(t *testing.T) {
	inner := newInnerStore(t)
	paused := newPausingStore(inner)
	cached := setupCache(t, paused)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", DueDate: due()}
	require.NoError(t, inner.Create(ctx, task))

	done := make(chan error, 1)
	go func() {
		_, err := cached.GetByID(ctx, task.ID)
		done <- err
	}()

	<-paused.read
	require.NoError(t, cached.Delete(ctx, task.ID))
	close(paused.resume)
	require.NoError(t, <-done, "the read started before the delete")

	_, err := cached.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Equal(t, uint64(1), cached.Stats().SkippedFills)
}

func TestCachedTaskStore_UpdateDuringReadIsNotCached(t *testing.T) {
	inner := newInnerStore(t)
	paused := newPausingStore(inner)
	cached := setupCache(t, paused)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", DueDate: due()}
	require.NoError(t, inner.Create(ctx, task))

	done := make(chan error, 1)
	go func() {
		_, err := cached.GetByID(ctx, task.ID)
		done <- err
	}()

	<-paused.read
	result, err := cached.Update(ctx, &domain.Task{ID: task.ID, Description: "Buy bread", DueDate: due()})
	require.NoError(t, err)
	require.Equal(t, store.UpdateApplied, result)
	close(paused.resume)
	require.NoError(t, <-done)

	got, err := cached.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", got.Description)
}

func TestCachedTaskStore_CreateDuringListIsNotCached(t *testing.T) {
	inner := newInnerStore(t)
	paused := newPausingStore(inner)
	cached := setupCache(t, paused)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := cached.List(ctx)
		done <- err
	}()

	<-paused.read
	require.NoError(t, cached.Create(ctx, &domain.Task{Description: "Buy milk", DueDate: due()}))
	close(paused.resume)
	require.NoError(t, <-done)

	tasks, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCachedTaskStore_RedisDownFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	inner := newInnerStore(t)
	buf, log := logger.NewTestLogger()
	cached := rediscache.NewCachedTaskStore(inner, client, "tasktracker:", time.Minute, log)
	ctx := context.Background()

	task := &domain.Task{Description: "Buy milk", DueDate: due()}
	require.NoError(t, cached.Create(ctx, task))

	got, err := cached.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Description)

	tasks, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	require.NoError(t, cached.Ping(ctx))
	assert.Positive(t, cached.Stats().Errors)
	assert.Contains(t, buf.String(), "cache operation failed")
}
