package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/redis/go-redis/v9"
)

// listKey caches the full ordered task list.
const listKey = "tasks:all"

// listGenKey is bumped by every write that changes the list.
const listGenKey = "gen:tasks"

func taskKey(id int64) string {
	return "task:" + strconv.FormatInt(id, 10)
}

func taskGenKey(id int64) string {
	return "gen:task:" + strconv.FormatInt(id, 10)
}

// errStaleFill aborts a fill whose source read raced with a write.
var errStaleFill = errors.New("generation changed during read")

// Stats tracks cache statistics.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
	SkippedFills  uint64 `json:"skipped_fills"`
	Errors        uint64 `json:"errors"`
}

// CachedTaskStore implements store.TaskStore by wrapping another TaskStore
// with a Redis cache.
type CachedTaskStore struct {
	next   store.TaskStore
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	stats  Stats
}

// NewCachedTaskStore wraps next with a cache using client. Keys are
// prefixed with prefix and expire after ttl.
func NewCachedTaskStore(
	next store.TaskStore,
	client *redis.Client,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedTaskStore {
	if next == nil || client == nil {
		panic("next store and redis client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CachedTaskStore{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "task_cache")),
	}
}

// Ensure CachedTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*CachedTaskStore)(nil)

// List implements store.TaskStore.List
func (s *CachedTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if s.get(ctx, listKey, &tasks) {
		if tasks == nil {
			tasks = make([]*domain.Task, 0)
		}
		return tasks, nil
	}

	gen, ok := s.generation(ctx, listGenKey)
	tasks, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		s.fill(ctx, listKey, listGenKey, gen, tasks)
	}
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// Absent tasks are not cached.
func (s *CachedTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	if s.get(ctx, taskKey(id), &task) {
		return &task, nil
	}

	gen, ok := s.generation(ctx, taskGenKey(id))
	found, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		s.fill(ctx, taskKey(id), taskGenKey(id), gen, found)
	}
	return found, nil
}

// Create implements store.TaskStore.Create
func (s *CachedTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := s.next.Create(ctx, task); err != nil {
		return err
	}
	s.invalidate(ctx, []string{listGenKey}, listKey)
	return nil
}

// Update implements store.TaskStore.Update
// Keys are invalidated on conflict as well as on success, since a conflict
// means the cached copy is already stale.
func (s *CachedTaskStore) Update(ctx context.Context, task *domain.Task) (store.UpdateResult, error) {
	result, err := s.next.Update(ctx, task)
	if err == nil {
		s.invalidate(ctx, []string{taskGenKey(task.ID), listGenKey}, taskKey(task.ID), listKey)
	}
	return result, err
}

// Delete implements store.TaskStore.Delete
func (s *CachedTaskStore) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, []string{taskGenKey(id), listGenKey}, taskKey(id), listKey)
	return nil
}

// Count implements store.TaskStore.Count
func (s *CachedTaskStore) Count(ctx context.Context) (int64, error) {
	return s.next.Count(ctx)
}

// Ping implements store.TaskStore.Ping
// Only the wrapped store is checked; the application keeps working when
// Redis is down.
func (s *CachedTaskStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Stats returns a snapshot of the cache counters.
func (s *CachedTaskStore) Stats() Stats {
	return Stats{
		Hits:          atomic.LoadUint64(&s.stats.Hits),
		Misses:        atomic.LoadUint64(&s.stats.Misses),
		Invalidations: atomic.LoadUint64(&s.stats.Invalidations),
		SkippedFills:  atomic.LoadUint64(&s.stats.SkippedFills),
		Errors:        atomic.LoadUint64(&s.stats.Errors),
	}
}

// get loads key into dest and reports a cache hit.
func (s *CachedTaskStore) get(ctx context.Context, key string, dest any) bool {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&s.stats.Misses, 1)
			return false
		}
		s.cacheError(ctx, "get", key, err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.cacheError(ctx, "unmarshal", key, err)
		return false
	}

	atomic.AddUint64(&s.stats.Hits, 1)
	return true
}

// generation reads the write counter guarding a key. It must be called
// before the wrapped store is read. ok is false when Redis is unavailable,
// in which case the result must not be cached.
func (s *CachedTaskStore) generation(ctx context.Context, genKey string) (gen int64, ok bool) {
	gen, err := s.client.Get(ctx, s.prefix+genKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.cacheError(ctx, "get", genKey, err)
		return 0, false
	}
	return gen, true
}

// fill caches value under key only if no write has bumped genKey since gen
// was read. A concurrent write that lands after the check but before EXEC
// aborts the transaction through WATCH.
func (s *CachedTaskStore) fill(ctx context.Context, key, genKey string, gen int64, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.cacheError(ctx, "marshal", key, err)
		return
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.prefix+genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.prefix+key, data, s.ttl)
			return nil
		})
		return err
	}, s.prefix+genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		atomic.AddUint64(&s.stats.SkippedFills, 1)
		logger.FromContextOrDefault(ctx, s.logger).Debug("skipped stale cache fill",
			slog.String("key", key))
	default:
		s.cacheError(ctx, "set", key, err)
	}
}

// invalidate bumps genKeys and deletes keys in one transaction. Generation
// keys outlive cached values so an in-flight fill always sees the bump.
func (s *CachedTaskStore) invalidate(ctx context.Context, genKeys []string, keys ...string) {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, g := range genKeys {
			pipe.Incr(ctx, s.prefix+g)
			pipe.Expire(ctx, s.prefix+g, 2*s.ttl)
		}
		full := make([]string, len(keys))
		for i, k := range keys {
			full[i] = s.prefix + k
		}
		pipe.Del(ctx, full...)
		return nil
	})
	if err != nil {
		s.cacheError(ctx, "invalidate", fmt.Sprint(keys), err)
		return
	}
	atomic.AddUint64(&s.stats.Invalidations, uint64(len(keys)))
}

func (s *CachedTaskStore) cacheError(ctx context.Context, op, key string, err error) {
	atomic.AddUint64(&s.stats.Errors, 1)
	logger.FromContextOrDefault(ctx, s.logger).Warn("cache operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()))
}
