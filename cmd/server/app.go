package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/platform/rediscache"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore   store.TaskStore
	taskService service.TaskService

	// closeDB releases the connection pool of the selected driver.
	closeDB func() error

	// cache and cacheStore are nil unless a Redis address is configured.
	cache      *redis.Client
	cacheStore *rediscache.CachedTaskStore
}

// newApplication opens the configured store, brings its schema up to date
// and builds the services on top of it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := setupPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, logger, "up"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		app.taskStore = postgres.NewPostgresTaskStore(db, logger)
		app.closeDB = db.Close

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		app.taskStore = sqlite.NewGormTaskStore(db, logger)
		app.closeDB = func() error { return sqlite.Close(db) }

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Cache.Enabled() {
		client, err := rediscache.NewClient(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			app.cleanup()
			return nil, err
		}
		app.cache = client
		app.cacheStore = rediscache.NewCachedTaskStore(
			app.taskStore,
			client,
			cfg.Cache.Prefix,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			logger,
		)
		app.taskStore = app.cacheStore
		logger.Info("Task cache enabled", slog.String("redis_addr", cfg.Cache.RedisAddr))
	}

	taskService, err := service.NewTaskService(app.taskStore, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize task service: %w", err)
	}
	app.taskService = taskService

	logger.Info("Application initialized", slog.String("driver", cfg.Database.Driver))
	return app, nil
}

// logStoreSummary logs the number of stored tasks and, when the cache is
// enabled, its counters. It is called once on shutdown.
func (app *application) logStoreSummary(ctx context.Context) {
	attrs := []any{}

	n, err := app.taskStore.Count(ctx)
	if err != nil {
		app.logger.Warn("Failed to count tasks", slog.String("error", err.Error()))
	} else {
		attrs = append(attrs, slog.Int64("task_count", n))
	}

	if app.cacheStore != nil {
		stats := app.cacheStore.Stats()
		attrs = append(attrs, slog.Group("cache",
			slog.Uint64("hits", stats.Hits),
			slog.Uint64("misses", stats.Misses),
			slog.Uint64("invalidations", stats.Invalidations),
			slog.Uint64("skipped_fills", stats.SkippedFills),
			slog.Uint64("errors", stats.Errors)))
	}

	app.logger.Info("Store summary", attrs...)
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Warn("Failed to close redis client", slog.String("error", err.Error()))
		}
		app.cache = nil
	}
	if app.closeDB == nil {
		return
	}
	if err := app.closeDB(); err != nil {
		app.logger.Error("Failed to close database", slog.String("error", err.Error()))
		return
	}
	app.closeDB = nil
	app.logger.Info("Database connection closed")
}
