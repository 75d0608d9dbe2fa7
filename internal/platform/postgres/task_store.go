package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, is_completed, due_date
		FROM tasks
		ORDER BY id
	`)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Description, &task.IsCompleted, &task.DueDate); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		task.DueDate = domain.DateOf(task.DueDate)
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "row iteration failed", err)
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving task by ID", slog.Int64("task_id", id))

	var task domain.Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, description, is_completed, due_date
		FROM tasks
		WHERE id = $1
	`, id).Scan(&task.ID, &task.Description, &task.IsCompleted, &task.DueDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}

		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	task.DueDate = domain.DateOf(task.DueDate)
	return &task, nil
}

// Create implements store.TaskStore.Create
// The assigned identifier is written back to task.ID.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if errs := task.Validate(); len(errs) > 0 {
		log.Warn("task validation failed during create", slog.String("error", errs.Error()))
		return errs
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (description, is_completed, due_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`, task.Description, task.IsCompleted, domain.DateOf(task.DueDate)).Scan(&id)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	task.ID = id
	task.DueDate = domain.DateOf(task.DueDate)

	log.Info("task created successfully", slog.Int64("task_id", id))
	return nil
}

// Update implements store.TaskStore.Update
// Returns store.UpdateConflict when no row with task.ID exists at write time.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) (store.UpdateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if errs := task.Validate(); len(errs) > 0 {
		log.Warn("task validation failed during update",
			slog.String("error", errs.Error()),
			slog.Int64("task_id", task.ID))
		return store.UpdateUnknown, errs
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET description = $1, is_completed = $2, due_date = $3
		WHERE id = $4
	`, task.Description, task.IsCompleted, domain.DateOf(task.DueDate), task.ID)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.UpdateUnknown, store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.UpdateUnknown, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("task update matched no rows", slog.Int64("task_id", task.ID))
		return store.UpdateConflict, nil
	}

	log.Info("task updated successfully", slog.Int64("task_id", task.ID))
	return store.UpdateApplied, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		log.Debug("delete of absent task ignored", slog.Int64("task_id", id))
		return nil
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return nil
}

// Count implements store.TaskStore.Count
func (s *PostgresTaskStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, store.NewStoreError("task", "count", "query failed", MapError(err))
	}
	return n, nil
}

// pinger is implemented by *sql.DB and *sql.Conn.
type pinger interface {
	PingContext(ctx context.Context) error
}

// Ping implements store.TaskStore.Ping
func (s *PostgresTaskStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(pinger); ok {
		return p.PingContext(ctx)
	}
	var one int
	return s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}
