package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
	"gorm.io/gorm"
)

// taskRecord is the GORM model for the tasks table.
type taskRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Description string    `gorm:"size:500;not null"`
	IsCompleted bool      `gorm:"not null;default:false"`
	DueDate     time.Time `gorm:"not null"`
}

// TableName returns the table name for the task model.
func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t *domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		DueDate:     domain.DateOf(t.DueDate),
	}
}

func (r taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		DueDate:     domain.DateOf(r.DueDate),
	}
}

// GormTaskStore implements store.TaskStore on top of GORM.
type GormTaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormTaskStore creates a TaskStore backed by db. The schema must
// already exist; see Open and Migrate.
func NewGormTaskStore(db *gorm.DB, logger *slog.Logger) *GormTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &GormTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure GormTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*GormTaskStore)(nil)

// List implements store.TaskStore.List
func (s *GormTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	var records []taskRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", err)
	}

	tasks := make([]*domain.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *GormTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var record taskRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "query failed", err)
	}
	return record.toDomain(), nil
}

// Create implements store.TaskStore.Create
func (s *GormTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if errs := task.Validate(); len(errs) > 0 {
		log.Warn("task validation failed during create", slog.String("error", errs.Error()))
		return errs
	}

	record := toRecord(task)
	record.ID = 0
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "insert failed", err)
	}

	task.ID = record.ID
	task.DueDate = record.DueDate

	log.Info("task created successfully", slog.Int64("task_id", task.ID))
	return nil
}

// Update implements store.TaskStore.Update
// Returns store.UpdateConflict when no row with task.ID exists at write time.
func (s *GormTaskStore) Update(ctx context.Context, task *domain.Task) (store.UpdateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if errs := task.Validate(); len(errs) > 0 {
		log.Warn("task validation failed during update",
			slog.String("error", errs.Error()),
			slog.Int64("task_id", task.ID))
		return store.UpdateUnknown, errs
	}

	// A map is used so false and other zero values are written too.
	result := s.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", task.ID).Updates(map[string]any{
		"description":  task.Description,
		"is_completed": task.IsCompleted,
		"due_date":     domain.DateOf(task.DueDate),
	})
	if err := result.Error; err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.UpdateUnknown, store.NewStoreError("task", "update", "update failed", err)
	}

	if result.RowsAffected == 0 {
		log.Warn("task update matched no rows", slog.Int64("task_id", task.ID))
		return store.UpdateConflict, nil
	}

	log.Info("task updated successfully", slog.Int64("task_id", task.ID))
	return store.UpdateApplied, nil
}

// Delete implements store.TaskStore.Delete
func (s *GormTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "delete failed", err)
	}

	if result.RowsAffected == 0 {
		log.Debug("delete of absent task ignored", slog.Int64("task_id", id))
		return nil
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return nil
}

// Count implements store.TaskStore.Count
func (s *GormTaskStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&taskRecord{}).Count(&n).Error; err != nil {
		return 0, store.NewStoreError("task", "count", "query failed", err)
	}
	return n, nil
}

// Ping implements store.TaskStore.Ping
func (s *GormTaskStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
