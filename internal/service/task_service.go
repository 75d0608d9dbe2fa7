package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Description string
	IsCompleted bool
	DueDate     time.Time
}

// Task builds an unsaved task from the input.
func (in TaskInput) Task() *domain.Task {
	return &domain.Task{
		Description: in.Description,
		IsCompleted: in.IsCompleted,
		DueDate:     domain.DateOf(in.DueDate),
	}
}

// TaskService provides task-related operations
type TaskService interface {
	// ListTasks returns all tasks ordered by ID.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// CreateTask validates the input and stores a new task.
	// Returns domain.ValidationErrors if the input is invalid.
	CreateTask(ctx context.Context, input TaskInput) (*domain.Task, error)

	// UpdateTask validates the input and replaces the fields of task id.
	// Returns store.UpdateNotFound with a nil error if the task no longer
	// exists, and store.UpdateConflict with an error wrapping
	// store.ErrConcurrencyConflict if the update matched no row although the
	// task is still present. Other errors come with store.UpdateUnknown.
	UpdateTask(ctx context.Context, id int64, input TaskInput) (store.UpdateResult, error)

	// DeleteTask removes task id if it exists. Deleting an absent task succeeds.
	DeleteTask(ctx context.Context, id int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the store is nil.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "task store cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, input TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task := input.Task()
	if errs := task.Validate(); len(errs) > 0 {
		log.Debug("rejected invalid task", slog.String("error", errs.Error()))
		return nil, errs
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id int64,
	input TaskInput,
) (store.UpdateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", id))

	task := input.Task()
	task.ID = id
	if errs := task.Validate(); len(errs) > 0 {
		log.Debug("rejected invalid task update", slog.String("error", errs.Error()))
		return store.UpdateUnknown, errs
	}

	result, err := s.tasks.Update(ctx, task)
	if err != nil {
		log.Error("failed to update task", slog.String("error", err.Error()))
		return store.UpdateUnknown, NewTaskServiceError("update_task", "failed to save task", err)
	}

	if result != store.UpdateConflict {
		log.Info("task updated", slog.String("result", result.String()))
		return result, nil
	}

	// No row matched. Either the task was deleted concurrently, or the row
	// changed in a way the store could not reconcile.
	_, err = s.tasks.GetByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		log.Info("task deleted before update could be applied")
		return store.UpdateNotFound, nil
	case err != nil:
		log.Error("failed to re-check task after update conflict", slog.String("error", err.Error()))
		return store.UpdateUnknown, NewTaskServiceError("update_task", "failed to re-check task", err)
	default:
		log.Error("update matched no rows but task still exists")
		return store.UpdateConflict, NewTaskServiceError("update_task", "unresolved update conflict",
			fmt.Errorf("%w: task %d", store.ErrConcurrencyConflict, id))
	}
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", id))

	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("delete requested for absent task")
			return nil
		}
		log.Error("failed to look up task for deletion", slog.String("error", err.Error()))
		return NewTaskServiceError("delete_task", "failed to look up task", err)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		log.Error("failed to delete task", slog.String("error", err.Error()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted")
	return nil
}
