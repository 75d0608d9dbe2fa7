package store

import (
	"context"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// UpdateResult is the outcome of a task update.
type UpdateResult int

const (
	// UpdateUnknown is returned alongside an error: nothing is known about
	// the stored row.
	UpdateUnknown UpdateResult = iota
	// UpdateApplied means the stored row now holds the new values.
	UpdateApplied

	// UpdateNotFound means the task was confirmed absent. Stores never
	// return it themselves; callers produce it after re-checking a conflict.
	UpdateNotFound

	// UpdateConflict means no row matched the task ID at write time,
	// typically because a concurrent request deleted it.
	UpdateConflict
)

// String implements fmt.Stringer.
func (r UpdateResult) String() string {
	switch r {
	case UpdateUnknown:
		return "unknown"
	case UpdateApplied:
		return "applied"
	case UpdateNotFound:
		return "not_found"
	case UpdateConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// List returns every task ordered by ID.
	// Returns an empty slice if no tasks exist.
	List(ctx context.Context) ([]*domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Create saves a new task and sets task.ID to the identifier assigned
	// by the store. Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Update replaces the description, completion flag and due date of the
	// task identified by task.ID. Returns UpdateConflict when no row matched;
	// the error return is reserved for persistence failures and invalid data,
	// and is paired with UpdateUnknown.
	Update(ctx context.Context, task *domain.Task) (UpdateResult, error)

	// Delete removes the task with the given ID. Deleting an absent task
	// is a no-op.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored tasks.
	Count(ctx context.Context) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
