package domain

import (
	"fmt"
	"strings"
	"time"
)

// Description length limits, counted in characters (Unicode code points).
const (
	DescriptionMinLength = 5
	DescriptionMaxLength = 500
)

// DateLayout is the wire format of a due date.
const DateLayout = "2006-01-02"

// Task is a to-do record. ID is assigned by the store on creation and
// never changes afterwards.
type Task struct {
	ID          int64     `json:"id" form:"id"`
	Description string    `json:"description" form:"description" validate:"required,notblank,utf8,min=5,max=500"`
	IsCompleted bool      `json:"is_completed" form:"isCompleted"`
	DueDate     time.Time `json:"due_date" form:"dueDate"`
}

// NewTask creates an unsaved Task with a normalized due date.
// Returns ValidationErrors if the task is not valid.
func NewTask(description string, isCompleted bool, dueDate time.Time) (*Task, error) {
	task := &Task{
		Description: description,
		IsCompleted: isCompleted,
		DueDate:     DateOf(dueDate),
	}

	if errs := task.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return task, nil
}

// Validate checks the field constraints of the task. The checks are purely
// local: no cross-field or cross-record rules apply.
func (t *Task) Validate() ValidationErrors {
	return validateStruct(t)
}

// Apply replaces the mutable fields of t with those of other. The ID is
// left untouched.
func (t *Task) Apply(other *Task) {
	t.Description = other.Description
	t.IsCompleted = other.IsCompleted
	t.DueDate = DateOf(other.DueDate)
}

// DueDateString formats the due date for display and form values.
// Every stored task has a due date, including 0001-01-01.
func (t *Task) DueDateString() string {
	return t.DueDate.Format(DateLayout)
}

// DateOf drops the time component of t, returning midnight UTC of the same
// calendar day.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}
