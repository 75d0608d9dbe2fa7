package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/service"
)

// Form field names.
const (
	fieldID          = "id"
	fieldDescription = "description"
	fieldIsCompleted = "isCompleted"
	fieldDueDate     = "dueDate"
)

// taskForm holds the submitted values as entered, so an invalid form can be
// redisplayed exactly.
type taskForm struct {
	ID          string
	Description string
	IsCompleted bool
	DueDate     string
}

// formFromTask fills a form with stored values.
func formFromTask(t *domain.Task) taskForm {
	return taskForm{
		ID:          strconv.FormatInt(t.ID, 10),
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		DueDate:     t.DueDateString(),
	}
}

// bindTaskForm reads the task fields from an urlencoded body.
func bindTaskForm(w http.ResponseWriter, r *http.Request) (taskForm, error) {
	values, err := shared.ParseForm(w, r)
	if err != nil {
		return taskForm{}, err
	}
	return taskFormFromValues(values), nil
}

func taskFormFromValues(values url.Values) taskForm {
	return taskForm{
		ID:          strings.TrimSpace(shared.FormString(values, fieldID)),
		Description: shared.FormString(values, fieldDescription),
		IsCompleted: shared.FormBool(values, fieldIsCompleted),
		DueDate:     strings.TrimSpace(shared.FormString(values, fieldDueDate)),
	}
}

// input converts the form into service input. Binding problems, such as an
// unparseable due date, are reported as field errors together with the
// entity's own validation result.
func (f taskForm) input() (service.TaskInput, domain.ValidationErrors) {
	var errs domain.ValidationErrors

	in := service.TaskInput{
		Description: f.Description,
		IsCompleted: f.IsCompleted,
	}

	due, err := domain.ParseDate(f.DueDate)
	switch {
	case err == nil:
		in.DueDate = due
	case f.DueDate == "":
		errs.Add(fieldDueDate, "dueDate is required")
	default:
		errs.Add(fieldDueDate, "dueDate must be a valid date (YYYY-MM-DD)")
	}

	if len(errs) > 0 {
		errs = in.Task().Validate().Merge(errs)
	}
	return in, errs
}

// parseID parses a positive task identifier.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// pathID extracts the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"))
}

// isValidationError reports whether err carries field errors, and returns them.
func isValidationError(err error) (domain.ValidationErrors, bool) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
