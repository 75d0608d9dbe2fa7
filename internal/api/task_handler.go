package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
)

// indexPath is where successful form posts redirect to.
const indexPath = "/Task"

// TaskHandler handles the task pages.
type TaskHandler struct {
	taskService service.TaskService
	views       *views
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
// It returns an error if the page templates cannot be parsed.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) (*TaskHandler, error) {
	if taskService == nil {
		return nil, errors.New("taskService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	v, err := newViews()
	if err != nil {
		return nil, err
	}

	return &TaskHandler{
		taskService: taskService,
		views:       v,
		logger:      logger.With(slog.String("component", "task_handler")),
	}, nil
}

// Index handles GET /Task
func (h *TaskHandler) Index(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageIndex, listPage{Title: "Tasks", Tasks: tasks})
}

// CreateForm handles GET /Task/Create
func (h *TaskHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageCreate, formPage{Title: "Create Task"})
}

// Create handles POST /Task/Create
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := bindTaskForm(w, r)
	if err != nil {
		h.respondWithStatus(w, r, http.StatusBadRequest, "Invalid form submission", err)
		return
	}

	input, errs := form.input()
	if len(errs) > 0 {
		h.renderInvalidForm(w, r, pageCreate, "Create Task", form, errs)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), input)
	if err != nil {
		if verrs, ok := isValidationError(err); ok {
			h.renderInvalidForm(w, r, pageCreate, "Create Task", form, verrs)
			return
		}
		h.respondWithError(w, r, err)
		return
	}

	h.log(r).Info("task created via form", slog.Int64("task_id", task.ID))
	shared.RedirectTo(w, r, indexPath)
}

// Details handles GET /Task/Details/{id}
func (h *TaskHandler) Details(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pageDetails, taskPage{Title: "Task Details", Task: task})
}

// EditForm handles GET /Task/Edit/{id}
func (h *TaskHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pageEdit, formPage{Title: "Edit Task", Form: formFromTask(task)})
}

// Edit handles POST /Task/Edit/{id}
// The id in the path must match the id field of the form.
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondNotFound(w, r, err)
		return
	}

	form, err := bindTaskForm(w, r)
	if err != nil {
		h.respondWithStatus(w, r, http.StatusBadRequest, "Invalid form submission", err)
		return
	}

	bodyID, err := parseID(form.ID)
	if err != nil || bodyID != id {
		h.log(r).Debug("edit id mismatch",
			slog.Int64("path_id", id),
			slog.String("form_id", form.ID))
		h.respondNotFound(w, r, domain.ErrInvalidID)
		return
	}

	input, errs := form.input()
	if len(errs) > 0 {
		h.renderInvalidForm(w, r, pageEdit, "Edit Task", form, errs)
		return
	}

	result, err := h.taskService.UpdateTask(r.Context(), id, input)
	if err != nil {
		if verrs, ok := isValidationError(err); ok {
			h.renderInvalidForm(w, r, pageEdit, "Edit Task", form, verrs)
			return
		}
		h.respondWithError(w, r, err)
		return
	}

	switch result {
	case store.UpdateApplied:
		shared.RedirectTo(w, r, indexPath)
	case store.UpdateNotFound:
		h.respondNotFound(w, r, service.ErrTaskNotFound)
	default:
		h.respondWithError(w, r, store.ErrConcurrencyConflict)
	}
}

// DeleteConfirm handles GET /Task/Delete/{id}
func (h *TaskHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pageDelete, taskPage{Title: "Delete Task", Task: task})
}

// Delete handles POST /Task/Delete/{id}
// Deleting a task that no longer exists still redirects to the list.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondNotFound(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	shared.RedirectTo(w, r, indexPath)
}

// Error handles GET /Task/Error
func (h *TaskHandler) Error(w http.ResponseWriter, r *http.Request) {
	shared.NoStore(w)
	h.render(w, r, http.StatusOK, pageError, errorPage{
		Title:   "Error",
		Message: "An error occurred while processing your request.",
		TraceID: shared.GetTraceID(r.Context()),
	})
}

// NotFound renders the not-found page for unknown routes.
func (h *TaskHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondNotFound(w, r, nil)
}

// MethodNotAllowed renders the error page for a known route used with the wrong method.
func (h *TaskHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondWithStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// loadTask resolves the {id} path parameter to a stored task, writing a
// 404 or error page when it cannot.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	id, err := pathID(r)
	if err != nil {
		h.respondNotFound(w, r, err)
		return nil, false
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		h.respondWithError(w, r, err)
		return nil, false
	}
	return task, true
}

func (h *TaskHandler) renderInvalidForm(
	w http.ResponseWriter,
	r *http.Request,
	page, title string,
	form taskForm,
	errs domain.ValidationErrors,
) {
	h.log(r).Debug("form validation failed", slog.String("error", errs.Error()))
	h.render(w, r, http.StatusOK, page, formPage{Title: title, Form: form, Errors: errs})
}

func (h *TaskHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	shared.RespondWithHTML(w, r, status, func(out io.Writer) error {
		return h.views.render(out, page, data)
	})
}

// respondWithError renders the error page with the status and message
// mapped from err.
func (h *TaskHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	h.respondWithStatus(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

func (h *TaskHandler) respondNotFound(w http.ResponseWriter, r *http.Request, err error) {
	h.respondWithStatus(w, r, http.StatusNotFound, "Task not found", err)
}

func (h *TaskHandler) respondWithStatus(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	err error,
) {
	shared.LogErrorResponse(r, status, message, err)
	if status >= http.StatusInternalServerError {
		shared.NoStore(w)
	}
	h.render(w, r, status, pageError, errorPage{
		Title:   http.StatusText(status),
		Message: message,
		TraceID: shared.GetTraceID(r.Context()),
	})
}

func (h *TaskHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
