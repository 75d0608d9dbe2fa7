package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// An unresolved update conflict is a server fault, not a client one
	case errors.Is(err, store.ErrConcurrencyConflict):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return "Task not found"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	case errors.Is(err, store.ErrConcurrencyConflict):
		return "The task was changed by another request"

	default:
		return "An error occurred while processing your request"
	}
}
