package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// ValidationErrors wraps it so callers can match with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when a task ID is malformed or not positive.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDate is returned when a due date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
)
