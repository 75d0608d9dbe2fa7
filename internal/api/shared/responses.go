package shared

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/redact"
)

// RenderFunc writes a complete HTML document to w.
type RenderFunc func(w io.Writer) error

// RespondWithHTML renders into a buffer first, so a template failure can
// still produce a clean 500 instead of a half-written page.
func RespondWithHTML(w http.ResponseWriter, r *http.Request, status int, render RenderFunc) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Error("failed to render page",
			slog.String("error", redact.Error(err)),
			slog.String("path", r.URL.Path),
			slog.String("trace_id", GetTraceID(r.Context())))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("failed to write response",
			slog.String("error", err.Error()))
	}
}

// RedirectTo sends a 302 Found to location.
func RedirectTo(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}

// NoStore marks the response as not cacheable.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to WARN level
// instead of the default DEBUG level.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// LogErrorResponse logs the detailed error behind an error page. The user
// only ever sees userMessage; err is redacted before it is logged.
//
// Log level strategy:
// - 5xx errors: Always logged at ERROR level
// - 4xx errors: By default logged at DEBUG level, WARN with WithElevatedLogLevel
func LogErrorResponse(r *http.Request, status int, userMessage string, err error, opts ...ResponseOption) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if responseOpts.elevateLogLevel && status >= http.StatusBadRequest {
		logLevel = slog.LevelWarn
	}

	log := logger.FromContextOrDefault(r.Context(), slog.Default())
	log.LogAttrs(r.Context(), logLevel, "error response", logAttrs...)
}
