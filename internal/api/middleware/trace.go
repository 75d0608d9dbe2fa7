package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that assigns each request a trace ID
// and stores a request-scoped logger carrying it in the context. It should be
// applied early so that every handler and store call logs with the trace ID.
func NewTraceMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			reqLog := log.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, reqLog)

			reqLog.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
