package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/redact"
)

// healthTimeout bounds the store ping behind /health.
const healthTimeout = 2 * time.Second

// Pinger is implemented by stores that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns a handler that answers 200 "OK" when the store is
// reachable and 503 otherwise.
func HealthHandler(p Pinger, log *slog.Logger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		if err := p.Ping(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), log).Warn("health check failed",
				slog.String("error", redact.Error(err)))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNAVAILABLE"))
			return
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("Failed to write health check response", slog.String("error", err.Error()))
		}
	}
}
