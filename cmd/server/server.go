package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// startHTTPServer serves router until SIGINT/SIGTERM or a listener failure,
// then shuts the server down and releases application resources.
// It returns the process exit code.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) int {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	wait := gfshutdown.GracefulShutdown(ctx, timeout, map[string]gfshutdown.Operation{
		// The pool is closed only after in-flight requests have drained.
		"http-server": func(ctx context.Context) error {
			app.logger.Info("Shutting down server...")
			err := server.Shutdown(ctx)
			app.logStoreSummary(ctx)
			app.cleanup()
			return err
		},
	})

	select {
	case exitCode := <-wait:
		app.logger.Info("Server shutdown completed", slog.Int("exit_code", exitCode))
		return exitCode
	case err := <-serverErr:
		app.logger.Error("Server failed", slog.String("error", err.Error()))
		app.cleanup()
		return 1
	}
}
