package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/task-tracker/internal/api"
	apiMiddleware "github.com/phrazzld/task-tracker/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(api.CanonicalPaths())

	taskHandler, err := api.NewTaskHandler(app.taskService, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task handler: %w", err)
	}

	r.Get("/health", api.HealthHandler(app.taskStore, app.logger))
	taskHandler.RegisterRoutes(r)

	return r, nil
}
