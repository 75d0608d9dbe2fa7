// Package main implements the entry point for the task tracker server,
// a small web application for listing, creating, editing and deleting
// to-do tasks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a database migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	cfg, log, err := initializeApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if *migrateCmd != "" {
		if err := runMigrations(context.Background(), cfg, log, *migrateCmd); err != nil {
			log.Error("Migration failed", slog.String("command", *migrateCmd), slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	app, err := newApplication(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to start application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router, err := app.setupRouter()
	if err != nil {
		log.Error("Failed to set up router", slog.String("error", err.Error()))
		app.cleanup()
		os.Exit(1)
	}

	os.Exit(app.startHTTPServer(context.Background(), router))
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver))

	return cfg, log, nil
}
