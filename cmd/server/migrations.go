package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/redact"
)

// migrationCommands lists the goose commands accepted by -migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

// runMigrations executes a migration command against the configured
// database. SQLite only supports "up", which runs the ORM schema migration.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}

	log := logger.With(
		slog.String("migration_id", uuid.NewString()),
		slog.String("command", command),
		slog.String("driver", cfg.Database.Driver))
	log.Info("Executing migrations", slog.String("url", redact.DatabaseURL(cfg.Database.URL)))

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := setupPostgres(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn("Failed to close database", slog.String("error", err.Error()))
			}
		}()

		if err := postgres.Migrate(ctx, db, log, command); err != nil {
			return fmt.Errorf("%s", redact.Error(err))
		}

	case config.DriverSQLite:
		if command != "up" {
			return fmt.Errorf("migration command %q is not supported for sqlite", command)
		}
		db, err := sqlite.Open(ctx, cfg.Database.URL, log)
		if err != nil {
			return err
		}
		if err := sqlite.Close(db); err != nil {
			log.Warn("Failed to close database", slog.String("error", err.Error()))
		}

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	log.Info("Migrations completed successfully")
	return nil
}
