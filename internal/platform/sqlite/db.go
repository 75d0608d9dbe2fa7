package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold marks queries that GORM reports as slow.
const slowQueryThreshold = 200 * time.Millisecond

// slogWriter routes GORM's printf-style output through slog.
type slogWriter struct {
	logger *slog.Logger
}

// Printf implements gormlogger.Writer.
func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open connects to the SQLite database at dsn and migrates the task schema.
// An in-memory DSN is pinned to a single connection so every query sees
// the same database.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			slogWriter{logger: logger.With(slog.String("component", "gorm"))},
			gormlogger.Config{
				SlowThreshold:             slowQueryThreshold,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			_ = Close(db)
			return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(ctx, db); err != nil {
		if cerr := Close(db); cerr != nil {
			logger.Warn("failed to close sqlite database", slog.String("error", cerr.Error()))
		}
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tasks table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
