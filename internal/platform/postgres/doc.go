// Package postgres provides the PostgreSQL implementation of store.TaskStore.
// It runs on database/sql with the pgx driver, maps PostgreSQL error codes to
// store errors, and embeds the goose migrations that create the schema.
package postgres
