// Package sqlite provides a GORM-backed implementation of store.TaskStore
// on SQLite, used for local development and as the default test backend.
package sqlite
