// Package testdb provides helpers for PostgreSQL integration tests:
// opening a connection from the environment, applying the embedded
// migrations once, and running each test inside a rolled-back transaction.
package testdb
