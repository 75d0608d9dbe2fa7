// Package store defines the persistence contract for tasks. Implementations
// live under internal/platform and are handed to the service layer through
// constructors; nothing here keeps a process-wide connection.
package store
