// Package domain contains the task entity, its field-level validation rules
// and the date handling shared by every layer. It has no knowledge of HTTP
// or of the storage backend.
package domain
