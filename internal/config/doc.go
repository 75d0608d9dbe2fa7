// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. It provides type-safe
// access to server and database settings while keeping configuration details
// separate from business logic.
package config
