package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat              string `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the store implementation: postgres or sqlite.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a PostgreSQL connection URL, or a SQLite file path / DSN.
	URL                    string `mapstructure:"url" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// CacheConfig configures the optional Redis read-through cache in front of
// the task store. The cache is disabled when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	Prefix     string `mapstructure:"prefix" validate:"required"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gt=0"`
}

// Enabled reports whether a Redis address was configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}
