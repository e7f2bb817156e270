package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Store    StoreConfig    `mapstructure:"store" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile, when set, receives a copy of every log line, rotated by size.
	LogFile string `mapstructure:"log_file"`
}

// Store backends
const (
	BackendMemory   = "memory"
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory csv sqlite postgres"`
	// DataDir holds the CSV files and the SQLite database.
	DataDir    string `mapstructure:"data_dir" validate:"required"`
	Collection string `mapstructure:"collection" validate:"required,alphanum,max=64"`
	// LockTimeout bounds how long a writer waits for the cross-process lock.
	LockTimeout time.Duration `mapstructure:"lock_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is only required by the postgres backend.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// CacheConfig configures the optional Redis read cache. An empty address
// disables caching.
type CacheConfig struct {
	RedisAddress string `mapstructure:"redis_address" validate:"omitempty,hostname_port"`
	TTLSeconds   int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddress != ""
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
