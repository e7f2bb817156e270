package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. CATALOG_SERVER_PORT.
const EnvPrefix = "CATALOG"

// ConfigFileEnv names an optional config file (yaml, json or toml).
const ConfigFileEnv = "CATALOG_CONFIG_FILE"

// ErrMissingDatabaseURL is returned when the postgres backend is selected
// without a database URL.
var ErrMissingDatabaseURL = errors.New("database.url is required for the postgres store backend")

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file := os.Getenv(ConfigFileEnv); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the rules that span sections.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Store.Backend == BackendPostgres && cfg.Database.URL == "" {
		return fmt.Errorf("config validation failed: %w", ErrMissingDatabaseURL)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_file", "")

	v.SetDefault("store.backend", BackendCSV)
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.collection", "services")
	v.SetDefault("store.lock_timeout", "10s")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("cache.redis_address", "")
	v.SetDefault("cache.ttl_seconds", 300)
}
