package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Local store drivers.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	API        APIConfig
	LocalStore LocalStoreConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
// An empty Password is allowed; the server then runs against the local
// store if the database refuses the connection.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// APIConfig describes the remote API probed at start-up by clients.
type APIConfig struct {
	BaseURL      string
	ProbeTimeout time.Duration
}

// LocalStoreConfig selects and sizes the key-value medium used in local mode.
type LocalStoreConfig struct {
	Driver     string
	Dir        string
	QuotaBytes int64
	RedisURL   string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "luxeestate")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("PROBE_TIMEOUT", "2s")
	v.SetDefault("LOCAL_STORE_DRIVER", DriverFile)
	v.SetDefault("LOCAL_STORE_DIR", ".luxeestate")
	v.SetDefault("LOCAL_STORE_QUOTA_BYTES", 5*1024*1024)
	v.SetDefault("REDIS_URL", "localhost:6379")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		API: APIConfig{
			BaseURL:      strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			ProbeTimeout: v.GetDuration("PROBE_TIMEOUT"),
		},
		LocalStore: LocalStoreConfig{
			Driver:     strings.ToLower(v.GetString("LOCAL_STORE_DRIVER")),
			Dir:        v.GetString("LOCAL_STORE_DIR"),
			QuotaBytes: v.GetInt64("LOCAL_STORE_QUOTA_BYTES"),
			RedisURL:   v.GetString("REDIS_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.API.ProbeTimeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be positive")
	}

	switch c.LocalStore.Driver {
	case DriverFile:
		if c.LocalStore.Dir == "" {
			return fmt.Errorf("LOCAL_STORE_DIR is required for the file driver")
		}
	case DriverRedis:
		if c.LocalStore.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis driver")
		}
	default:
		return fmt.Errorf("LOCAL_STORE_DRIVER must be %q or %q", DriverFile, DriverRedis)
	}
	if c.LocalStore.QuotaBytes < 0 {
		return fmt.Errorf("LOCAL_STORE_QUOTA_BYTES must be non-negative")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
