// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (KV store, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// KV backend selectors.
const (
	KVBackendRedis    = "redis"
	KVBackendPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the attendance API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Key-Value store backend: "redis" or "postgres".
	KVBackend string `env:"KV_BACKEND" envDefault:"redis"`

	// Relational database, required only when KV_BACKEND=postgres.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Redis holds refresh-token sessions regardless of the KV backend.
	RedisURL string `env:"REDIS_URL,required"`

	// JWT signing secret for access tokens.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Timezone used to stamp attendance dates and compute off days.
	AttendanceTimezone string `env:"ATTENDANCE_TIMEZONE" envDefault:"Asia/Dhaka"`

	// Object Storage (S3-compatible) for profile images.
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	switch cfg.KVBackend {
	case KVBackendRedis:
	case KVBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required when KV_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("config: unknown KV_BACKEND %q", cfg.KVBackend)
	}

	return cfg, nil
}

// AllowedOrigins returns the browser origins permitted by CORS in production.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
