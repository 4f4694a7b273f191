package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DatabasePath string

	// Logging
	LogLevel string

	// Recurring scheduler
	RecurringInterval time.Duration

	// Session and rate-limit housekeeping
	CleanupInterval time.Duration

	// S3-compatible receipt storage (optional)
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from the environment, with a .env file as an
// optional overlay for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/tracker.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		RecurringInterval: getEnvDuration("RECURRING_INTERVAL", time.Hour),
		CleanupInterval:   getEnvDuration("CLEANUP_INTERVAL", time.Hour),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "auto"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
	}
}

// Validate checks the configuration and prepares the database directory.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(c.DatabasePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}

	if c.RecurringInterval < time.Minute {
		return fmt.Errorf("recurring interval %s too short: minimum 1m", c.RecurringInterval)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
