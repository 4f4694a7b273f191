package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RecurringInterval != time.Hour {
		t.Errorf("RecurringInterval = %s, want 1h", cfg.RecurringInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RECURRING_INTERVAL", "15m")
	t.Setenv("S3_BUCKET", "receipts")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.RecurringInterval != 15*time.Minute {
		t.Errorf("RecurringInterval = %s, want 15m", cfg.RecurringInterval)
	}
	if cfg.S3Bucket != "receipts" {
		t.Errorf("S3Bucket = %q, want receipts", cfg.S3Bucket)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }, true},
		{"recurring interval too short", func(c *Config) { c.RecurringInterval = time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:              "8080",
				DatabasePath:      filepath.Join(t.TempDir(), "tracker.db"),
				LogLevel:          "info",
				RecurringInterval: time.Hour,
				CleanupInterval:   time.Hour,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCreatesDatabaseDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Port:              "8080",
		DatabasePath:      filepath.Join(dir, "nested", "tracker.db"),
		RecurringInterval: time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
