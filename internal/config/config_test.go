package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that the defaults pass validation.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}

	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("expected sqlite3 driver, got %s", cfg.Database.Driver)
	}
	if cfg.Buffer.Capacity <= 0 {
		t.Errorf("expected positive buffer capacity, got %d", cfg.Buffer.Capacity)
	}
	if cfg.Buffer.FlushTimeout <= 0 {
		t.Errorf("expected positive flush timeout, got %v", cfg.Buffer.FlushTimeout)
	}
}

// TestLoadConfig_NoPath verifies that an empty path yields defaults.
func TestLoadConfig_NoPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN != DefaultConfig().Database.DSN {
		t.Errorf("expected default DSN, got %s", cfg.Database.DSN)
	}
}

// TestLoadConfig_MissingFile verifies a clear error for nonexistent files.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/quickqpg.toml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("unexpected error message: %v", err)
	}
}

// TestLoadFromFile verifies that file values override defaults and the rest
// stay defaulted.
func TestLoadFromFile(t *testing.T) {
	content := `
[database]
dsn = "/var/lib/quickqpg/status.db"

# flush_timeout is nanoseconds; toml has no duration type
[buffer]
capacity = 250
flush_timeout = 500000000

[logging]
level = "debug"
`
	path := filepath.Join(t.TempDir(), "quickqpg.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.Database.DSN != "/var/lib/quickqpg/status.db" {
		t.Errorf("expected file DSN, got %s", cfg.Database.DSN)
	}
	if cfg.Buffer.Capacity != 250 {
		t.Errorf("expected capacity 250, got %d", cfg.Buffer.Capacity)
	}
	if cfg.Buffer.FlushTimeout != 500*time.Millisecond {
		t.Errorf("expected 500ms flush timeout, got %v", cfg.Buffer.FlushTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}

	// Untouched sections keep their defaults
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("expected default driver, got %s", cfg.Database.Driver)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected default format, got %s", cfg.Logging.Format)
	}
}

// TestLoadFromFile_InvalidTOML verifies parse errors surface.
func TestLoadFromFile_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[database\ndsn ="), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

// TestValidate_Failures exercises each validation rule.
func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty driver", func(c *Config) { c.Database.Driver = "" }},
		{"unsupported driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"zero capacity", func(c *Config) { c.Buffer.Capacity = 0 }},
		{"negative flush timeout", func(c *Config) { c.Buffer.FlushTimeout = -time.Second }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}
