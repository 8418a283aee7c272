package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.CacheCapacity != 100 {
		t.Errorf("Search.CacheCapacity = %d, want 100", cfg.Search.CacheCapacity)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxResults != 100 {
		t.Errorf("limits = %d/%d, want 10/100", cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	}
	if cfg.Search.AccessHistoryEntries != 100 {
		t.Errorf("Search.AccessHistoryEntries = %d, want 100", cfg.Search.AccessHistoryEntries)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9090 {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
  requestTimeout: 5s
search:
  cacheCapacity: 64
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 5s", cfg.Server.RequestTimeout)
	}
	if cfg.Search.CacheCapacity != 64 {
		t.Errorf("Search.CacheCapacity = %d, want 64", cfg.Search.CacheCapacity)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	// Fields missing from the file keep their defaults.
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("Search.DefaultLimit = %d, want default 10", cfg.Search.DefaultLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "7777")
	t.Setenv("DS_SEARCH_CACHE_CAPACITY", "32")
	t.Setenv("DS_LOGGING_LEVEL", "warn")
	t.Setenv("DS_METRICS_ENABLED", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Search.CacheCapacity != 32 {
		t.Errorf("Search.CacheCapacity = %d, want 32", cfg.Search.CacheCapacity)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero cache capacity", func(c *Config) { c.Search.CacheCapacity = 0 }, "cacheCapacity"},
		{"negative cache capacity", func(c *Config) { c.Search.CacheCapacity = -1 }, "cacheCapacity"},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }, "defaultLimit"},
		{"max below default", func(c *Config) { c.Search.MaxResults = 5 }, "maxResults"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsEnvCacheCapacity(t *testing.T) {
	t.Setenv("DS_SEARCH_CACHE_CAPACITY", "0")
	if _, err := Load(""); err == nil {
		t.Error("expected Load to reject a zero cache capacity from the environment")
	}
}
