package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/replicator/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Sync.Interval != 0.5 {
		t.Errorf("interval = %v, want 0.5", cfg.Sync.Interval)
	}
	if got := cfg.IntervalDuration(); got != 30*time.Second {
		t.Errorf("IntervalDuration() = %v, want 30s", got)
	}
	if !cfg.Output.Verbose || cfg.Sync.Once {
		t.Errorf("unexpected defaults: verbose=%v once=%v", cfg.Output.Verbose, cfg.Sync.Once)
	}
	if cfg.Logging.File != "replicator.log" {
		t.Errorf("log file = %q", cfg.Logging.File)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"ZeroInterval", func(c *Config) { c.Sync.Interval = 0 }, "sync.interval"},
		{"NegativeInterval", func(c *Config) { c.Sync.Interval = -1 }, "sync.interval"},
		{"SmallBuffer", func(c *Config) { c.Performance.BufferSize = 10 }, "performance.buffer_size"},
		{"BadBandwidth", func(c *Config) { c.Performance.BandwidthLimit = "fast" }, "performance.bandwidth_limit"},
		{"BadOutputFormat", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"BadLogFormat", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"NegativeRotation", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}

	t.Run("ZeroIntervalOnce", func(t *testing.T) {
		cfg := Default()
		cfg.Sync.Interval = 0
		cfg.Sync.Once = true
		if err := cfg.Validate(); err != nil {
			t.Errorf("once mode ignores the interval: %v", err)
		}
	})
}

func TestSyncOperation(t *testing.T) {
	cfg := Default()
	cfg.Sync.Source = "/data/src"
	cfg.Sync.Destination = "/data/dst"
	cfg.Sync.Interval = 2
	cfg.Performance.BandwidthLimit = "1M"
	cfg.Exclude = []string{"*.tmp"}

	op, err := cfg.SyncOperation()
	if err != nil {
		t.Fatalf("SyncOperation() error = %v", err)
	}
	if op.ID == "" {
		t.Error("expected an operation ID")
	}
	if op.Interval != 2*time.Minute {
		t.Errorf("interval = %v", op.Interval)
	}
	if op.BandwidthLimit != 1024*1024 {
		t.Errorf("bandwidth = %d", op.BandwidthLimit)
	}
	if len(op.ExcludePatterns) != 1 {
		t.Errorf("exclude patterns = %v", op.ExcludePatterns)
	}

	cfg.Sync.Source = ""
	if _, err := cfg.SyncOperation(); err == nil {
		t.Error("expected an error without a source")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Sync.Source = "/src"
	cfg.Sync.Destination = "/dst"
	cfg.Sync.Interval = 5
	cfg.Logging.Level = "debug"
	cfg.Exclude = []string{".git/", "*.swp"}

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Sync.Source != "/src" || loaded.Sync.Destination != "/dst" {
		t.Errorf("paths not preserved: %+v", loaded.Sync)
	}
	if loaded.Sync.Interval != 5 || loaded.Logging.Level != "debug" {
		t.Errorf("values not preserved: %+v %+v", loaded.Sync, loaded.Logging)
	}
	if len(loaded.Exclude) != 2 {
		t.Errorf("exclude = %v", loaded.Exclude)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "sync:\n  source: /a\n  once: true\nlogging:\n  format: json\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if !cfg.Sync.Once || cfg.Sync.Source != "/a" {
		t.Errorf("sync = %+v", cfg.Sync)
	}
	// unspecified keys keep their defaults
	if cfg.Sync.Interval != 0.5 || cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("defaults lost: %+v %+v", cfg.Sync, cfg.Logging)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("output: [1, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected a parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("output:\n  format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(invalid)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v, validation is left to the caller", err)
	}
	var verr *models.ValidationError
	if err := cfg.Validate(); !errors.As(err, &verr) || verr.Field != "output.format" {
		t.Errorf("Validate() error = %v, want output.format", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath() error = %v", err)
	}
	if path != filepath.Join("/home/tester", ".config", "replicator", "config.yaml") {
		t.Errorf("path = %q", path)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sync:\n  mode: bidirectional\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Output.Format != "human" {
		t.Errorf("format = %q", cfg.Output.Format)
	}
}
