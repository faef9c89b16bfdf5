// Package config holds the replicator settings and their YAML file form.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/replicator/pkg/fingerprint"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// SyncConfig holds replication settings
type SyncConfig struct {
	Source      string  `yaml:"source"`
	Destination string  `yaml:"destination"`
	Interval    float64 `yaml:"interval"` // minutes between cycles
	Once        bool    `yaml:"once"`
	DryRun      bool    `yaml:"dry_run"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize     int    `yaml:"buffer_size"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Verbose  bool   `yaml:"verbose"`  // Echo log lines to the console
	Quiet    bool   `yaml:"quiet"`    // Suppress console echo and progress
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	File       string `yaml:"file"`
	Format     string `yaml:"format"` // "text" or "json"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	MaxSize    int64  `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Interval: 0.5,
		},
		Performance: PerformanceConfig{
			BufferSize: fingerprint.DefaultBufferSize,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Verbose:  true,
		},
		Logging: LoggingConfig{
			File:       "replicator.log",
			Format:     "text",
			Level:      "info",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		},
	}
}

// IntervalDuration converts the configured minutes into a duration
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Sync.Interval * float64(time.Minute))
}

// Validate checks if the configuration is valid. Source and destination are
// checked separately since a config file may leave them to the flags.
func (c *Config) Validate() error {
	if !c.Sync.Once && c.Sync.Interval <= 0 {
		return &models.ValidationError{
			Field:   "sync.interval",
			Message: "must be greater than 0 minutes unless running once",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if _, err := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation settings cannot be negative",
		}
	}

	return nil
}

// SyncOperation resolves the configuration into the settings the engine runs with
func (c *Config) SyncOperation() (*models.SyncOperation, error) {
	bandwidth, err := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid bandwidth limit: %w", err)
	}

	op := &models.SyncOperation{
		ID:              uuid.New().String(),
		SourcePath:      c.Sync.Source,
		DestPath:        c.Sync.Destination,
		Interval:        c.IntervalDuration(),
		Once:            c.Sync.Once,
		DryRun:          c.Sync.DryRun,
		ExcludePatterns: c.Exclude,
		BandwidthLimit:  bandwidth,
		BufferSize:      c.Performance.BufferSize,
		CreatedAt:       time.Now(),
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	return op, nil
}
