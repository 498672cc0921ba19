// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and environment variables.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"time"

	"github.com/okian/jobmarket/internal/domain/filter"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// TriggerQueueSize bounds the number of filter changes waiting for a cycle.
	TriggerQueueSize int `koanf:"trigger_queue_size" validate:"gte=1"`

	// DefaultMinSalary and DefaultMaxSalary seed the filter and replace
	// missing or malformed bounds in user input.
	DefaultMinSalary int `koanf:"default_min_salary" validate:"gte=0,lte=1000000000"`
	DefaultMaxSalary int `koanf:"default_max_salary" validate:"gte=0,lte=1000000000,gtefield=DefaultMinSalary"`

	// DefaultPositions is the initial position selection.
	DefaultPositions []string `koanf:"default_positions"`

	// HistorySeed and RegionalSeed fix the random sources; zero means time based.
	HistorySeed  int64 `koanf:"history_seed"`
	RegionalSeed int64 `koanf:"regional_seed"`

	// PublishTimeoutMS bounds one view update.
	PublishTimeoutMS int `koanf:"publish_timeout_ms" validate:"gte=1"`

	// RequestTimeoutMS bounds how long an HTTP caller waits for its cycle.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"gte=1"`

	// StreamBuffer is the per-client event buffer of the live stream.
	StreamBuffer int `koanf:"stream_buffer" validate:"gte=1"`

	// SnapshotRetention is the number of recent cycles kept for /stats.
	SnapshotRetention int `koanf:"snapshot_retention" validate:"gte=1"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		TriggerQueueSize:  64,
		DefaultMinSalary:  filter.DefaultMinSalary,
		DefaultMaxSalary:  filter.DefaultMaxSalary,
		DefaultPositions:  []string{},
		PublishTimeoutMS:  2000,
		RequestTimeoutMS:  5000,
		StreamBuffer:      32,
		SnapshotRetention: 32,
	}
}

// Defaults returns the configured fallback salary bounds.
func (c *Config) Defaults() filter.Defaults {
	return filter.Defaults{MinSalary: c.DefaultMinSalary, MaxSalary: c.DefaultMaxSalary}
}

// InitialFilter returns the filter the dashboard starts with.
func (c *Config) InitialFilter() filter.State {
	return filter.Parse("", "", c.DefaultPositions, c.Defaults())
}

// PublishTimeout returns PublishTimeoutMS as a duration.
func (c *Config) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
