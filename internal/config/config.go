// Package config defines service configuration and its layered loader.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // schedule timezones must resolve in minimal images
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory check-in/promotion queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of event workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the event id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRosterLimit caps GET /roster?limit.
	MaxRosterLimit int `koanf:"max_roster_limit"`

	// ClassCapacity is the head count at which a session is reported full.
	ClassCapacity int `koanf:"class_capacity"`

	// MockLatencyMS simulates backend latency for team catalog calls.
	MockLatencyMS int `koanf:"mock_latency_ms"`

	// FixturesPath overrides the embedded seed data when set.
	FixturesPath string `koanf:"fixtures_path"`

	// Timezone is the IANA zone the weekly schedule is expressed in.
	Timezone string `koanf:"timezone"`

	// RateLimitRPS and RateLimitBurst throttle write endpoints.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		EventQueueSize: 10_000,
		WorkerCount:    runtime.NumCPU(),
		DedupeSize:     50_000,
		MaxRosterLimit: 200,
		ClassCapacity:  30,
		MockLatencyMS:  300,
		FixturesPath:   "",
		Timezone:       "UTC",
		RateLimitRPS:   50,
		RateLimitBurst: 100,
	}
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MockLatencyMS < 0 {
		return fmt.Errorf("%w: mock_latency_ms must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownTimezone, c.Timezone, err)
	}
	return loc, nil
}

// MockLatency returns MockLatencyMS as a duration.
func (c *Config) MockLatency() time.Duration {
	return time.Duration(c.MockLatencyMS) * time.Millisecond
}
