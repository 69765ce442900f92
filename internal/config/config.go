// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	FOGIS    FOGISConfig    `koanf:"fogis"`
	Sync     SyncConfig     `koanf:"sync"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	EventBus EventBusConfig `koanf:"eventbus"`
}

// FOGISConfig holds the connection settings for the external match
// administration system.
type FOGISConfig struct {
	Enabled        bool          `koanf:"enabled"`
	BaseURL        string        `koanf:"base_url"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	UserAgent      string        `koanf:"user_agent"`

	// RateLimit is the sustained outbound request rate in requests per second.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// HasCredentials reports whether both username and password are configured.
func (c *FOGISConfig) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// SyncConfig controls the background sync coordinator.
type SyncConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`

	// DaysAhead and DaysBehind bound the match import window around now.
	DaysAhead  int `koanf:"days_ahead"`
	DaysBehind int `koanf:"days_behind"`

	// BatchSize is the maximum number of pending events pushed per cycle.
	BatchSize int `koanf:"batch_size"`

	// MaxAttempts is the number of push calls made for one event within a
	// single cycle before the failure is recorded.
	MaxAttempts    int           `koanf:"max_attempts"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`

	// ErrorDelay is the pause after a failed cycle before the next one.
	ErrorDelay time.Duration `koanf:"error_delay"`

	// CallTimeout bounds each individual external request.
	CallTimeout time.Duration `koanf:"call_timeout"`

	// ClaimTTL is how long a pushed event stays claimed by one coordinator.
	ClaimTTL time.Duration `koanf:"claim_ttl"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// CheckpointInterval is how often the WAL is flushed into the database
	// file. Zero disables periodic checkpoints; Close always checkpoints.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SecurityConfig holds CORS and inbound rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EventBusConfig controls publication of sync outcomes.
// An empty NATSURL selects the in-process channel transport.
type EventBusConfig struct {
	Enabled     bool   `koanf:"enabled"`
	NATSURL     string `koanf:"nats_url"`
	TopicPrefix string `koanf:"topic_prefix"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order, and validates the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
