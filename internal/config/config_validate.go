// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/matchreporter/internal/logging"
)

// Validate checks that configuration values are consistent and usable.
func (c *Config) Validate() error {
	if err := c.validateFOGIS(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateFOGIS() error {
	if !c.FOGIS.Enabled {
		return nil
	}

	u, err := url.Parse(c.FOGIS.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("fogis base_url must be an absolute http(s) URL, got %q", c.FOGIS.BaseURL)
	}
	if (c.FOGIS.Username == "") != (c.FOGIS.Password == "") {
		return fmt.Errorf("fogis username and password must be set together")
	}
	if c.FOGIS.RequestTimeout <= 0 {
		return fmt.Errorf("fogis request_timeout must be positive")
	}
	if c.FOGIS.RateLimit < 0 {
		return fmt.Errorf("fogis rate_limit must not be negative")
	}
	if c.FOGIS.RateLimit > 0 && c.FOGIS.RateBurst < 1 {
		return fmt.Errorf("fogis rate_burst must be at least 1 when rate_limit is set")
	}
	return nil
}

func (c *Config) validateSync() error {
	s := &c.Sync
	if !s.Enabled {
		return nil
	}

	switch {
	case s.Interval <= 0:
		return fmt.Errorf("sync interval must be positive")
	case s.DaysAhead < 0 || s.DaysBehind < 0:
		return fmt.Errorf("sync days_ahead and days_behind must not be negative")
	case s.BatchSize < 1 || s.BatchSize > 1000:
		return fmt.Errorf("sync batch_size must be between 1 and 1000, got %d", s.BatchSize)
	case s.MaxAttempts < 1 || s.MaxAttempts > 10:
		return fmt.Errorf("sync max_attempts must be between 1 and 10, got %d", s.MaxAttempts)
	case s.InitialBackoff <= 0 || s.MaxBackoff <= 0:
		return fmt.Errorf("sync initial_backoff and max_backoff must be positive")
	case s.InitialBackoff > s.MaxBackoff:
		return fmt.Errorf("sync initial_backoff (%s) exceeds max_backoff (%s)", s.InitialBackoff, s.MaxBackoff)
	case s.ErrorDelay <= 0:
		return fmt.Errorf("sync error_delay must be positive")
	case s.CallTimeout <= 0:
		return fmt.Errorf("sync call_timeout must be positive")
	case s.ClaimTTL <= s.CallTimeout:
		return fmt.Errorf("sync claim_ttl (%s) must exceed call_timeout (%s)", s.ClaimTTL, s.CallTimeout)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database threads must not be negative")
	}
	if c.Database.CheckpointInterval < 0 {
		return fmt.Errorf("database checkpoint interval must not be negative")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server environment must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requires positive rate_limit_requests and rate_limit_window")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" && c.Server.Environment == "production" {
			return fmt.Errorf("wildcard CORS origin is not allowed in production")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("log format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
