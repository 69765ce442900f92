// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/matchreporter/config.yaml",
	"/etc/matchreporter/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultSyncConfig returns the sync coordinator defaults. The coordinator
// falls back to these for unset fields.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Enabled:        true,
		Interval:       5 * time.Minute,
		DaysAhead:      7,
		DaysBehind:     1,
		BatchSize:      10,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		ErrorDelay:     30 * time.Second,
		CallTimeout:    30 * time.Second,
		ClaimTTL:       2 * time.Minute,
	}
}

func defaultConfig() *Config {
	return &Config{
		FOGIS: FOGISConfig{
			Enabled:        true,
			BaseURL:        "https://fogis.svenskfotboll.se",
			RequestTimeout: 30 * time.Second,
			UserAgent:      "NLP-Match-Event-Reporter/1.0",
			RateLimit:      5,
			RateBurst:      10,
		},
		Sync: DefaultSyncConfig(),
		Database: DatabaseConfig{
			Path:      "/data/matchreporter.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()

			CheckpointInterval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		EventBus: EventBusConfig{
			Enabled:     true,
			TopicPrefix: "matchreporter",
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//  1. struct defaults
//  2. config file (CONFIG_PATH or DefaultConfigPaths), if present
//  3. environment variables from the mapping in envTransformFunc
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that arrive from env as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	// FOGIS
	"fogis_enabled":         "fogis.enabled",
	"fogis_base_url":        "fogis.base_url",
	"fogis_username":        "fogis.username",
	"fogis_password":        "fogis.password",
	"fogis_request_timeout": "fogis.request_timeout",
	"fogis_user_agent":      "fogis.user_agent",
	"fogis_rate_limit":      "fogis.rate_limit",
	"fogis_rate_burst":      "fogis.rate_burst",

	// Sync coordinator
	"sync_enabled":         "sync.enabled",
	"sync_interval":        "sync.interval",
	"sync_days_ahead":      "sync.days_ahead",
	"sync_days_behind":     "sync.days_behind",
	"sync_batch_size":      "sync.batch_size",
	"sync_max_attempts":    "sync.max_attempts",
	"sync_initial_backoff": "sync.initial_backoff",
	"sync_max_backoff":     "sync.max_backoff",
	"sync_error_delay":     "sync.error_delay",
	"sync_call_timeout":    "sync.call_timeout",
	"sync_claim_ttl":       "sync.claim_ttl",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"duckdb_checkpoint_interval": "database.checkpoint_interval",

	// Server
	"http_host":               "server.host",
	"http_port":               "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"environment":             "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Event bus
	"eventbus_enabled":      "eventbus.enabled",
	"nats_url":              "eventbus.nats_url",
	"eventbus_topic_prefix": "eventbus.topic_prefix",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - FOGIS_BASE_URL -> fogis.base_url
//   - SYNC_INTERVAL -> sync.interval
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
