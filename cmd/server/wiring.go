// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/database"
	"github.com/tomtom215/matchreporter/internal/eventbus"
	"github.com/tomtom215/matchreporter/internal/fogis"
	"github.com/tomtom215/matchreporter/internal/logging"
	syncpkg "github.com/tomtom215/matchreporter/internal/sync"
)

// errFOGISDisabled is returned by commands that need the external system.
var errFOGISDisabled = errors.New("fogis integration is disabled (FOGIS_ENABLED=false)")

// errServiceRunning is returned when another process, normally serve, holds
// the DuckDB file lock.
var errServiceRunning = errors.New("the service holds the database; stop it or wait for the next cycle")

// components holds everything built from configuration. Fields for disabled
// features are nil.
type components struct {
	cfg         *config.Config
	db          *database.DB
	fogis       *fogis.CircuitBreakerClient
	bus         *eventbus.Bus
	coordinator *syncpkg.Coordinator
}

// loadConfig loads configuration and initializes the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

// buildComponents opens the database and constructs the optional FOGIS
// client, event bus and coordinator. On error everything already opened is
// closed.
func buildComponents(cfg *config.Config) (*components, error) {
	c := &components{cfg: cfg}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, openDatabaseError(cfg.Database.Path, err)
	}
	c.db = db
	logging.Info().Str("db_path", cfg.Database.Path).Msg("Database initialized")

	if cfg.EventBus.Enabled {
		bus, err := eventbus.New(cfg.EventBus)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("create event bus: %w", err)
		}
		c.bus = bus
		logging.Info().Str("transport", bus.Transport()).Msg("Event bus initialized")
	}

	if !cfg.FOGIS.Enabled {
		logging.Info().Msg("FOGIS integration disabled, events are stored locally only")
		return c, nil
	}

	c.fogis = fogis.NewCircuitBreakerClient(fogis.NewClient(&cfg.FOGIS), fogis.DefaultBreakerSettings())

	opts := []syncpkg.Option{}
	if cfg.FOGIS.HasCredentials() {
		opts = append(opts, syncpkg.WithCredentials(fogis.Credentials{
			Username: cfg.FOGIS.Username,
			Password: cfg.FOGIS.Password,
		}))
	} else {
		logging.Warn().Msg("FOGIS credentials not configured, requests are sent without a session")
	}
	if c.bus != nil {
		opts = append(opts, syncpkg.WithPublisher(c.bus))
	}
	c.coordinator = syncpkg.NewCoordinator(db, c.fogis, cfg.Sync, opts...)

	logging.Info().
		Str("fogis_url", cfg.FOGIS.BaseURL).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Dur("sync_interval", cfg.Sync.Interval).
		Msg("FOGIS client initialized")
	return c, nil
}

// close releases the bus and then the database.
func (c *components) close() {
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}

// openDatabaseError wraps a database open failure. DuckDB allows one
// read-write process per file, so a lock conflict means a running service.
func openDatabaseError(path string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "Could not set lock on file") || strings.Contains(msg, "Conflicting lock is held") {
		return fmt.Errorf("open database %s: %w (%w)", path, errServiceRunning, err)
	}
	return fmt.Errorf("open database: %w", err)
}
