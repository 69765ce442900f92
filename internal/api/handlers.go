// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package api

import (
	"context"
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
	syncpkg "github.com/tomtom215/matchreporter/internal/sync"
)

// Store is the persistence surface the handlers use. *database.DB
// satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	SoftDeleteEvent(ctx context.Context, id int64) error
	ResetSyncFailure(ctx context.Context, id int64) error

	CreateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	ListMatches(ctx context.Context, filter models.MatchFilter) ([]models.Match, int, error)
	StartReporting(ctx context.Context, id int64) (*models.Match, error)
	StopReporting(ctx context.Context, id int64) (*models.Match, error)

	CreateVoiceLog(ctx context.Context, l *models.VoiceProcessingLog) error
	ListVoiceLogs(ctx context.Context, filter models.VoiceLogFilter) ([]models.VoiceProcessingLog, error)
}

// SyncMonitor reports the sync coordinator's state for health checks.
type SyncMonitor interface {
	State() syncpkg.State
	LastCycle() (syncpkg.CycleReport, time.Time)
}

// Pinger checks reachability of the external system.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_events.go: event CRUD and sync status
//   - handlers_matches.go: match CRUD and reporting
//   - handlers_voice.go: voice processing audit log
//   - handlers_health.go: liveness, readiness and detailed health
type Handler struct {
	store       Store
	sync        SyncMonitor
	fogis       Pinger
	version     string
	environment string
	pingTimeout time.Duration
	startTime   time.Time
}

// HandlerConfig carries the optional parts of a Handler.
type HandlerConfig struct {
	// Sync and FOGIS are reported as absent in health checks when nil.
	Sync  SyncMonitor
	FOGIS Pinger

	Version     string
	Environment string

	// PingTimeout bounds the FOGIS ping in the detailed health check.
	PingTimeout time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(store Store, cfg HandlerConfig) *Handler {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 3 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		store:       store,
		sync:        cfg.Sync,
		fogis:       cfg.FOGIS,
		version:     cfg.Version,
		environment: cfg.Environment,
		pingTimeout: cfg.PingTimeout,
		startTime:   time.Now(),
	}
}
