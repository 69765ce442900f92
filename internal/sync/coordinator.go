// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
coordinator.go - Sync Coordinator Lifecycle

The coordinator owns the background loop that pulls matches from FOGIS and
pushes pending events to it.

State machine:

	Idle --Start--> Running --Stop--> Stopping --(in-flight push done)--> Idle

Lifecycle Methods:
  - NewCoordinator(): construct with injected store and client
  - Start(): begin the loop; the first cycle runs immediately
  - Stop(): cancel the loop and wait for the in-flight push to finish
  - RunCycle(): one pull-then-push pass, also used by the sync-once command
  - LastCycle(): report of the most recent completed cycle

Thread Safety:
  - mu: protects state, cancel, done, last report
  - cycleMu: prevents concurrent cycles (loop and sync-once)
  - authenticated: atomic, reset whenever FOGIS answers with an auth error
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/fogis"
	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/models"
)

var (
	// ErrAlreadyRunning is returned by Start when the coordinator is not idle.
	ErrAlreadyRunning = errors.New("sync coordinator is already running")
	// ErrNotRunning is returned by Stop when the coordinator is not running.
	ErrNotRunning = errors.New("sync coordinator is not running")
)

// State is the coordinator lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Store is the persistence the coordinator needs. *database.DB implements it.
type Store interface {
	UpsertMatches(ctx context.Context, matches []models.Match) (models.UpsertResult, error)
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	ListPendingEvents(ctx context.Context, limit int) ([]models.Event, error)
	ClaimEvent(ctx context.Context, id int64, ttl time.Duration) (bool, error)
	MarkEventSynced(ctx context.Context, id int64, externalID string, attempts int) error
	RecordSyncFailure(ctx context.Context, id int64, attempts int, errText string, permanent bool) error
}

// OutcomePublisher receives the outcomes of each cycle. Errors are logged
// and never fail the cycle.
type OutcomePublisher interface {
	Publish(ctx context.Context, outcomes []models.SyncOutcome) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPublisher sets the outcome publisher.
func WithPublisher(p OutcomePublisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithCredentials makes the coordinator authenticate before a cycle when
// no session is held.
func WithCredentials(creds fogis.Credentials) Option {
	return func(c *Coordinator) { c.creds = &creds }
}

// WithOnCycleCompleted registers a callback invoked after every cycle.
func WithOnCycleCompleted(fn func(CycleReport)) Option {
	return func(c *Coordinator) { c.onCycleCompleted = fn }
}

// WithClock replaces time.Now for the import window.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator runs sync cycles on a schedule.
type Coordinator struct {
	store  Store
	client fogis.Client
	cfg    config.SyncConfig

	creds            *fogis.Credentials
	publisher        OutcomePublisher
	onCycleCompleted func(CycleReport)
	now              func() time.Time

	authenticated atomic.Bool

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	last     CycleReport
	lastTime time.Time

	cycleMu sync.Mutex
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(store Store, client fogis.Client, cfg config.SyncConfig, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		client: client,
		cfg:    withDefaults(cfg),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func withDefaults(cfg config.SyncConfig) config.SyncConfig {
	d := config.DefaultSyncConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = d.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = d.MaxBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = d.ErrorDelay
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = d.CallTimeout
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = d.ClaimTTL
	}
	return cfg
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastCycle returns the most recent cycle report and when it completed.
// The time is zero before the first cycle.
func (c *Coordinator) LastCycle() (CycleReport, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.lastTime
}

// Start moves the coordinator from Idle to Running and launches the loop.
// The loop also ends when ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.state = StateRunning
	c.cancel = cancel
	c.done = make(chan struct{})

	logging.Info().
		Dur("interval", c.cfg.Interval).
		Int("batch_size", c.cfg.BatchSize).
		Int("max_attempts", c.cfg.MaxAttempts).
		Msg("Starting sync coordinator")

	go c.loop(runCtx, c.done)
	return nil
}

// Stop cancels the loop and waits until the in-flight push, if any, has
// completed or timed out. The coordinator is Idle when Stop returns.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return ErrNotRunning
	}
	c.state = StateStopping
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	logging.Info().Msg("Stopping sync coordinator...")
	cancel()
	<-done

	c.mu.Lock()
	c.state = StateIdle
	c.cancel = nil
	c.mu.Unlock()

	logging.Info().Msg("Sync coordinator stopped")
	return nil
}

func (c *Coordinator) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		// Parent context cancelled without Stop.
		if c.state == StateRunning {
			c.state = StateIdle
			c.cancel()
			c.cancel = nil
		}
		c.mu.Unlock()
		close(done)
	}()

	for {
		report, err := c.RunCycle(ctx)
		if ctx.Err() != nil {
			return
		}

		delay := c.cfg.Interval
		if err != nil || report.PullError != "" {
			if err != nil {
				logging.Error().Err(err).Msg("Sync cycle failed")
			}
			delay = c.cfg.ErrorDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
