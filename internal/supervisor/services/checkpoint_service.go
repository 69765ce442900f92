// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package services

import (
	"context"
	"time"

	"github.com/tomtom215/matchreporter/internal/logging"
)

// Checkpointer flushes the database WAL. *database.DB implements it.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService checkpoints the database on a fixed interval. A failed
// checkpoint is logged and retried on the next tick; it never stops the
// service.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	timeout  time.Duration
	name     string
}

// NewCheckpointService creates a checkpoint service. interval must be
// positive.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	return &CheckpointService{
		db:       db,
		interval: interval,
		timeout:  time.Minute,
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.checkpoint(ctx)
		}
	}
}

func (s *CheckpointService) checkpoint(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Database checkpoint failed")
		return
	}
	logging.Debug().Dur("duration", time.Since(start)).Msg("Database checkpoint completed")
}

// String implements fmt.Stringer for suture's logs.
func (s *CheckpointService) String() string {
	return s.name
}
