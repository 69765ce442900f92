// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package services

import (
	"context"
	"errors"
	"fmt"

	syncpkg "github.com/tomtom215/matchreporter/internal/sync"
)

// StartStopper is the lifecycle of *sync.Coordinator.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService runs the sync coordinator loop as a supervised service.
//
// Serve starts the coordinator, waits for cancellation and then stops it.
// Stop waits for an in-flight push to finish, so Serve returns only after
// the last delivery has been recorded.
type SyncService struct {
	coordinator StartStopper
	name        string
}

// NewSyncService creates a new sync service wrapper.
func NewSyncService(coordinator StartStopper) *SyncService {
	return &SyncService{
		coordinator: coordinator,
		name:        "sync-coordinator",
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.coordinator.Start(ctx); err != nil {
		return fmt.Errorf("sync coordinator start failed: %w", err)
	}

	<-ctx.Done()

	// ErrNotRunning means the loop already exited on the cancelled context.
	if err := s.coordinator.Stop(); err != nil && !errors.Is(err, syncpkg.ErrNotRunning) {
		return fmt.Errorf("sync coordinator stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *SyncService) String() string {
	return s.name
}
