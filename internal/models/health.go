// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package models

import "time"

// HealthStatus is the detailed health payload.
type HealthStatus struct {
	Status            string     `json:"status"` // healthy or degraded
	Version           string     `json:"version"`
	Environment       string     `json:"environment"`
	DatabaseConnected bool       `json:"database_connected"`
	FOGISConnected    bool       `json:"fogis_connected"`
	SyncState         string     `json:"sync_state"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	LastSyncError     string     `json:"last_sync_error,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}
