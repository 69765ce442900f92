// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
)

// Health handles GET /health. It reports database and FOGIS connectivity
// together with the sync coordinator state and the last cycle. A degraded
// status is still served with 200 so dashboards can read the body.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	fogisConnected := false
	if h.fogis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
		fogisConnected = h.fogis.Ping(ctx) == nil
		cancel()
	}

	health := models.HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		Environment:       h.environment,
		DatabaseConnected: dbConnected,
		FOGISConnected:    fogisConnected,
		SyncState:         "disabled",
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	if h.sync != nil {
		health.SyncState = h.sync.State().String()
		report, at := h.sync.LastCycle()
		if !at.IsZero() {
			health.LastSyncTime = &at
			switch {
			case report.Error != "":
				health.LastSyncError = report.Error
			case report.PullError != "":
				health.LastSyncError = report.PullError
			}
		}
	}

	if !dbConnected || (h.fogis != nil && !fogisConnected) {
		health.Status = "degraded"
	}

	respondData(w, http.StatusOK, health, start)
}

// HealthLive handles liveness probe requests. It returns 200 while the
// process is serving, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests. Only the database is
// required; FOGIS being down delays sync but does not stop event capture.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.store == nil || h.store.Ping(r.Context()) != nil {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   map[string]interface{}{"ready": false, "database": false},
			Metadata: models.Metadata{
				Timestamp: time.Now().UTC(),
			},
			Error: &models.APIError{Code: "DATABASE_ERROR", Message: "Database not available"},
		})
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"ready": true, "database": true}, start)
}
