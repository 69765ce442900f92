// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
)

// CreateVoiceLog handles POST /voice/logs.
func (h *Handler) CreateVoiceLog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateVoiceLogRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	entry := req.toLog()
	if err := h.store.CreateVoiceLog(r.Context(), entry); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusCreated, entry, start)
}

// ListVoiceLogs handles GET /voice/logs.
func (h *Handler) ListVoiceLogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	matchID, err := getOptionalInt64Param(r, "match_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	eventID, err := getOptionalInt64Param(r, "event_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	req := ListVoiceLogsRequest{
		MatchID:       matchID,
		EventID:       eventID,
		OperationType: r.URL.Query().Get("operation_type"),
		Limit:         getIntParam(r, "limit", 50),
		Offset:        getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	logs, err := h.store.ListVoiceLogs(r.Context(), models.VoiceLogFilter{
		MatchID:       req.MatchID,
		EventID:       req.EventID,
		OperationType: req.OperationType,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, logs, start)
}
