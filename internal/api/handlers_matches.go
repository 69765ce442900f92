// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/models"
)

// ListMatches handles GET /matches.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := ListMatchesRequest{
		Status: r.URL.Query().Get("status"),
		Limit:  getIntParam(r, "limit", 10),
		Offset: getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	matches, total, err := h.store.ListMatches(r.Context(), models.MatchFilter{
		Status: models.MatchStatus(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondData(w, http.StatusOK, models.ListPage{Items: matches, Total: total, Limit: req.Limit, Offset: req.Offset}, start)
}

// CreateMatch handles POST /matches.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateMatchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	match := req.toMatch()
	if err := h.store.CreateMatch(r.Context(), match); err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("match_id", match.ID).
		Bool("linked", match.HasExternalID()).
		Msg("Match created")

	respondData(w, http.StatusCreated, match, start)
}

// GetMatch handles GET /matches/{id}.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	match, err := h.store.GetMatch(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, match, start)
}

// StartMatch handles POST /matches/{id}/start.
func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	match, err := h.store.StartReporting(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("match_id", id).Msg("Match reporting started")
	respondData(w, http.StatusOK, match, start)
}

// StopMatch handles POST /matches/{id}/stop.
func (h *Handler) StopMatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	match, err := h.store.StopReporting(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("match_id", id).Msg("Match reporting stopped")
	respondData(w, http.StatusOK, match, start)
}
