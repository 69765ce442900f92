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

// ListEvents handles GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	matchID, err := getOptionalInt64Param(r, "match_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	req := ListEventsRequest{
		MatchID: matchID,
		Limit:   getIntParam(r, "limit", 50),
		Offset:  getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	events, total, err := h.store.ListEvents(r.Context(), models.EventFilter{
		MatchID: req.MatchID,
		Limit:   req.Limit,
		Offset:  req.Offset,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondData(w, http.StatusOK, models.ListPage{Items: events, Total: total, Limit: req.Limit, Offset: req.Offset}, start)
}

// CreateEvent handles POST /events. The event is stored unsynced and picked
// up by the next sync cycle.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateEventRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	event := req.toEvent()
	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("event_id", event.ID).
		Int64("match_id", event.MatchID).
		Str("event_type", event.EventType).
		Int("minute", event.Minute).
		Msg("Event recorded")

	respondData(w, http.StatusCreated, event, start)
}

// GetEvent handles GET /events/{id}. Soft-deleted events are still returned.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, event, start)
}

// DeleteEvent handles DELETE /events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.SoftDeleteEvent(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("event_id", id).Msg("Event deleted")
	respondData(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}

// EventSyncStatus handles GET /events/{id}/sync.
func (h *Handler) EventSyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, event.SyncStatus(), start)
}

// ResetEventSync handles POST /events/{id}/sync/reset. It clears the
// permanent failure flag; delivery happens on the next sync cycle.
func (h *Handler) ResetEventSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.ResetSyncFailure(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("event_id", id).Int("sync_attempts", event.SyncAttempts).Msg("Sync failure reset")
	respondData(w, http.StatusOK, event.SyncStatus(), start)
}
