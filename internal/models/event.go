// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package models

import "time"

// EventTypes lists the accepted event types.
var EventTypes = []string{
	"goal",
	"own_goal",
	"penalty_goal",
	"yellow_card",
	"red_card",
	"substitution",
	"penalty",
	"corner",
	"free_kick",
	"offside",
	"foul",
	"injury",
	"other",
}

// MaxEventMinute is the highest accepted match minute (extra time included).
const MaxEventMinute = 130

// Event is a single reported match occurrence. Every event belongs to exactly
// one existing match. Synced implies ExternalEventID is set.
type Event struct {
	ID          int64   `json:"id"`
	MatchID     int64   `json:"match_id"`
	EventType   string  `json:"event_type"`
	Minute      int     `json:"minute"`
	Description string  `json:"description"`
	PlayerName  *string `json:"player_name,omitempty"`
	PlayerID    *int64  `json:"player_id,omitempty"`
	Team        *string `json:"team,omitempty"`
	TeamID      *int64  `json:"team_id,omitempty"`

	VoiceTranscription *string  `json:"voice_transcription,omitempty"`
	ConfidenceScore    *float64 `json:"confidence_score,omitempty"`
	AudioFilePath      *string  `json:"audio_file_path,omitempty"`

	// SyncKey is assigned at creation and sent as the idempotency key on
	// every delivery attempt.
	SyncKey              string     `json:"sync_key"`
	Synced               bool       `json:"synced"`
	ExternalEventID      *string    `json:"external_event_id,omitempty"`
	SyncAttempts         int        `json:"sync_attempts"`
	LastSyncAttempt      *time.Time `json:"last_sync_attempt,omitempty"`
	SyncError            *string    `json:"sync_error,omitempty"`
	SyncPermanentFailure bool       `json:"sync_permanent_failure"`

	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventFilter selects events for listing.
type EventFilter struct {
	MatchID        *int64
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// SyncStatus is the sync-related view of an event.
type SyncStatus struct {
	EventID          int64      `json:"event_id"`
	Synced           bool       `json:"synced"`
	ExternalEventID  *string    `json:"external_event_id,omitempty"`
	Attempts         int        `json:"attempts"`
	LastAttempt      *time.Time `json:"last_attempt,omitempty"`
	LastError        *string    `json:"last_error,omitempty"`
	PermanentFailure bool       `json:"permanent_failure"`
}

// SyncStatus returns the sync view of e.
func (e *Event) SyncStatus() SyncStatus {
	return SyncStatus{
		EventID:          e.ID,
		Synced:           e.Synced,
		ExternalEventID:  e.ExternalEventID,
		Attempts:         e.SyncAttempts,
		LastAttempt:      e.LastSyncAttempt,
		LastError:        e.SyncError,
		PermanentFailure: e.SyncPermanentFailure,
	}
}
