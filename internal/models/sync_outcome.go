// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package models

import "time"

// OutcomeKind names a sync outcome. It doubles as the event bus topic
// suffix.
type OutcomeKind string

const (
	OutcomeEventSynced     OutcomeKind = "event.synced"
	OutcomeEventSyncFailed OutcomeKind = "event.sync_failed"
	OutcomeMatchImported   OutcomeKind = "match.imported"
)

// SyncOutcome is one result produced by a coordinator cycle.
type SyncOutcome struct {
	Kind       OutcomeKind `json:"kind"`
	EventID    int64       `json:"event_id,omitempty"`
	MatchID    int64       `json:"match_id,omitempty"`
	ExternalID string      `json:"external_id,omitempty"`
	Attempts   int         `json:"attempts,omitempty"`
	Error      string      `json:"error,omitempty"`
	Permanent  bool        `json:"permanent,omitempty"`
	Duplicate  bool        `json:"duplicate,omitempty"`

	// Set on match.imported only.
	MatchesCreated int `json:"matches_created,omitempty"`
	MatchesUpdated int `json:"matches_updated,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
