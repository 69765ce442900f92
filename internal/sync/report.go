// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package sync

import (
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
)

// CycleReport summarizes one coordinator cycle.
type CycleReport struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	MatchesCreated int `json:"matches_created"`
	MatchesUpdated int `json:"matches_updated"`

	// EventsAttempted counts claimed events. Events claimed elsewhere are
	// counted in EventsSkipped instead.
	EventsAttempted int `json:"events_attempted"`
	EventsSynced    int `json:"events_synced"`
	EventsFailed    int `json:"events_failed"`
	EventsPermanent int `json:"events_permanent"`
	EventsSkipped   int `json:"events_skipped"`

	PullError string `json:"pull_error,omitempty"`
	Error     string `json:"error,omitempty"`

	Outcomes []models.SyncOutcome `json:"-"`
}

// OK reports whether every step of the cycle succeeded.
func (r *CycleReport) OK() bool {
	return r.Error == "" && r.PullError == "" && r.EventsFailed == 0 && r.EventsPermanent == 0
}

// result is the metrics label for the cycle.
func (r *CycleReport) result() string {
	switch {
	case r.Error != "":
		return "error"
	case r.PullError != "" || r.EventsFailed > 0 || r.EventsPermanent > 0:
		return "partial"
	default:
		return "ok"
	}
}

func (r *CycleReport) addOutcome(o models.SyncOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}
