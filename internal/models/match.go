// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package models

import "time"

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
	MatchPostponed MatchStatus = "postponed"
)

// Valid reports whether s is a known match status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchActive, MatchCompleted, MatchCancelled, MatchPostponed:
		return true
	default:
		return false
	}
}

// Match is a fixture events are reported against. Matches are created on
// import from the external system or manually, and are never hard-deleted.
type Match struct {
	ID int64 `json:"id"`

	// ExternalID is the match identifier in the external system. Nil for
	// manually created matches that have not been linked yet.
	ExternalID *string `json:"external_id,omitempty"`

	HomeTeam    string      `json:"home_team"`
	AwayTeam    string      `json:"away_team"`
	HomeTeamID  *int64      `json:"home_team_id,omitempty"`
	AwayTeamID  *int64      `json:"away_team_id,omitempty"`
	MatchDate   time.Time   `json:"match_date"`
	Venue       string      `json:"venue"`
	Competition string      `json:"competition"`
	Status      MatchStatus `json:"status"`
	RefereeID   *int64      `json:"referee_id,omitempty"`
	RefereeName *string     `json:"referee_name,omitempty"`
	HomeScore   *int        `json:"home_score,omitempty"`
	AwayScore   *int        `json:"away_score,omitempty"`

	IsActive           bool       `json:"is_active"`
	ReportingStartedAt *time.Time `json:"reporting_started_at,omitempty"`
	ReportingEndedAt   *time.Time `json:"reporting_ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasExternalID reports whether the match is linked to the external system.
func (m *Match) HasExternalID() bool {
	return m.ExternalID != nil && *m.ExternalID != ""
}

// MatchFilter selects matches for listing.
type MatchFilter struct {
	Status MatchStatus
	Limit  int
	Offset int
}

// UpsertResult counts the outcome of a batch match import.
type UpsertResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
