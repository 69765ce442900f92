// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package fogis

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
)

// Client is the local contract with the external match system. HTTPClient
// and CircuitBreakerClient implement it.
type Client interface {
	// Authenticate establishes a session token reused by later calls.
	Authenticate(ctx context.Context, creds Credentials) error
	// FetchMatches returns the matches scheduled within w, normalized into
	// the local shape with ExternalID set.
	FetchMatches(ctx context.Context, w Window) ([]models.Match, error)
	// PushEvent delivers one event. Re-pushing an event the external system
	// already accepted returns the original external id with Duplicate set.
	PushEvent(ctx context.Context, req PushRequest) (PushResult, error)
	// Ping checks that the external system is reachable.
	Ping(ctx context.Context) error
}

// Credentials for the external system.
type Credentials struct {
	Username string
	Password string
}

// Window is an inclusive match date range.
type Window struct {
	From time.Time
	To   time.Time
}

// WindowAround returns the window from daysBehind days before now to
// daysAhead days after it.
func WindowAround(now time.Time, daysBehind, daysAhead int) Window {
	return Window{
		From: now.AddDate(0, 0, -daysBehind),
		To:   now.AddDate(0, 0, daysAhead),
	}
}

// PushRequest is one event delivery. SyncKey is sent as the idempotency key.
type PushRequest struct {
	SyncKey         string
	MatchExternalID string
	EventType       string
	Minute          int
	Description     string
	PlayerName      *string
	PlayerID        *int64
	Team            *string
	TeamID          *int64
	OccurredAt      time.Time
}

// NewPushRequest builds the delivery for e against the match's external id.
func NewPushRequest(e *models.Event, matchExternalID string) PushRequest {
	return PushRequest{
		SyncKey:         e.SyncKey,
		MatchExternalID: matchExternalID,
		EventType:       e.EventType,
		Minute:          e.Minute,
		Description:     e.Description,
		PlayerName:      e.PlayerName,
		PlayerID:        e.PlayerID,
		Team:            e.Team,
		TeamID:          e.TeamID,
		OccurredAt:      e.CreatedAt,
	}
}

// PushResult is the outcome of a successful delivery.
type PushResult struct {
	Delivered  bool
	ExternalID string
	// Duplicate is set when the external system had already accepted this
	// sync key. It is a confirmation, not a second record.
	Duplicate bool
}

// Wire types.

type tokenRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	GrantType string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type matchPage struct {
	Matches []matchDTO `json:"matches"`
}

type matchDTO struct {
	MatchID     externalID `json:"match_id"`
	HomeTeam    string     `json:"home_team"`
	AwayTeam    string     `json:"away_team"`
	HomeTeamID  *int64     `json:"home_team_id"`
	AwayTeamID  *int64     `json:"away_team_id"`
	MatchDate   time.Time  `json:"match_date"`
	Venue       string     `json:"venue"`
	Competition string     `json:"competition"`
	Status      string     `json:"status"`
	RefereeID   *int64     `json:"referee_id"`
	RefereeName *string    `json:"referee_name"`
	HomeScore   *int       `json:"home_score"`
	AwayScore   *int       `json:"away_score"`
}

type eventBody struct {
	EventType   string    `json:"event_type"`
	Minute      int       `json:"minute"`
	Description string    `json:"description"`
	PlayerName  *string   `json:"player_name,omitempty"`
	PlayerID    *int64    `json:"player_id,omitempty"`
	Team        *string   `json:"team,omitempty"`
	TeamID      *int64    `json:"team_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type eventResponse struct {
	EventID externalID `json:"event_id"`
	Message string     `json:"message"`
}

// externalID accepts both JSON numbers and strings.
type externalID string

func (id *externalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) >= 2 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*id = externalID(s)
		return nil
	}
	*id = externalID(data)
	return nil
}

func (d *matchDTO) toModel() models.Match {
	ext := string(d.MatchID)
	return models.Match{
		ExternalID:  &ext,
		HomeTeam:    d.HomeTeam,
		AwayTeam:    d.AwayTeam,
		HomeTeamID:  d.HomeTeamID,
		AwayTeamID:  d.AwayTeamID,
		MatchDate:   d.MatchDate.UTC(),
		Venue:       d.Venue,
		Competition: d.Competition,
		Status:      normalizeStatus(d.Status),
		RefereeID:   d.RefereeID,
		RefereeName: d.RefereeName,
		HomeScore:   d.HomeScore,
		AwayScore:   d.AwayScore,
	}
}

func normalizeStatus(s string) models.MatchStatus {
	switch s {
	case "live", "in_progress", "ongoing", "active":
		return models.MatchActive
	case "finished", "played", "completed":
		return models.MatchCompleted
	case "cancelled", "canceled":
		return models.MatchCancelled
	case "postponed":
		return models.MatchPostponed
	default:
		return models.MatchScheduled
	}
}
