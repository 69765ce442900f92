// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package testinfra

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// FOGISMatch is a match as served by the fake.
type FOGISMatch struct {
	MatchID     string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeTeamID  *int64    `json:"home_team_id,omitempty"`
	AwayTeamID  *int64    `json:"away_team_id,omitempty"`
	MatchDate   time.Time `json:"match_date"`
	Venue       string    `json:"venue"`
	Competition string    `json:"competition"`
	Status      string    `json:"status"`
}

// FOGISEvent is an event accepted by the fake.
type FOGISEvent struct {
	EventID        string `json:"-"`
	MatchID        string `json:"-"`
	IdempotencyKey string `json:"-"`
	EventType      string `json:"event_type"`
	Minute         int    `json:"minute"`
	Description    string `json:"description"`
}

// RequestCapture represents a captured request.
type RequestCapture struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

// FOGISServer is a fake FOGIS API backed by httptest.
type FOGISServer struct {
	Server   *httptest.Server
	Username string
	Password string

	// OnPush, when set, runs before every event delivery is handled. Tests
	// use it to block a push in flight or count concurrent calls.
	OnPush func(r *http.Request)

	mu        sync.Mutex
	token     string
	matches   []FOGISMatch
	events    []FOGISEvent
	byKey     map[string]string
	failNext  []int
	authCalls int
	pushCalls int
	captures  []RequestCapture
}

// NewFOGISServer starts a fake server; it is closed when the test ends.
func NewFOGISServer(t *testing.T) *FOGISServer {
	t.Helper()

	s := &FOGISServer{
		Username: "reporter",
		Password: "secret",
		byKey:    make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/token", s.handleToken)
	mux.HandleFunc("GET /api/matches", s.handleMatches)
	mux.HandleFunc("POST /api/matches/{id}/events", s.handlePush)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.captures = append(s.captures, RequestCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		s.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Server.Close)

	return s
}

// URL returns the server URL.
func (s *FOGISServer) URL() string {
	return s.Server.URL
}

// AddMatch adds matches to the listing.
func (s *FOGISServer) AddMatch(matches ...FOGISMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, matches...)
}

// FailNextPushes makes the next len(statuses) deliveries fail with the
// given statuses, in order.
func (s *FOGISServer) FailNextPushes(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, statuses...)
}

// ExpireToken invalidates the current session token.
func (s *FOGISServer) ExpireToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Events returns the accepted events.
func (s *FOGISServer) Events() []FOGISEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FOGISEvent, len(s.events))
	copy(out, s.events)
	return out
}

// AuthCalls returns the number of token requests.
func (s *FOGISServer) AuthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCalls
}

// PushCalls returns the number of delivery requests, including failed and
// duplicate ones.
func (s *FOGISServer) PushCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushCalls
}

// GetCaptures returns all captured requests.
func (s *FOGISServer) GetCaptures() []RequestCapture {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RequestCapture, len(s.captures))
	copy(out, s.captures)
	return out
}

func (s *FOGISServer) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		GrantType string `json:"grant_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCalls++

	if req.GrantType != "password" || req.Username != s.Username || req.Password != s.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	s.token = fmt.Sprintf("token-%d", s.authCalls)
	writeJSON(w, http.StatusOK, map[string]any{"access_token": s.token, "expires_in": 3600})
}

// authorized must be called with s.mu held.
func (s *FOGISServer) authorized(r *http.Request) bool {
	return s.token != "" && r.Header.Get("Authorization") == "Bearer "+s.token
}

func (s *FOGISServer) handleMatches(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 {
		limit = 100
	}

	var from, to time.Time
	if v := q.Get("date_from"); v != "" {
		from, _ = time.Parse(time.RFC3339, v)
	}
	if v := q.Get("date_to"); v != "" {
		to, _ = time.Parse(time.RFC3339, v)
	}

	inWindow := make([]FOGISMatch, 0, len(s.matches))
	for _, m := range s.matches {
		if !m.MatchDate.IsZero() && !from.IsZero() && m.MatchDate.Before(from) {
			continue
		}
		if !m.MatchDate.IsZero() && !to.IsZero() && m.MatchDate.After(to) {
			continue
		}
		inWindow = append(inWindow, m)
	}

	page := make([]FOGISMatch, 0)
	if offset < len(inWindow) {
		end := min(offset+limit, len(inWindow))
		page = inWindow[offset:end]
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": page})
}

func (s *FOGISServer) handlePush(w http.ResponseWriter, r *http.Request) {
	if hook := s.OnPush; hook != nil {
		hook(r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushCalls++

	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	if len(s.failNext) > 0 {
		status := s.failNext[0]
		s.failNext = s.failNext[1:]
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}

	matchID := r.PathValue("id")
	known := false
	for _, m := range s.matches {
		if m.MatchID == matchID {
			known = true
			break
		}
	}
	if !known {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown match " + matchID})
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Idempotency-Key required"})
		return
	}
	if existing, ok := s.byKey[key]; ok {
		writeJSON(w, http.StatusConflict, map[string]string{"event_id": existing, "message": "duplicate"})
		return
	}

	var ev FOGISEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "invalid event"})
		return
	}
	ev.EventID = fmt.Sprintf("EV-%d", len(s.events)+1)
	ev.MatchID = matchID
	ev.IdempotencyKey = key
	s.events = append(s.events, ev)
	s.byKey[key] = ev.EventID

	writeJSON(w, http.StatusCreated, map[string]string{"event_id": ev.EventID, "message": "created"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
