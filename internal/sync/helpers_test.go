// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package sync

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/database"
	"github.com/tomtom215/matchreporter/internal/fogis"
	"github.com/tomtom215/matchreporter/internal/models"
)

// newTestSyncConfig uses millisecond backoff so retry paths run fast.
func newTestSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Enabled:        true,
		Interval:       time.Hour,
		DaysAhead:      7,
		DaysBehind:     1,
		BatchSize:      10,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		ErrorDelay:     time.Hour,
		CallTimeout:    2 * time.Second,
		ClaimTTL:       time.Minute,
	}
}

// mockClient implements fogis.Client with function fields.
type mockClient struct {
	authenticateFunc func(ctx context.Context, creds fogis.Credentials) error
	fetchMatchesFunc func(ctx context.Context, w fogis.Window) ([]models.Match, error)
	pushEventFunc    func(ctx context.Context, req fogis.PushRequest) (fogis.PushResult, error)

	authCalls atomic.Int32
	pushCalls atomic.Int32
}

func (m *mockClient) Authenticate(ctx context.Context, creds fogis.Credentials) error {
	m.authCalls.Add(1)
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, creds)
	}
	return nil
}

func (m *mockClient) FetchMatches(ctx context.Context, w fogis.Window) ([]models.Match, error) {
	if m.fetchMatchesFunc != nil {
		return m.fetchMatchesFunc(ctx, w)
	}
	return nil, nil
}

func (m *mockClient) PushEvent(ctx context.Context, req fogis.PushRequest) (fogis.PushResult, error) {
	n := m.pushCalls.Add(1)
	if m.pushEventFunc != nil {
		return m.pushEventFunc(ctx, req)
	}
	return fogis.PushResult{Delivered: true, ExternalID: fmt.Sprintf("EXT-%d", n)}, nil
}

func (m *mockClient) Ping(context.Context) error {
	return nil
}

// memStore is an in-memory Store with the same conditional-update rules as
// the DuckDB store.
type memStore struct {
	mu      sync.Mutex
	matches map[int64]*models.Match
	events  map[int64]*models.Event
	claimed map[int64]bool
	nextID  int64

	upsertErr error
	markErr   func(id int64) error
	upserts   int
}

func newMemStore() *memStore {
	return &memStore{
		matches: make(map[int64]*models.Match),
		events:  make(map[int64]*models.Event),
		claimed: make(map[int64]bool),
	}
}

func (s *memStore) addMatch(externalID string) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m := &models.Match{ID: s.nextID, HomeTeam: "Home", AwayTeam: "Away", Status: models.MatchScheduled}
	if externalID != "" {
		m.ExternalID = &externalID
	}
	s.matches[m.ID] = m
	return m
}

func (s *memStore) addEvent(matchID int64) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e := &models.Event{
		ID:        s.nextID,
		MatchID:   matchID,
		EventType: "goal",
		Minute:    15,
		SyncKey:   fmt.Sprintf("key-%d", s.nextID),
		CreatedAt: time.Now().UTC(),
	}
	s.events[e.ID] = e
	return e
}

func (s *memStore) event(id int64) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.events[id]
}

func (s *memStore) UpsertMatches(_ context.Context, matches []models.Match) (models.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return models.UpsertResult{}, s.upsertErr
	}
	var res models.UpsertResult
	for i := range matches {
		found := false
		for _, existing := range s.matches {
			if existing.HasExternalID() && *existing.ExternalID == *matches[i].ExternalID {
				existing.HomeTeam = matches[i].HomeTeam
				existing.AwayTeam = matches[i].AwayTeam
				found = true
				res.Updated++
				break
			}
		}
		if !found {
			s.nextID++
			m := matches[i]
			m.ID = s.nextID
			s.matches[m.ID] = &m
			res.Created++
		}
	}
	return res, nil
}

func (s *memStore) GetMatch(_ context.Context, id int64) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("get match %d: %w", id, database.ErrMatchNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) ListPendingEvents(_ context.Context, limit int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		if !e.Synced && !e.IsDeleted && !e.SyncPermanentFailure && !s.claimed[e.ID] {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ClaimEvent(_ context.Context, id int64, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.Synced || e.SyncPermanentFailure || s.claimed[id] {
		return false, nil
	}
	s.claimed[id] = true
	return true, nil
}

func (s *memStore) MarkEventSynced(_ context.Context, id int64, externalID string, attempts int) error {
	if s.markErr != nil {
		if err := s.markErr(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return database.ErrNotFound
	}
	if e.Synced {
		return database.ErrAlreadySynced
	}
	now := time.Now().UTC()
	e.Synced = true
	e.ExternalEventID = &externalID
	e.SyncAttempts += attempts
	e.LastSyncAttempt = &now
	e.SyncError = nil
	delete(s.claimed, id)
	return nil
}

func (s *memStore) RecordSyncFailure(_ context.Context, id int64, attempts int, errText string, permanent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return database.ErrNotFound
	}
	if e.Synced {
		return database.ErrAlreadySynced
	}
	now := time.Now().UTC()
	e.SyncAttempts += attempts
	e.LastSyncAttempt = &now
	e.SyncError = &errText
	e.SyncPermanentFailure = permanent
	delete(s.claimed, id)
	return nil
}

// recordingPublisher collects published outcomes.
type recordingPublisher struct {
	mu       sync.Mutex
	outcomes []models.SyncOutcome
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, outcomes []models.SyncOutcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcomes...)
	return p.err
}

func (p *recordingPublisher) kinds() []models.OutcomeKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.OutcomeKind, len(p.outcomes))
	for i := range p.outcomes {
		out[i] = p.outcomes[i].Kind
	}
	return out
}

func transientErr() error {
	return &fogis.IntegrationError{Op: "push event", Kind: fogis.KindTransient, StatusCode: 503, Err: fmt.Errorf("service unavailable")}
}

func rejectedErr() error {
	return &fogis.IntegrationError{Op: "push event", Kind: fogis.KindRejected, StatusCode: 422, Err: fmt.Errorf("unknown player")}
}

func authErr() error {
	return &fogis.IntegrationError{Op: "push event", Kind: fogis.KindAuth, StatusCode: 401, Err: fmt.Errorf("token expired")}
}
