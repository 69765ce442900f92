// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/fogis"
	"github.com/tomtom215/matchreporter/internal/models"
)

func TestRunCycle_SyncsPendingEvent(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)

	var pushed fogis.PushRequest
	client := &mockClient{
		pushEventFunc: func(_ context.Context, req fogis.PushRequest) (fogis.PushResult, error) {
			pushed = req
			return fogis.PushResult{Delivered: true, ExternalID: "EV-1"}, nil
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	got := store.event(ev.ID)
	if !got.Synced || got.ExternalEventID == nil || *got.ExternalEventID != "EV-1" {
		t.Errorf("event = synced:%v external:%v, want synced with EV-1", got.Synced, got.ExternalEventID)
	}
	if got.SyncAttempts != 1 {
		t.Errorf("SyncAttempts = %d, want 1", got.SyncAttempts)
	}
	if pushed.SyncKey != ev.SyncKey || pushed.MatchExternalID != "FOGIS-1" || pushed.Minute != 15 {
		t.Errorf("push request = %+v", pushed)
	}
	if report.EventsAttempted != 1 || report.EventsSynced != 1 || !report.OK() {
		t.Errorf("report = %+v", report)
	}
}

func TestRunCycle_ThreeTransientFailures(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)

	client := &mockClient{
		pushEventFunc: func(context.Context, fogis.PushRequest) (fogis.PushResult, error) {
			return fogis.PushResult{}, transientErr()
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	got := store.event(ev.ID)
	if got.Synced {
		t.Error("event should remain unsynced")
	}
	if got.SyncAttempts != 3 {
		t.Errorf("SyncAttempts = %d, want 3", got.SyncAttempts)
	}
	if got.SyncError == nil || *got.SyncError == "" {
		t.Error("SyncError should be set")
	}
	if got.SyncPermanentFailure {
		t.Error("transient failures must not be permanent")
	}
	if client.pushCalls.Load() != 3 {
		t.Errorf("push calls = %d, want 3", client.pushCalls.Load())
	}
	if report.EventsFailed != 1 || report.OK() {
		t.Errorf("report = %+v", report)
	}

	// Still pending for the next cycle.
	pending, _ := store.ListPendingEvents(context.Background(), 10)
	if len(pending) != 1 || pending[0].ID != ev.ID {
		t.Errorf("pending = %v, want the failed event", pending)
	}
}

func TestRunCycle_EventuallySucceeds(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)

	var n atomic.Int32
	client := &mockClient{
		pushEventFunc: func(context.Context, fogis.PushRequest) (fogis.PushResult, error) {
			if n.Add(1) < 3 {
				return fogis.PushResult{}, transientErr()
			}
			return fogis.PushResult{Delivered: true, ExternalID: "EV-9"}, nil
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	if _, err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	got := store.event(ev.ID)
	if !got.Synced || got.SyncAttempts != 3 {
		t.Errorf("event = synced:%v attempts:%d, want synced after 3", got.Synced, got.SyncAttempts)
	}
}

func TestRunCycle_RejectedIsPermanent(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)

	client := &mockClient{
		pushEventFunc: func(context.Context, fogis.PushRequest) (fogis.PushResult, error) {
			return fogis.PushResult{}, rejectedErr()
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	got := store.event(ev.ID)
	if !got.SyncPermanentFailure || got.SyncAttempts != 1 {
		t.Errorf("event = permanent:%v attempts:%d, want permanent after 1 call", got.SyncPermanentFailure, got.SyncAttempts)
	}
	if client.pushCalls.Load() != 1 {
		t.Errorf("push calls = %d, want 1 (rejections are not retried)", client.pushCalls.Load())
	}
	if report.EventsPermanent != 1 {
		t.Errorf("EventsPermanent = %d, want 1", report.EventsPermanent)
	}

	// Excluded from the next cycle.
	if _, err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("second RunCycle() error = %v", err)
	}
	if client.pushCalls.Load() != 1 {
		t.Error("permanently failed event was pushed again")
	}
}

func TestRunCycle_MatchWithoutExternalID(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("")
	ev := store.addEvent(match.ID)

	client := &mockClient{}
	c := NewCoordinator(store, client, newTestSyncConfig())

	if _, err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	got := store.event(ev.ID)
	if !got.SyncPermanentFailure || got.SyncError == nil {
		t.Errorf("event = %+v, want permanent failure with error", got)
	}
	if got.SyncAttempts != 0 {
		t.Errorf("SyncAttempts = %d, want 0 when no push was made", got.SyncAttempts)
	}
	if client.pushCalls.Load() != 0 {
		t.Error("no push should be attempted for an unlinked match")
	}
}

func TestRunCycle_MissingMatchRecordsNoAttempts(t *testing.T) {
	store := newMemStore()
	ev := store.addEvent(4242)

	client := &mockClient{}
	c := NewCoordinator(store, client, newTestSyncConfig())

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	got := store.event(ev.ID)
	if !got.SyncPermanentFailure || got.SyncAttempts != 0 || got.LastSyncAttempt == nil {
		t.Errorf("event = permanent:%v attempts:%d last:%v, want permanent with 0 attempts", got.SyncPermanentFailure, got.SyncAttempts, got.LastSyncAttempt)
	}
	if report.EventsPermanent != 1 || client.pushCalls.Load() != 0 {
		t.Errorf("report = %+v, push calls = %d", report, client.pushCalls.Load())
	}
}

func TestRunCycle_PanicDoesNotStopBatch(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	first := store.addEvent(match.ID)
	second := store.addEvent(match.ID)

	client := &mockClient{
		pushEventFunc: func(_ context.Context, req fogis.PushRequest) (fogis.PushResult, error) {
			if req.SyncKey == first.SyncKey {
				panic("boom")
			}
			return fogis.PushResult{Delivered: true, ExternalID: "EV-2"}, nil
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if got := store.event(first.ID); got.Synced || got.SyncError == nil || got.SyncAttempts != 1 {
		t.Errorf("panicking event = %+v, want failure recorded", got)
	}
	if got := store.event(second.ID); !got.Synced {
		t.Error("second event should still be synced")
	}
	if report.EventsFailed != 1 || report.EventsSynced != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunCycle_StoreErrorAffectsOnlyThatRow(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	first := store.addEvent(match.ID)
	second := store.addEvent(match.ID)
	store.markErr = func(id int64) error {
		if id == first.ID {
			return errors.New("disk full")
		}
		return nil
	}

	c := NewCoordinator(store, &mockClient{}, newTestSyncConfig())
	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if store.event(first.ID).Synced {
		t.Error("first event write failed and must stay unsynced")
	}
	if !store.event(second.ID).Synced {
		t.Error("second event should be synced")
	}
	if report.EventsFailed != 1 || report.EventsSynced != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunCycle_PullFailureStillPushes(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)

	client := &mockClient{
		fetchMatchesFunc: func(context.Context, fogis.Window) ([]models.Match, error) {
			return nil, &fogis.IntegrationError{Op: "fetch matches", Kind: fogis.KindUnreachable, Err: errors.New("connection refused")}
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if report.PullError == "" {
		t.Error("PullError should be set")
	}
	if !store.event(ev.ID).Synced {
		t.Error("push phase should run after a failed pull")
	}
}

func TestRunCycle_ImportsMatchesInWindow(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	var window fogis.Window
	ext := "FOGIS-77"
	client := &mockClient{
		fetchMatchesFunc: func(_ context.Context, w fogis.Window) ([]models.Match, error) {
			window = w
			return []models.Match{{ExternalID: &ext, HomeTeam: "Malmö FF", AwayTeam: "Djurgården"}}, nil
		},
	}
	pub := &recordingPublisher{}
	c := NewCoordinator(store, client, newTestSyncConfig(), WithClock(func() time.Time { return now }), WithPublisher(pub))

	first, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	second, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle() error = %v", err)
	}

	if !window.From.Equal(now.AddDate(0, 0, -1)) || !window.To.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("window = %v..%v", window.From, window.To)
	}
	if first.MatchesCreated != 1 || second.MatchesCreated != 0 || second.MatchesUpdated != 1 {
		t.Errorf("created/updated = %d/%d then %d/%d", first.MatchesCreated, first.MatchesUpdated, second.MatchesCreated, second.MatchesUpdated)
	}
	if len(store.matches) != 1 {
		t.Errorf("matches = %d, want 1", len(store.matches))
	}
	if kinds := pub.kinds(); len(kinds) != 2 || kinds[0] != models.OutcomeMatchImported {
		t.Errorf("published kinds = %v", kinds)
	}
}

func TestRunCycle_Authentication(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	store.addEvent(match.ID)

	failPush := atomic.Bool{}
	failPush.Store(true)
	client := &mockClient{
		pushEventFunc: func(context.Context, fogis.PushRequest) (fogis.PushResult, error) {
			if failPush.Load() {
				return fogis.PushResult{}, authErr()
			}
			return fogis.PushResult{Delivered: true, ExternalID: "EV-1"}, nil
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig(), WithCredentials(fogis.Credentials{Username: "u", Password: "p"}))

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if client.authCalls.Load() != 1 {
		t.Errorf("auth calls = %d, want 1", client.authCalls.Load())
	}
	if client.pushCalls.Load() != 1 {
		t.Errorf("push calls = %d, want 1 (auth errors are not retried in-cycle)", client.pushCalls.Load())
	}
	if report.EventsFailed != 1 || report.EventsPermanent != 0 {
		t.Errorf("report = %+v", report)
	}

	// The auth error drops the session, so the next cycle authenticates.
	failPush.Store(false)
	if _, err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("second RunCycle() error = %v", err)
	}
	if client.authCalls.Load() != 2 {
		t.Errorf("auth calls = %d, want 2", client.authCalls.Load())
	}

	// Session held: no further authentication.
	if _, err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("third RunCycle() error = %v", err)
	}
	if client.authCalls.Load() != 2 {
		t.Errorf("auth calls = %d, want 2", client.authCalls.Load())
	}
}

func TestRunCycle_AuthenticationFailureAbortsCycle(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)

	client := &mockClient{
		authenticateFunc: func(context.Context, fogis.Credentials) error {
			return &fogis.IntegrationError{Op: "authenticate", Kind: fogis.KindAuth, StatusCode: 401, Err: errors.New("invalid credentials")}
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig(), WithCredentials(fogis.Credentials{Username: "u", Password: "bad"}))

	report, err := c.RunCycle(context.Background())
	if err == nil {
		t.Fatal("RunCycle() should fail when authentication fails")
	}
	if report.Error == "" || report.OK() {
		t.Errorf("report = %+v", report)
	}
	if got := store.event(ev.ID); got.SyncAttempts != 0 {
		t.Error("no event should be touched without a session")
	}
}

func TestRunCycle_PublishesOutcomesAndCallback(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ok := store.addEvent(match.ID)
	bad := store.addEvent(match.ID)

	client := &mockClient{
		pushEventFunc: func(_ context.Context, req fogis.PushRequest) (fogis.PushResult, error) {
			if req.SyncKey == bad.SyncKey {
				return fogis.PushResult{}, rejectedErr()
			}
			return fogis.PushResult{Delivered: true, ExternalID: "EV-1"}, nil
		},
	}
	pub := &recordingPublisher{err: errors.New("bus down")}
	var callback CycleReport
	c := NewCoordinator(store, client, newTestSyncConfig(),
		WithPublisher(pub),
		WithOnCycleCompleted(func(r CycleReport) { callback = r }),
	)

	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v (publish errors must not fail the cycle)", err)
	}

	if len(pub.outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(pub.outcomes))
	}
	byEvent := map[int64]models.SyncOutcome{}
	for _, o := range pub.outcomes {
		byEvent[o.EventID] = o
	}
	if o := byEvent[ok.ID]; o.Kind != models.OutcomeEventSynced || o.ExternalID != "EV-1" {
		t.Errorf("synced outcome = %+v", o)
	}
	if o := byEvent[bad.ID]; o.Kind != models.OutcomeEventSyncFailed || !o.Permanent || o.Error == "" {
		t.Errorf("failed outcome = %+v", o)
	}

	if callback.EventsSynced != report.EventsSynced || callback.EventsPermanent != 1 {
		t.Errorf("callback report = %+v", callback)
	}
	last, at := c.LastCycle()
	if at.IsZero() || last.EventsAttempted != 2 {
		t.Errorf("LastCycle() = %+v at %v", last, at)
	}
}

func TestRunCycle_BatchSize(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	for i := 0; i < 5; i++ {
		store.addEvent(match.ID)
	}
	cfg := newTestSyncConfig()
	cfg.BatchSize = 2

	c := NewCoordinator(store, &mockClient{}, cfg)
	report, err := c.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if report.EventsSynced != 2 {
		t.Errorf("EventsSynced = %d, want 2", report.EventsSynced)
	}
}

func TestCoordinator_Lifecycle(t *testing.T) {
	store := newMemStore()
	cycles := make(chan CycleReport, 4)
	c := NewCoordinator(store, &mockClient{}, newTestSyncConfig(),
		WithOnCycleCompleted(func(r CycleReport) { cycles <- r }))

	if c.State() != StateIdle {
		t.Fatalf("initial State() = %v", c.State())
	}
	if err := c.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() on idle = %v, want ErrNotRunning", err)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}
	if c.State() != StateRunning {
		t.Errorf("State() = %v, want running", c.State())
	}

	select {
	case <-cycles:
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle should run immediately after Start")
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("State() after Stop = %v, want idle", c.State())
	}

	// Restartable.
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestCoordinator_ParentContextCancel(t *testing.T) {
	c := NewCoordinator(newMemStore(), &mockClient{}, newTestSyncConfig())
	ctx, cancel := context.WithCancel(context.Background())

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for c.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatal("coordinator did not return to idle after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Stop must wait for the in-flight push and must not let a second push of
// the same event start.
func TestCoordinator_StopWaitsForInFlightPush(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	ev := store.addEvent(match.ID)
	store.addEvent(match.ID)

	started := make(chan struct{})
	release := make(chan struct{})
	var inFlight, maxInFlight atomic.Int32
	client := &mockClient{
		pushEventFunc: func(ctx context.Context, req fogis.PushRequest) (fogis.PushResult, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			if n > maxInFlight.Load() {
				maxInFlight.Store(n)
			}
			if req.SyncKey == ev.SyncKey {
				close(started)
				select {
				case <-release:
				case <-ctx.Done():
					return fogis.PushResult{}, ctx.Err()
				}
			}
			return fogis.PushResult{Delivered: true, ExternalID: "EV-" + req.SyncKey}, nil
		},
	}
	c := NewCoordinator(store, client, newTestSyncConfig())

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("push never started")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- c.Stop() }()

	select {
	case <-stopped:
		t.Fatal("Stop() returned while a push was in flight")
	case <-time.After(100 * time.Millisecond):
	}
	if c.State() != StateStopping {
		t.Errorf("State() during stop = %v, want stopping", c.State())
	}

	close(release)
	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return after the push completed")
	}

	if got := client.pushCalls.Load(); got != 1 {
		t.Errorf("push calls = %d, want 1 (no pushes after stop)", got)
	}
	if maxInFlight.Load() != 1 {
		t.Errorf("max concurrent pushes = %d, want 1", maxInFlight.Load())
	}
	if got := store.event(ev.ID); !got.Synced {
		t.Error("in-flight push result should be recorded")
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestCoordinator_RunCycleSerialized(t *testing.T) {
	store := newMemStore()
	match := store.addMatch("FOGIS-1")
	for i := 0; i < 4; i++ {
		store.addEvent(match.ID)
	}

	c := NewCoordinator(store, &mockClient{}, newTestSyncConfig())
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := c.RunCycle(context.Background())
			errs <- err
		}()
	}
	for i := 0; i < 3; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("RunCycle() error = %v", err)
		}
	}

	for id, e := range store.events {
		if e.SyncAttempts != 1 {
			t.Errorf("event %d attempts = %d, want exactly one delivery", id, e.SyncAttempts)
		}
	}
}

func TestNewCoordinator_DefaultsMatchConfig(t *testing.T) {
	c := NewCoordinator(newMemStore(), &mockClient{}, config.SyncConfig{})

	want := config.DefaultSyncConfig()
	want.Enabled = false
	want.DaysAhead, want.DaysBehind = 0, 0
	if c.cfg != want {
		t.Errorf("cfg = %+v, want %+v", c.cfg, want)
	}

	c = NewCoordinator(newMemStore(), &mockClient{}, config.SyncConfig{InitialBackoff: time.Minute, MaxBackoff: time.Second})
	if c.cfg.MaxBackoff != time.Minute {
		t.Errorf("MaxBackoff = %v, want raised to the initial backoff", c.cfg.MaxBackoff)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{StateIdle: "idle", StateRunning: "running", StateStopping: "stopping", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}

func TestCycleReportResult(t *testing.T) {
	tests := []struct {
		report CycleReport
		want   string
	}{
		{CycleReport{}, "ok"},
		{CycleReport{PullError: "x"}, "partial"},
		{CycleReport{EventsFailed: 1}, "partial"},
		{CycleReport{Error: "x"}, "error"},
	}
	for i, tt := range tests {
		if got := tt.report.result(); got != tt.want {
			t.Errorf("case %d: result() = %q, want %q", i, got, tt.want)
		}
	}
}
