// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package fogis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/models"
	"github.com/tomtom215/matchreporter/internal/testinfra"
)

func newTestClient(baseURL string) *HTTPClient {
	return NewClient(&config.FOGISConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "matchreporter-test/1.0",
	})
}

func authedClient(t *testing.T, srv *testinfra.FOGISServer) *HTTPClient {
	t.Helper()
	c := newTestClient(srv.URL())
	if err := c.Authenticate(context.Background(), Credentials{Username: srv.Username, Password: srv.Password}); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return c
}

func testPushRequest(key, matchID string) PushRequest {
	return PushRequest{
		SyncKey:         key,
		MatchExternalID: matchID,
		EventType:       "goal",
		Minute:          15,
		Description:     "header",
		OccurredAt:      time.Date(2026, 5, 1, 15, 15, 0, 0, time.UTC),
	}
}

func TestAuthenticate(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	c := newTestClient(srv.URL())
	ctx := context.Background()

	err := c.Authenticate(ctx, Credentials{Username: srv.Username, Password: "wrong"})
	if KindOf(err) != KindAuth {
		t.Errorf("bad password err = %v, want auth IntegrationError", err)
	}
	if c.HasSession() {
		t.Error("failed authentication must not leave a session")
	}

	if err := c.Authenticate(ctx, Credentials{}); KindOf(err) != KindAuth {
		t.Errorf("empty credentials err = %v, want auth", err)
	}

	if err := c.Authenticate(ctx, Credentials{Username: srv.Username, Password: srv.Password}); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if !c.HasSession() {
		t.Error("expected a session after authentication")
	}
}

func TestAuthenticate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	err := c.Authenticate(context.Background(), Credentials{Username: "u", Password: "p"})
	if KindOf(err) != KindUnreachable {
		t.Errorf("err = %v, want unreachable", err)
	}
	if !IsRetryable(err) {
		t.Error("unreachable errors should be retryable")
	}
}

func TestFetchMatches_Paging(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	kickoff := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		srv.AddMatch(testinfra.FOGISMatch{
			MatchID:     fmt.Sprint(1000 + i),
			HomeTeam:    "Home",
			AwayTeam:    "Away",
			MatchDate:   kickoff,
			Competition: "Allsvenskan",
			Status:      "scheduled",
		})
	}
	srv.AddMatch(testinfra.FOGISMatch{MatchID: "out-of-window", MatchDate: kickoff.AddDate(0, 2, 0)})

	c := authedClient(t, srv)
	got, err := c.FetchMatches(context.Background(), Window{From: kickoff.AddDate(0, 0, -1), To: kickoff.AddDate(0, 0, 7)})
	if err != nil {
		t.Fatalf("FetchMatches() error = %v", err)
	}
	if len(got) != 150 {
		t.Fatalf("len = %d, want 150", len(got))
	}
	if !got[0].HasExternalID() || *got[0].ExternalID != "1000" {
		t.Errorf("ExternalID = %v, want 1000", got[0].ExternalID)
	}
	if got[0].Status != models.MatchScheduled || !got[0].MatchDate.Equal(kickoff) {
		t.Errorf("match = %+v", got[0])
	}

	pages := 0
	for _, c := range srv.GetCaptures() {
		if c.Path == "/api/matches" {
			pages++
		}
	}
	if pages != 2 {
		t.Errorf("pages requested = %d, want 2", pages)
	}
}

func TestFetchMatches_NumericIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"matches":[{"match_id":123456,"home_team":"AIK","away_team":"Hammarby","match_date":"2025-08-20T19:00:00Z","status":"finished","referee_name":"Test Referee"}]}`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchMatches(context.Background(), WindowAround(time.Now(), 1, 7))
	if err != nil {
		t.Fatalf("FetchMatches() error = %v", err)
	}
	if len(got) != 1 || *got[0].ExternalID != "123456" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Status != models.MatchCompleted {
		t.Errorf("Status = %s, want completed", got[0].Status)
	}
	if got[0].RefereeName == nil || *got[0].RefereeName != "Test Referee" {
		t.Errorf("RefereeName = %v", got[0].RefereeName)
	}
}

func TestPushEvent_Headers(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	srv.AddMatch(testinfra.FOGISMatch{MatchID: "M1"})
	c := authedClient(t, srv)

	res, err := c.PushEvent(context.Background(), testPushRequest("key-1", "M1"))
	if err != nil {
		t.Fatalf("PushEvent() error = %v", err)
	}
	if !res.Delivered || res.ExternalID == "" || res.Duplicate {
		t.Errorf("result = %+v", res)
	}

	var push *testinfra.RequestCapture
	captures := srv.GetCaptures()
	for i := range captures {
		if captures[i].Path == "/api/matches/M1/events" {
			push = &captures[i]
		}
	}
	if push == nil {
		t.Fatal("push request not captured")
	}
	for header, want := range map[string]string{
		"Idempotency-Key": "key-1",
		"User-Agent":      "matchreporter-test/1.0",
		"Accept":          "application/json",
		"Content-Type":    "application/json",
	} {
		if got := push.Headers.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if push.Headers.Get("Authorization") == "" {
		t.Error("expected bearer token")
	}
}

// Re-pushing the same sync key must confirm the first delivery, not create a
// second external record.
func TestPushEvent_IdempotentRepush(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	srv.AddMatch(testinfra.FOGISMatch{MatchID: "M1"})
	c := authedClient(t, srv)
	ctx := context.Background()

	first, err := c.PushEvent(ctx, testPushRequest("key-1", "M1"))
	if err != nil {
		t.Fatalf("first PushEvent() error = %v", err)
	}
	second, err := c.PushEvent(ctx, testPushRequest("key-1", "M1"))
	if err != nil {
		t.Fatalf("second PushEvent() error = %v", err)
	}

	if !second.Delivered || !second.Duplicate {
		t.Errorf("second result = %+v, want delivered duplicate", second)
	}
	if second.ExternalID != first.ExternalID {
		t.Errorf("ExternalID = %q, want %q", second.ExternalID, first.ExternalID)
	}
	if n := len(srv.Events()); n != 1 {
		t.Errorf("external records = %d, want 1", n)
	}
}

func TestPushEvent_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantKind  ErrorKind
		permanent bool
		retryable bool
	}{
		{"bad request", http.StatusBadRequest, KindRejected, true, false},
		{"unprocessable", http.StatusUnprocessableEntity, KindRejected, true, false},
		{"too many requests", http.StatusTooManyRequests, KindTransient, false, true},
		{"server error", http.StatusInternalServerError, KindTransient, false, true},
		{"bad gateway", http.StatusBadGateway, KindTransient, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testinfra.NewFOGISServer(t)
			srv.AddMatch(testinfra.FOGISMatch{MatchID: "M1"})
			srv.FailNextPushes(tt.status)
			c := authedClient(t, srv)

			_, err := c.PushEvent(context.Background(), testPushRequest("k", "M1"))
			if KindOf(err) != tt.wantKind {
				t.Fatalf("err = %v, want kind %s", err, tt.wantKind)
			}
			if IsPermanent(err) != tt.permanent || IsRetryable(err) != tt.retryable {
				t.Errorf("permanent=%v retryable=%v", IsPermanent(err), IsRetryable(err))
			}
		})
	}
}

func TestPushEvent_UnknownMatchRejected(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	c := authedClient(t, srv)

	_, err := c.PushEvent(context.Background(), testPushRequest("k", "nope"))
	if !IsPermanent(err) {
		t.Fatalf("err = %v, want permanent rejection", err)
	}
	var ie *IntegrationError
	if !asIntegrationError(err, &ie) || ie.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %v, want 404", ie)
	}
}

func TestPushEvent_LocalValidation(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")

	if _, err := c.PushEvent(context.Background(), testPushRequest("", "M1")); !IsPermanent(err) {
		t.Errorf("missing sync key err = %v, want rejected", err)
	}
	if _, err := c.PushEvent(context.Background(), testPushRequest("k", "")); !IsPermanent(err) {
		t.Errorf("missing match id err = %v, want rejected", err)
	}
}

func TestPushEvent_ReauthenticatesOnce(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	srv.AddMatch(testinfra.FOGISMatch{MatchID: "M1"})
	c := authedClient(t, srv)

	srv.ExpireToken()
	res, err := c.PushEvent(context.Background(), testPushRequest("k", "M1"))
	if err != nil {
		t.Fatalf("PushEvent() after expiry error = %v", err)
	}
	if !res.Delivered {
		t.Error("expected delivery after re-authentication")
	}
	if srv.AuthCalls() != 2 {
		t.Errorf("auth calls = %d, want 2", srv.AuthCalls())
	}
}

func TestPushEvent_AuthFailsAfterReauth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/token" {
			fmt.Fprint(w, `{"access_token":"t"}`)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.Authenticate(context.Background(), Credentials{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	_, err := c.PushEvent(context.Background(), testPushRequest("k", "M1"))
	if KindOf(err) != KindAuth {
		t.Errorf("err = %v, want auth", err)
	}
	if IsRetryable(err) || IsPermanent(err) {
		t.Error("auth errors are neither retryable nor permanent")
	}
}

func TestPushEvent_MissingEventID(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind ErrorKind
	}{
		{"created without id", http.StatusCreated, KindTransient},
		{"conflict without id", http.StatusConflict, KindRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message":"x"}`)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).PushEvent(context.Background(), testPushRequest("k", "M1"))
			if KindOf(err) != tt.wantKind {
				t.Errorf("err = %v, want %s", err, tt.wantKind)
			}
		})
	}
}

func TestPushEvent_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).PushEvent(ctx, testPushRequest("k", "M1"))
	if KindOf(err) != KindUnreachable {
		t.Errorf("err = %v, want unreachable", err)
	}
}

func TestPing(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	if err := newTestClient(srv.URL()).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	if err := newTestClient(down.URL).Ping(context.Background()); KindOf(err) != KindTransient {
		t.Errorf("Ping() err = %v, want transient", err)
	}
}

func TestRateLimiter(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	c := NewClient(&config.FOGISConfig{BaseURL: srv.URL(), RateLimit: 20, RateBurst: 1})
	ctx := context.Background()

	start := time.Now()
	if err := c.Authenticate(ctx, Credentials{Username: srv.Username, Password: srv.Password}); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.FetchMatches(ctx, Window{From: time.Now(), To: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("FetchMatches() error = %v", err)
		}
	}
	// burst 1 at 20/s: the 2nd and 3rd calls wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 calls took %v, expected rate limiting", elapsed)
	}
}

func TestPing_SkipsRateLimiter(t *testing.T) {
	srv := testinfra.NewFOGISServer(t)
	// 1 request per minute: a second limited call would block for a minute.
	c := NewClient(&config.FOGISConfig{BaseURL: srv.URL(), RateLimit: 1.0 / 60, RateBurst: 1})
	ctx := context.Background()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for i := 0; i < 5; i++ {
		if err := c.Ping(pingCtx); err != nil {
			t.Fatalf("Ping() #%d error = %v", i, err)
		}
	}

	// The single token is still available for real work.
	authCtx, cancelAuth := context.WithTimeout(ctx, 2*time.Second)
	defer cancelAuth()
	if err := c.Authenticate(authCtx, Credentials{Username: srv.Username, Password: srv.Password}); err != nil {
		t.Errorf("Authenticate() after pings error = %v", err)
	}
}
