// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
client.go - FOGIS REST API Client

Endpoints:
  - POST /api/auth/token: password grant, returns a bearer token
  - GET  /api/matches: date window, paged with limit/offset
  - POST /api/matches/{match_id}/events: event delivery, Idempotency-Key header
  - GET  /api/health: reachability

Session:
The bearer token is stored under a mutex and reused. A 401/403 response
triggers one re-authentication with the stored credentials and one retry
of the request.

Throttling:
All requests wait on a token bucket (golang.org/x/time/rate) so a large
pending queue cannot flood the external system.
*/

package fogis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/models"
)

const (
	pageSize = 100
	// maxPages bounds FetchMatches against a server that never returns a short page.
	maxPages = 100
)

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the FOGIS REST API.
type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.RWMutex
	token string
	creds *Credentials
}

// NewClient creates a client from configuration.
func NewClient(cfg *config.FOGISConfig) *HTTPClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "NLP-Match-Event-Reporter/1.0"
	}

	return &HTTPClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// HasSession reports whether a session token is held.
func (c *HTTPClient) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *HTTPClient) sessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) storedCredentials() *Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// Authenticate exchanges credentials for a session token. The credentials
// are kept for re-authentication when the token expires.
func (c *HTTPClient) Authenticate(ctx context.Context, creds Credentials) error {
	const op = "authenticate"

	if creds.Username == "" || creds.Password == "" {
		return newError(op, KindAuth, 0, errors.New("username and password are required"))
	}

	body := tokenRequest{Username: creds.Username, Password: creds.Password, GrantType: "password"}
	var tok tokenResponse
	status, err := c.doJSON(ctx, requestConfig{
		op:      op,
		method:  http.MethodPost,
		path:    "/api/auth/token",
		body:    body,
		noAuth:  true,
		success: []int{http.StatusOK},
	}, &tok)
	if err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return newError(op, KindAuth, status, errors.New("empty access token"))
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.creds = &creds
	c.mu.Unlock()

	logging.Info().Str("username", creds.Username).Msg("FOGIS authentication successful")
	return nil
}

// FetchMatches returns all matches in w, following pages of pageSize until
// a short page.
func (c *HTTPClient) FetchMatches(ctx context.Context, w Window) ([]models.Match, error) {
	const op = "fetch matches"

	matches := make([]models.Match, 0)
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("date_from", w.From.UTC().Format(time.RFC3339))
		query.Set("date_to", w.To.UTC().Format(time.RFC3339))
		query.Set("limit", fmt.Sprint(pageSize))
		query.Set("offset", fmt.Sprint(page*pageSize))

		var resp matchPage
		if _, err := c.doJSON(ctx, requestConfig{
			op:      op,
			method:  http.MethodGet,
			path:    "/api/matches",
			query:   query,
			success: []int{http.StatusOK},
		}, &resp); err != nil {
			return nil, err
		}

		for i := range resp.Matches {
			if resp.Matches[i].MatchID == "" {
				logging.Warn().Str("home", resp.Matches[i].HomeTeam).Str("away", resp.Matches[i].AwayTeam).
					Msg("Skipping FOGIS match without id")
				continue
			}
			matches = append(matches, resp.Matches[i].toModel())
		}
		if len(resp.Matches) < pageSize {
			return matches, nil
		}
	}

	logging.Warn().Int("pages", maxPages).Msg("FOGIS match listing truncated")
	return matches, nil
}

// PushEvent delivers one event. A 409 carrying the existing event id is a
// confirmation of an earlier delivery with the same sync key.
func (c *HTTPClient) PushEvent(ctx context.Context, req PushRequest) (PushResult, error) {
	const op = "push event"

	if req.SyncKey == "" {
		return PushResult{}, newError(op, KindRejected, 0, errors.New("sync key is required"))
	}
	if req.MatchExternalID == "" {
		return PushResult{}, newError(op, KindRejected, 0, errors.New("match has no external id"))
	}

	body := eventBody{
		EventType:   req.EventType,
		Minute:      req.Minute,
		Description: req.Description,
		PlayerName:  req.PlayerName,
		PlayerID:    req.PlayerID,
		Team:        req.Team,
		TeamID:      req.TeamID,
		Timestamp:   req.OccurredAt.UTC(),
	}

	var resp eventResponse
	status, err := c.doJSON(ctx, requestConfig{
		op:     op,
		method: http.MethodPost,
		path:   "/api/matches/" + url.PathEscape(req.MatchExternalID) + "/events",
		body:   body,
		headers: map[string]string{
			"Idempotency-Key": req.SyncKey,
		},
		success: []int{http.StatusOK, http.StatusCreated, http.StatusConflict},
	}, &resp)
	if err != nil {
		return PushResult{}, err
	}

	if resp.EventID == "" {
		if status == http.StatusConflict {
			return PushResult{}, newError(op, KindRejected, status, fmt.Errorf("conflict without event id: %s", resp.Message))
		}
		// Retrying with the same key returns the id through a 409.
		return PushResult{}, newError(op, KindTransient, status, errors.New("response has no event id"))
	}

	return PushResult{
		Delivered:  true,
		ExternalID: string(resp.EventID),
		Duplicate:  status == http.StatusConflict,
	}, nil
}

// Ping checks that the external system is reachable. Health probes do
// not draw from the request rate budget.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.doJSON(ctx, requestConfig{
		op:      "ping",
		method:  http.MethodGet,
		path:    "/api/health",
		noAuth:  true,
		noLimit: true,
		success: []int{http.StatusOK, http.StatusNoContent},
	}, nil)
	return err
}
