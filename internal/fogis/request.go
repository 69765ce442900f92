// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package fogis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/metrics"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	noAuth  bool  // if true, no bearer token and no re-authentication
	noLimit bool  // if true, the rate limiter is not consulted
	success []int // statuses whose body is decoded into the result
}

// doJSON executes the request and decodes a successful response into
// result. On 401/403 it re-authenticates once with stored credentials and
// retries. It returns the final HTTP status.
func (c *HTTPClient) doJSON(ctx context.Context, cfg requestConfig, result any) (int, error) {
	resp, err := c.send(ctx, cfg)
	if err != nil {
		return 0, err
	}

	if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && !cfg.noAuth {
		drainAndClose(resp)
		if creds := c.storedCredentials(); creds != nil {
			logging.Warn().Str("op", cfg.op).Int("status", resp.StatusCode).Msg("FOGIS session rejected, re-authenticating")
			c.clearSession()
			if authErr := c.Authenticate(ctx, *creds); authErr != nil {
				return resp.StatusCode, newError(cfg.op, KindAuth, resp.StatusCode, authErr)
			}
			resp, err = c.send(ctx, cfg)
			if err != nil {
				return 0, err
			}
		} else {
			return resp.StatusCode, newError(cfg.op, KindAuth, resp.StatusCode, errors.New("not authenticated"))
		}
	}
	defer drainAndClose(resp)

	if !slices.Contains(cfg.success, resp.StatusCode) {
		return resp.StatusCode, newError(cfg.op, kindForStatus(resp.StatusCode), resp.StatusCode, errorFromBody(resp))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, newError(cfg.op, KindTransient, resp.StatusCode, fmt.Errorf("decode response: %w", err))
		}
	}
	return resp.StatusCode, nil
}

// send performs one HTTP round trip after waiting on the rate limiter.
func (c *HTTPClient) send(ctx context.Context, cfg requestConfig) (*http.Response, error) {
	if !cfg.noLimit {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newError(cfg.op, KindUnreachable, 0, fmt.Errorf("rate limiter: %w", err))
		}
	}

	var body io.Reader = http.NoBody
	if cfg.body != nil {
		data, err := json.Marshal(cfg.body)
		if err != nil {
			return nil, newError(cfg.op, KindRejected, 0, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.baseURL + cfg.path
	if len(cfg.query) > 0 {
		reqURL += "?" + cfg.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, body)
	if err != nil {
		return nil, newError(cfg.op, KindRejected, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if cfg.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !cfg.noAuth {
		if token := c.sessionToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range cfg.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFOGISRequest(cfg.op, "error", time.Since(start))
		return nil, newError(cfg.op, KindUnreachable, 0, err)
	}
	metrics.RecordFOGISRequest(cfg.op, strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp, nil
}

func (c *HTTPClient) clearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func errorFromBody(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s", resp.Status)
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return errors.New(payload.Message)
		}
		if payload.Error != "" {
			return errors.New(payload.Error)
		}
	}
	return errors.New(strings.TrimSpace(string(data)))
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
