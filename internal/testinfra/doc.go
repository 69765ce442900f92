// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

// Package testinfra provides in-process test doubles for external services.
//
// # FOGIS Server
//
// FOGISServer is an httptest.Server speaking the FOGIS REST API the client
// expects. It authenticates with a password grant, serves a configurable
// match list with paging, and deduplicates event deliveries by their
// Idempotency-Key: a repeated key returns 409 with the original event id.
// That makes it suitable for proving delivery is idempotent.
//
//	srv := testinfra.NewFOGISServer(t)
//	srv.AddMatch(testinfra.FOGISMatch{MatchID: "1001", HomeTeam: "AIK", AwayTeam: "Hammarby"})
//
//	client := fogis.NewClient(&config.FOGISConfig{BaseURL: srv.URL()})
//	_ = client.Authenticate(ctx, fogis.Credentials{Username: srv.Username, Password: srv.Password})
//
// Failures are scripted with FailNextPushes, ExpireToken and OnPush.
package testinfra
