// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package fogis is the client for the external match administration system
(FOGIS) that reported events are synchronized to.

The Client interface is the local contract: Authenticate, FetchMatches,
PushEvent and Ping. HTTPClient implements it over the FOGIS REST API and
CircuitBreakerClient decorates any Client with sony/gobreaker.

# Idempotent delivery

Every event carries a sync key assigned when it was recorded. PushEvent
sends it as the Idempotency-Key header on every attempt. When the external
system already holds an event for that key it answers 409 with the
existing event id, and PushEvent returns that id with Duplicate set. A
retried push after a lost response therefore confirms the earlier
delivery instead of creating a second record.

# Errors

All failures are *IntegrationError with one of four kinds:

	unreachable  network error, timeout or open circuit     retryable
	transient    429 or 5xx                                 retryable
	auth         401/403 after one re-authentication        not retryable
	rejected     400/404/422 and other 4xx                  permanent
*/
package fogis
