// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package metrics defines the Prometheus collectors for Match Reporter.

Collectors are registered with the default registry through promauto and are
exposed at /metrics:

	curl http://localhost:8000/metrics

Families:
  - sync_*: coordinator cycles, per-event outcomes, push attempts, imports
  - fogis_*: requests to the external match system
  - circuit_breaker_*: breaker state around the external client and the event bus
  - duckdb_*: store query latency and errors
  - api_*: HTTP request counts and latency
  - eventbus_*: published sync outcome messages
*/
package metrics
