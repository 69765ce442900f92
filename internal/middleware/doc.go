// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package middleware provides HTTP middleware shared by the API router.

  - PrometheusMetrics: request count, latency and in-flight gauge
  - RequestID: X-Request-ID propagation with logging context

Metrics are labelled with the chi route pattern (for example
/api/v1/events/{id}) rather than the raw path, so ids do not create new
label values. Requests that match no route are labelled "unmatched".
*/
package middleware
