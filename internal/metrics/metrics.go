// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Sync Coordinator Metrics
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_cycles_total",
			Help: "Total number of sync coordinator cycles",
		},
		[]string{"result"}, // ok, partial, error
	)

	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_cycle_duration_seconds",
			Help:    "Duration of sync coordinator cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_events_total",
			Help: "Events processed by the sync coordinator by outcome",
		},
		[]string{"result"}, // synced, failed, permanent, skipped
	)

	SyncPushAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_push_attempts_total",
			Help: "Individual event push calls made to the external system",
		},
	)

	SyncMatchesUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_matches_upserted_total",
			Help: "Matches imported from the external system",
		},
		[]string{"op"}, // created, updated
	)

	SyncPendingEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_pending_events",
			Help: "Pending events seen at the start of the last push phase",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last cycle that completed without error",
		},
	)

	// External System (FOGIS) Metrics
	FOGISRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fogis_requests_total",
			Help: "Requests made to the external match system",
		},
		[]string{"operation", "status"},
	)

	FOGISRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fogis_request_duration_seconds",
			Help:    "Duration of requests to the external match system",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Bus Metrics
	EventBusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_published_total",
			Help: "Sync outcome messages published",
		},
		[]string{"topic", "result"}, // ok, error
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, path, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFOGISRequest records one request to the external system.
func RecordFOGISRequest(operation, status string, duration time.Duration) {
	FOGISRequestsTotal.WithLabelValues(operation, status).Inc()
	FOGISRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSyncCycle records the outcome of one coordinator cycle.
func RecordSyncCycle(result string, duration time.Duration) {
	SyncCyclesTotal.WithLabelValues(result).Inc()
	SyncCycleDuration.Observe(duration.Seconds())
	if result == "ok" {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordSyncEvent records the outcome for a single event in a cycle.
func RecordSyncEvent(result string, pushAttempts int) {
	SyncEventsTotal.WithLabelValues(result).Inc()
	if pushAttempts > 0 {
		SyncPushAttempts.Add(float64(pushAttempts))
	}
}

// RecordMatchUpsert records imported matches.
func RecordMatchUpsert(created, updated int) {
	if created > 0 {
		SyncMatchesUpserted.WithLabelValues("created").Add(float64(created))
	}
	if updated > 0 {
		SyncMatchesUpserted.WithLabelValues("updated").Add(float64(updated))
	}
}

// RecordPublish records a single event bus publish.
func RecordPublish(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventBusPublished.WithLabelValues(topic, result).Inc()
}
