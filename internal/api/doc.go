// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package api serves the Match Reporter HTTP API using the chi router.

All endpoints live under /api/v1 and answer with models.APIResponse:

	{"status":"success","data":...,"metadata":{"timestamp":...}}
	{"status":"error","data":null,"error":{"code":"NOT_FOUND","message":...}}

Routes:

	GET    /api/v1/events                 list events (match_id, limit 1..200, offset)
	POST   /api/v1/events                 record an event
	GET    /api/v1/events/{id}            event details
	DELETE /api/v1/events/{id}            soft delete
	GET    /api/v1/events/{id}/sync       sync status
	POST   /api/v1/events/{id}/sync/reset clear a permanent sync failure
	GET    /api/v1/matches                list matches (status, limit 1..100, offset)
	POST   /api/v1/matches                create a match
	GET    /api/v1/matches/{id}           match details
	POST   /api/v1/matches/{id}/start     start reporting
	POST   /api/v1/matches/{id}/stop      stop reporting
	POST   /api/v1/voice/logs             append a voice processing record
	GET    /api/v1/voice/logs             list voice processing records
	GET    /api/v1/health                 detailed health
	GET    /api/v1/health/live            liveness
	GET    /api/v1/health/ready           readiness (database ping)
	GET    /metrics                       Prometheus exposition

Nothing here pushes events to FOGIS. Delivery is owned by the sync
coordinator; the reset endpoint only makes an event eligible again.
*/
package api
