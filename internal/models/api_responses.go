// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package models

import (
	"time"
)

// APIResponse is the envelope for every HTTP response.
//
// Successful response:
//
//	{
//	  "status": "success",
//	  "data": {"id": 12, "event_type": "goal", "minute": 15},
//	  "metadata": {"timestamp": "2026-05-02T15:04:05Z", "query_time_ms": 3}
//	}
//
// Error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "Minute must be at most 130"},
//	  "metadata": {"timestamp": "2026-05-02T15:04:05Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes: VALIDATION_ERROR, NOT_FOUND, MATCH_NOT_FOUND, CONFLICT,
// DATABASE_ERROR, INTEGRATION_ERROR, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ListPage wraps a page of results with its paging parameters.
type ListPage struct {
	Items  interface{} `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
