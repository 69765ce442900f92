// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

// Package validation validates API request bodies with go-playground/validator v10.
//
// A single validator instance is shared (it caches struct metadata). Custom
// tags:
//   - event_type: one of models.EventTypes
//   - match_status: a models.MatchStatus value
//   - voice_operation: transcribe, tts or hotword
//
// Failures are returned as *RequestValidationError and converted to the
// VALIDATION_ERROR API error with ToAPIError. Malformed events are rejected
// here and never reach the store or the sync queue.
package validation
