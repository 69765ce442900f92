// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

// Package models defines the domain types shared by the store, the external
// sync client, the sync coordinator and the HTTP API.
//
// Match and Event mirror the rows of the matches and events tables.
// VoiceProcessingLog is an append-only audit row. The API envelope types
// (APIResponse, APIError, Metadata) live here to avoid import cycles between
// the api and validation packages.
package models
