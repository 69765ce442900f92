// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

// Package logging provides the process-wide zerolog logger for Match Reporter.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Int64("event_id", id).Int("attempts", n).Msg("Event sync failed")
//
//	// With request context (request_id, correlation_id)
//	logging.Ctx(ctx).Info().Msg("Event created")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain is
// never emitted.
//
// # slog bridge
//
// NewSlogLogger returns an *slog.Logger that writes through zerolog. It is
// handed to sutureslog for supervisor events and to watermill for the event bus.
package logging
