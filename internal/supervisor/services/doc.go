// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

// Package services adapts Match Reporter components to suture.Service.
//
// Each wrapper turns a component's own lifecycle (Start/Stop, ListenAndServe,
// a periodic task, a subscription) into a Serve(ctx) method that blocks
// until ctx is cancelled and then shuts the component down.
package services
