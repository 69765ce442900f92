// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package eventbus publishes sync coordinator outcomes through Watermill.

Transport is chosen by configuration: an empty eventbus.nats_url selects the
in-process GoChannel, otherwise core NATS (JetStream disabled) through
watermill-nats.

Topics:

	<prefix>.event.synced       an event was delivered or confirmed
	<prefix>.event.sync_failed  a push failed; Permanent marks rejections
	<prefix>.match.imported     matches were created or updated by a pull

Payloads are JSON-encoded models.SyncOutcome. Every message carries a fresh
UUID, also set as the Nats-Msg-Id header.

Publishing goes through a circuit breaker. The coordinator logs publish
errors and never fails a cycle because of them.
*/
package eventbus
