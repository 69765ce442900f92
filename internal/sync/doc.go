// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package sync runs the background synchronization between the local event
store and FOGIS.

# Cycle

Each cycle is a pull followed by a push:

 1. Authenticate if credentials are configured and no session is held.
 2. Pull: fetch matches in [now-DaysBehind, now+DaysAhead] and upsert them
    by external id. A failure here is recorded in CycleReport.PullError and
    the push still runs.
 3. Push: list up to BatchSize pending events and, for each one, claim it,
    resolve its match and deliver it with exponential backoff (at most
    MaxAttempts calls, each bounded by CallTimeout).

# Per-event outcomes

	delivered            MarkEventSynced, attempts += calls
	transient failure    RecordSyncFailure, stays pending for the next cycle
	rejected by FOGIS    RecordSyncFailure with the permanent flag
	match has no ext id  RecordSyncFailure with the permanent flag, no call made
	claim lost           skipped, another worker owns it
	store error / panic  logged, only this event is affected

Events are never deleted by the coordinator. A permanently failed event is
retried again only after an operator resets it through the API.

# Idempotency

Every event carries a sync key assigned at creation and sent as the
Idempotency-Key of every delivery. If an event is delivered but the local
write fails, the next cycle re-pushes and FOGIS answers with the original
external id, which is recorded instead of a second record being created.

# Lifecycle

Start launches the loop (first cycle immediately, then every Interval, or
ErrorDelay after a failed cycle). Stop cancels the loop and waits for the
in-flight push to finish or time out. RunCycle can be called directly, as
the sync-once command does; cycles never overlap.
*/
package sync
