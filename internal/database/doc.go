// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package database is the event store: matches, events and voice processing
logs in an embedded DuckDB database.

# Ownership

The store owns event rows. HTTP handlers create, read and soft-delete
events. The sync coordinator only reads pending events and updates their
sync status fields through ClaimEvent, MarkEventSynced and
RecordSyncFailure.

# Concurrency

Sync status writes are single conditional UPDATE statements:

  - ClaimEvent leases a pending event (sync_claimed_until) so two pushes of
    the same event cannot run at once, even across processes sharing the
    file.
  - MarkEventSynced and RecordSyncFailure apply only while synced=false.
    A second confirmation returns ErrAlreadySynced instead of overwriting.

# Errors

Failures the caller can act on are returned as *StoreError with a Kind of
not_found, foreign_key, constraint or conflict. Other driver errors are
wrapped with the operation name.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	m := &models.Match{HomeTeam: "IFK", AwayTeam: "AIK", MatchDate: kickoff}
	if err := db.CreateMatch(ctx, m); err != nil {
	    return err
	}
	ev := &models.Event{MatchID: m.ID, EventType: "goal", Minute: 15}
	err = db.CreateEvent(ctx, ev)
*/
package database
