// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/matchreporter/internal/models"
)

const eventColumns = `id, match_id, event_type, minute, description,
	player_name, player_id, team, team_id,
	voice_transcription, confidence_score, audio_file_path,
	sync_key, synced, external_event_id, sync_attempts, last_sync_attempt,
	sync_error, sync_permanent_failure, is_deleted, deleted_at,
	created_at, updated_at`

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.MatchID, &e.EventType, &e.Minute, &e.Description,
		&e.PlayerName, &e.PlayerID, &e.Team, &e.TeamID,
		&e.VoiceTranscription, &e.ConfidenceScore, &e.AudioFilePath,
		&e.SyncKey, &e.Synced, &e.ExternalEventID, &e.SyncAttempts, &e.LastSyncAttempt,
		&e.SyncError, &e.SyncPermanentFailure, &e.IsDeleted, &e.DeletedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent inserts an unsynced event and assigns its ID and sync key.
// The owning match must exist; otherwise a foreign_key StoreError wrapping
// ErrMatchNotFound is returned and nothing is written.
func (db *DB) CreateEvent(ctx context.Context, e *models.Event) (err error) {
	const op = "create event"
	defer observe("insert", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	syncKey := uuid.NewString()

	// Selecting from matches makes the existence check and the insert one statement.
	var id int64
	err = db.conn.QueryRowContext(ctx, `INSERT INTO events (
		match_id, event_type, minute, description,
		player_name, player_id, team, team_id,
		voice_transcription, confidence_score, audio_file_path,
		sync_key, created_at, updated_at
	)
	SELECT m.id, ?::VARCHAR, ?::INTEGER, ?::VARCHAR,
		?::VARCHAR, ?::BIGINT, ?::VARCHAR, ?::BIGINT,
		?::VARCHAR, ?::DOUBLE, ?::VARCHAR,
		?::VARCHAR, ?::TIMESTAMP, ?::TIMESTAMP
	FROM matches m WHERE m.id = ?
	RETURNING id`,
		e.EventType, e.Minute, e.Description,
		nullable(e.PlayerName), nullable(e.PlayerID), nullable(e.Team), nullable(e.TeamID),
		nullable(e.VoiceTranscription), nullable(e.ConfidenceScore), nullable(e.AudioFilePath),
		syncKey, now, now,
		e.MatchID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return newStoreError(op, KindForeignKey, fmt.Errorf("match %d: %w", e.MatchID, ErrMatchNotFound))
	}
	if err != nil {
		return classify(op, err)
	}

	e.ID = id
	e.SyncKey = syncKey
	e.Synced = false
	e.ExternalEventID = nil
	e.SyncAttempts = 0
	e.LastSyncAttempt = nil
	e.SyncError = nil
	e.SyncPermanentFailure = false
	e.IsDeleted = false
	e.DeletedAt = nil
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

// GetEvent retrieves an event by ID, including soft-deleted events.
func (db *DB) GetEvent(ctx context.Context, id int64) (e *models.Event, err error) {
	defer observe("select", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	e, err = scanEvent(db.conn.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newStoreError("get event", KindNotFound, fmt.Errorf("event %d: %w", id, ErrNotFound))
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListEvents returns a page of events, newest first, and the total number
// of events the filter selects.
func (db *DB) ListEvents(ctx context.Context, filter models.EventFilter) (events []models.Event, total int, err error) {
	defer observe("select", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where := " WHERE 1=1"
	var args []any
	if filter.MatchID != nil {
		where += " AND match_id = ?"
		args = append(args, *filter.MatchID)
	}
	if !filter.IncludeDeleted {
		where += " AND is_deleted = false"
	}

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, clampLimit(filter.Limit), max(filter.Offset, 0))

	events, err = db.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	events := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// SoftDeleteEvent hides an event from listings and from the sync queue.
// Deleting an already deleted event is a no-op.
func (db *DB) SoftDeleteEvent(ctx context.Context, id int64) (err error) {
	const op = "delete event"
	defer observe("update", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var got int64
	err = db.conn.QueryRowContext(ctx, `UPDATE events SET is_deleted = true, deleted_at = ?, updated_at = ?
		WHERE id = ? AND is_deleted = false RETURNING id`, now, now, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		exists, existsErr := db.eventExists(ctx, id)
		if existsErr != nil {
			return fmt.Errorf("%s: %w", op, existsErr)
		}
		if !exists {
			return newStoreError(op, KindNotFound, fmt.Errorf("event %d: %w", id, ErrNotFound))
		}
		return nil
	}
	return classify(op, err)
}

func (db *DB) eventExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPendingEvents returns up to limit events awaiting delivery, ordered by
// id: not synced, not deleted, not permanently failed and not claimed by a
// push that is still within its lease.
func (db *DB) ListPendingEvents(ctx context.Context, limit int) (events []models.Event, err error) {
	defer observe("select", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	events, err = db.queryEvents(ctx, `SELECT `+eventColumns+` FROM events
		WHERE synced = false AND is_deleted = false AND sync_permanent_failure = false
		  AND (sync_claimed_until IS NULL OR sync_claimed_until < ?)
		ORDER BY id LIMIT ?`, time.Now().UTC(), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	return events, nil
}

// ClaimEvent leases a pending event for ttl so that no other push is issued
// for it concurrently. It reports false when the event is no longer pending
// or another worker holds an unexpired claim.
func (db *DB) ClaimEvent(ctx context.Context, id int64, ttl time.Duration) (claimed bool, err error) {
	defer observe("update", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var got int64
	err = db.conn.QueryRowContext(ctx, `UPDATE events SET sync_claimed_until = ?
		WHERE id = ? AND synced = false AND is_deleted = false AND sync_permanent_failure = false
		  AND (sync_claimed_until IS NULL OR sync_claimed_until < ?)
		RETURNING id`, now.Add(ttl), id, now).Scan(&got)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case isTransactionConflict(err):
		// A concurrent claimer won the row.
		return false, nil
	case err != nil:
		return false, classify("claim event", err)
	}
	return true, nil
}

// MarkEventSynced records a successful delivery. attempts is the number of
// push calls made in this cycle and is added to the stored counter. The
// update only applies to an unsynced event; ErrAlreadySynced is returned
// otherwise so a concurrent second confirmation is visible to the caller.
func (db *DB) MarkEventSynced(ctx context.Context, id int64, externalID string, attempts int) (err error) {
	const op = "mark event synced"
	defer observe("update", "events", time.Now(), &err)

	if externalID == "" {
		return newStoreError(op, KindConstraint, errors.New("external event id is required"))
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var got int64
	err = db.conn.QueryRowContext(ctx, `UPDATE events SET
		synced = true, external_event_id = ?, sync_attempts = sync_attempts + ?,
		last_sync_attempt = ?, sync_error = NULL, sync_claimed_until = NULL, updated_at = ?
	WHERE id = ? AND synced = false RETURNING id`,
		externalID, attempts, now, now, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return db.unsyncedMiss(ctx, op, id)
	}
	return classify(op, err)
}

// RecordSyncFailure records a failed delivery: attempts is added to the
// counter, the error text replaces the previous one and the claim is
// released. permanent excludes the event from further automatic retries.
func (db *DB) RecordSyncFailure(ctx context.Context, id int64, attempts int, errText string, permanent bool) (err error) {
	const op = "record sync failure"
	defer observe("update", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if errText == "" {
		errText = "unknown error"
	}

	now := time.Now().UTC()
	var got int64
	err = db.conn.QueryRowContext(ctx, `UPDATE events SET
		sync_attempts = sync_attempts + ?, last_sync_attempt = ?, sync_error = ?,
		sync_permanent_failure = ?, sync_claimed_until = NULL, updated_at = ?
	WHERE id = ? AND synced = false RETURNING id`,
		attempts, now, errText, permanent, now, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return db.unsyncedMiss(ctx, op, id)
	}
	return classify(op, err)
}

// ResetSyncFailure clears the permanent failure flag so the event is
// retried by the next cycle. The last error text is kept.
func (db *DB) ResetSyncFailure(ctx context.Context, id int64) (err error) {
	const op = "reset sync failure"
	defer observe("update", "events", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var got int64
	err = db.conn.QueryRowContext(ctx, `UPDATE events SET sync_permanent_failure = false, updated_at = ?
		WHERE id = ? AND synced = false RETURNING id`, time.Now().UTC(), id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return db.unsyncedMiss(ctx, op, id)
	}
	return classify(op, err)
}

// unsyncedMiss explains why a conditional update on an unsynced event
// matched no row.
func (db *DB) unsyncedMiss(ctx context.Context, op string, id int64) error {
	exists, err := db.eventExists(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return newStoreError(op, KindNotFound, fmt.Errorf("event %d: %w", id, ErrNotFound))
	}
	return newStoreError(op, KindConflict, fmt.Errorf("event %d: %w", id, ErrAlreadySynced))
}
