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

	"github.com/tomtom215/matchreporter/internal/models"
)

const matchColumns = `id, external_id, home_team, away_team, home_team_id, away_team_id,
	match_date, venue, competition, status, referee_id, referee_name,
	home_score, away_score, is_active, reporting_started_at, reporting_ended_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var status string
	err := row.Scan(
		&m.ID, &m.ExternalID, &m.HomeTeam, &m.AwayTeam, &m.HomeTeamID, &m.AwayTeamID,
		&m.MatchDate, &m.Venue, &m.Competition, &status, &m.RefereeID, &m.RefereeName,
		&m.HomeScore, &m.AwayScore, &m.IsActive, &m.ReportingStartedAt, &m.ReportingEndedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Status = models.MatchStatus(status)
	return &m, nil
}

// UpsertMatches imports matches keyed by external id. A match whose external
// id already has a local row is updated in place, otherwise it is inserted.
// The IDs of the input slice are set to the local row ids. Duplicate
// external ids within one batch collapse to the last occurrence.
//
// A match that is currently being reported keeps its local status.
func (db *DB) UpsertMatches(ctx context.Context, matches []models.Match) (result models.UpsertResult, err error) {
	const op = "upsert matches"
	defer observe("upsert", "matches", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	last := make(map[string]int, len(matches))
	for i := range matches {
		if !matches[i].HasExternalID() {
			return result, newStoreError(op, KindConstraint, fmt.Errorf("match at index %d has no external id", i))
		}
		last[*matches[i].ExternalID] = i
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	ids := make(map[string]int64, len(last))
	for i := range matches {
		m := &matches[i]
		ext := *m.ExternalID
		if last[ext] != i {
			continue
		}
		if !m.Status.Valid() {
			m.Status = models.MatchScheduled
		}

		var id int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM matches WHERE external_id = ?`, ext).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			err = tx.QueryRowContext(ctx, `INSERT INTO matches (
				external_id, home_team, away_team, home_team_id, away_team_id,
				match_date, venue, competition, status, referee_id, referee_name,
				home_score, away_score, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
				ext, m.HomeTeam, m.AwayTeam, nullable(m.HomeTeamID), nullable(m.AwayTeamID),
				m.MatchDate.UTC(), m.Venue, m.Competition, string(m.Status),
				nullable(m.RefereeID), nullable(m.RefereeName),
				nullable(m.HomeScore), nullable(m.AwayScore), now, now,
			).Scan(&id)
			if err != nil {
				return result, classify(op, err)
			}
			result.Created++
		case err != nil:
			return result, classify(op, err)
		default:
			_, err = tx.ExecContext(ctx, `UPDATE matches SET
				home_team = ?, away_team = ?, home_team_id = ?, away_team_id = ?,
				match_date = ?, venue = ?, competition = ?,
				status = CASE WHEN is_active THEN status ELSE ? END,
				referee_id = ?, referee_name = ?, home_score = ?, away_score = ?,
				updated_at = ?
			WHERE id = ?`,
				m.HomeTeam, m.AwayTeam, nullable(m.HomeTeamID), nullable(m.AwayTeamID),
				m.MatchDate.UTC(), m.Venue, m.Competition, string(m.Status),
				nullable(m.RefereeID), nullable(m.RefereeName),
				nullable(m.HomeScore), nullable(m.AwayScore), now, id,
			)
			if err != nil {
				return result, classify(op, err)
			}
			result.Updated++
		}
		ids[ext] = id
	}

	if err = tx.Commit(); err != nil {
		return result, classify(op, err)
	}

	for i := range matches {
		matches[i].ID = ids[*matches[i].ExternalID]
	}
	return result, nil
}

// CreateMatch inserts a manually created match. ExternalID may be nil.
func (db *DB) CreateMatch(ctx context.Context, m *models.Match) (err error) {
	const op = "create match"
	defer observe("insert", "matches", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if m.Status == "" {
		m.Status = models.MatchScheduled
	}
	if m.ExternalID != nil && *m.ExternalID == "" {
		m.ExternalID = nil
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	m.MatchDate = m.MatchDate.UTC()

	err = db.conn.QueryRowContext(ctx, `INSERT INTO matches (
		external_id, home_team, away_team, home_team_id, away_team_id,
		match_date, venue, competition, status, referee_id, referee_name,
		home_score, away_score, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		nullable(m.ExternalID), m.HomeTeam, m.AwayTeam, nullable(m.HomeTeamID), nullable(m.AwayTeamID),
		m.MatchDate, m.Venue, m.Competition, string(m.Status),
		nullable(m.RefereeID), nullable(m.RefereeName),
		nullable(m.HomeScore), nullable(m.AwayScore), now, now,
	).Scan(&m.ID)
	return classify(op, err)
}

// GetMatch retrieves a match by ID.
func (db *DB) GetMatch(ctx context.Context, id int64) (m *models.Match, err error) {
	defer observe("select", "matches", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	m, err = scanMatch(db.conn.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newStoreError("get match", KindNotFound, ErrMatchNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// ListMatches returns a page of matches ordered by match date, newest first,
// and the total number of matches the filter selects.
func (db *DB) ListMatches(ctx context.Context, filter models.MatchFilter) (matches []models.Match, total int, err error) {
	defer observe("select", "matches", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where := ""
	var args []any
	if filter.Status != "" {
		where = " WHERE status = ?"
		args = append(args, string(filter.Status))
	}

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	query := `SELECT ` + matchColumns + ` FROM matches` + where + ` ORDER BY match_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, clampLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list matches: %w", err)
	}
	defer closeWithLog(rows, "rows")

	matches = make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan match: %w", scanErr)
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, total, nil
}

// StartReporting marks a match active and records when reporting began.
func (db *DB) StartReporting(ctx context.Context, id int64) (*models.Match, error) {
	return db.setReporting(ctx, "start reporting", id, `UPDATE matches SET
		status = 'active', is_active = true, reporting_started_at = ?, reporting_ended_at = NULL, updated_at = ?
	WHERE id = ? RETURNING id`)
}

// StopReporting marks a match completed and records when reporting ended.
func (db *DB) StopReporting(ctx context.Context, id int64) (*models.Match, error) {
	return db.setReporting(ctx, "stop reporting", id, `UPDATE matches SET
		status = 'completed', is_active = false, reporting_ended_at = ?, updated_at = ?
	WHERE id = ? RETURNING id`)
}

func (db *DB) setReporting(ctx context.Context, op string, id int64, query string) (m *models.Match, err error) {
	defer observe("update", "matches", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var got int64
	err = db.conn.QueryRowContext(ctx, query, now, now, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newStoreError(op, KindNotFound, ErrMatchNotFound)
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return db.GetMatch(ctx, id)
}
