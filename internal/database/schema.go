// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
schema.go - Database Schema

Tables:
  - matches: fixtures imported from the external system or created manually
  - events: reported match events plus their sync status
  - voice_processing_logs: append-only audit of voice operations

Identifiers come from sequences. Timestamps are stored as UTC TIMESTAMP.

There is no FOREIGN KEY from events to matches. Matches are updated in
place on every import and DuckDB's over-eager constraint checking rejects
some updates of referenced rows, so match existence is enforced by the
INSERT statement in CreateEvent instead. Matches have no delete path, so
the check cannot be invalidated later.

Indexes are limited to columns that are never updated. DuckDB rewrites
updated rows as delete+insert when an indexed column changes.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func schemaQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS matches_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS events_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS voice_logs_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS matches (
			id BIGINT PRIMARY KEY DEFAULT nextval('matches_id_seq'),
			external_id VARCHAR UNIQUE,
			home_team VARCHAR NOT NULL,
			away_team VARCHAR NOT NULL,
			home_team_id BIGINT,
			away_team_id BIGINT,
			match_date TIMESTAMP NOT NULL,
			venue VARCHAR NOT NULL DEFAULT '',
			competition VARCHAR NOT NULL DEFAULT '',
			status VARCHAR NOT NULL DEFAULT 'scheduled',
			referee_id BIGINT,
			referee_name VARCHAR,
			home_score INTEGER,
			away_score INTEGER,
			is_active BOOLEAN NOT NULL DEFAULT false,
			reporting_started_at TIMESTAMP,
			reporting_ended_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY DEFAULT nextval('events_id_seq'),
			match_id BIGINT NOT NULL,
			event_type VARCHAR NOT NULL,
			minute INTEGER NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			player_name VARCHAR,
			player_id BIGINT,
			team VARCHAR,
			team_id BIGINT,
			voice_transcription VARCHAR,
			confidence_score DOUBLE,
			audio_file_path VARCHAR,
			sync_key VARCHAR NOT NULL UNIQUE,
			synced BOOLEAN NOT NULL DEFAULT false,
			external_event_id VARCHAR,
			sync_attempts INTEGER NOT NULL DEFAULT 0,
			last_sync_attempt TIMESTAMP,
			sync_error VARCHAR,
			sync_permanent_failure BOOLEAN NOT NULL DEFAULT false,
			sync_claimed_until TIMESTAMP,
			is_deleted BOOLEAN NOT NULL DEFAULT false,
			deleted_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			CHECK (NOT synced OR external_event_id IS NOT NULL)
		)`,

		`CREATE TABLE IF NOT EXISTS voice_processing_logs (
			id BIGINT PRIMARY KEY DEFAULT nextval('voice_logs_id_seq'),
			operation_type VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			input_data VARCHAR,
			output_data VARCHAR,
			error_message VARCHAR,
			processing_time_ms BIGINT,
			confidence_score DOUBLE,
			audio_file_path VARCHAR,
			output_file_path VARCHAR,
			match_id BIGINT,
			event_id BIGINT,
			user_id BIGINT,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_match_id ON events(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_voice_logs_match_id ON voice_processing_logs(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_voice_logs_event_id ON voice_processing_logs(event_id)`,
	}
}
