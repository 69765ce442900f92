// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
)

// CreateVoiceLog appends a voice processing audit record. There is no
// update or delete path for these rows.
func (db *DB) CreateVoiceLog(ctx context.Context, l *models.VoiceProcessingLog) (err error) {
	defer observe("insert", "voice_processing_logs", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	l.CreatedAt = time.Now().UTC()
	err = db.conn.QueryRowContext(ctx, `INSERT INTO voice_processing_logs (
		operation_type, status, input_data, output_data, error_message,
		processing_time_ms, confidence_score, audio_file_path, output_file_path,
		match_id, event_id, user_id, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		l.OperationType, l.Status, nullable(l.InputData), nullable(l.OutputData), nullable(l.ErrorMessage),
		nullable(l.ProcessingTimeMS), nullable(l.ConfidenceScore), nullable(l.AudioFilePath), nullable(l.OutputFilePath),
		nullable(l.MatchID), nullable(l.EventID), nullable(l.UserID), l.CreatedAt,
	).Scan(&l.ID)
	return classify("create voice log", err)
}

// ListVoiceLogs returns voice logs, newest first.
func (db *DB) ListVoiceLogs(ctx context.Context, filter models.VoiceLogFilter) (logs []models.VoiceProcessingLog, err error) {
	defer observe("select", "voice_processing_logs", time.Now(), &err)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := `SELECT id, operation_type, status, input_data, output_data, error_message,
		processing_time_ms, confidence_score, audio_file_path, output_file_path,
		match_id, event_id, user_id, created_at
	FROM voice_processing_logs WHERE 1=1`
	var args []any
	if filter.MatchID != nil {
		query += " AND match_id = ?"
		args = append(args, *filter.MatchID)
	}
	if filter.EventID != nil {
		query += " AND event_id = ?"
		args = append(args, *filter.EventID)
	}
	if filter.OperationType != "" {
		query += " AND operation_type = ?"
		args = append(args, filter.OperationType)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, clampLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list voice logs: %w", err)
	}
	defer closeWithLog(rows, "rows")

	logs = make([]models.VoiceProcessingLog, 0)
	for rows.Next() {
		var l models.VoiceProcessingLog
		if err = rows.Scan(
			&l.ID, &l.OperationType, &l.Status, &l.InputData, &l.OutputData, &l.ErrorMessage,
			&l.ProcessingTimeMS, &l.ConfidenceScore, &l.AudioFilePath, &l.OutputFilePath,
			&l.MatchID, &l.EventID, &l.UserID, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan voice log: %w", err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voice logs: %w", err)
	}
	return logs, nil
}
