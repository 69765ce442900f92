// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package models

import "time"

// Voice operation types.
const (
	VoiceOpTranscribe = "transcribe"
	VoiceOpTTS        = "tts"
	VoiceOpHotword    = "hotword"
)

// VoiceProcessingLog is an append-only audit record of one voice operation.
// Rows are never updated after insert.
type VoiceProcessingLog struct {
	ID               int64    `json:"id"`
	OperationType    string   `json:"operation_type"`
	Status           string   `json:"status"`
	InputData        *string  `json:"input_data,omitempty"`
	OutputData       *string  `json:"output_data,omitempty"`
	ErrorMessage     *string  `json:"error_message,omitempty"`
	ProcessingTimeMS *int64   `json:"processing_time_ms,omitempty"`
	ConfidenceScore  *float64 `json:"confidence_score,omitempty"`
	AudioFilePath    *string  `json:"audio_file_path,omitempty"`
	OutputFilePath   *string  `json:"output_file_path,omitempty"`
	MatchID          *int64   `json:"match_id,omitempty"`
	EventID          *int64   `json:"event_id,omitempty"`
	UserID           *int64   `json:"user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// VoiceLogFilter selects voice logs for listing.
type VoiceLogFilter struct {
	MatchID       *int64
	EventID       *int64
	OperationType string
	Limit         int
	Offset        int
}
