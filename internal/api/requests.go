// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package api

import (
	"time"

	"github.com/tomtom215/matchreporter/internal/models"
)

// ListEventsRequest holds the validated query parameters for GET /events.
type ListEventsRequest struct {
	MatchID *int64
	Limit   int `validate:"min=1,max=200"`
	Offset  int `validate:"min=0"`
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	MatchID     int64   `json:"match_id" validate:"required,min=1"`
	EventType   string  `json:"event_type" validate:"required,event_type"`
	Minute      *int    `json:"minute" validate:"required,min=0,max=130"`
	Description string  `json:"description" validate:"max=500"`
	PlayerName  *string `json:"player_name" validate:"omitempty,max=100"`
	PlayerID    *int64  `json:"player_id" validate:"omitempty,min=1"`
	Team        *string `json:"team" validate:"omitempty,max=100"`
	TeamID      *int64  `json:"team_id" validate:"omitempty,min=1"`

	VoiceTranscription *string  `json:"voice_transcription" validate:"omitempty,max=2000"`
	ConfidenceScore    *float64 `json:"confidence_score" validate:"omitempty,min=0,max=1"`
	AudioFilePath      *string  `json:"audio_file_path" validate:"omitempty,max=500"`
}

func (req *CreateEventRequest) toEvent() *models.Event {
	return &models.Event{
		MatchID:            req.MatchID,
		EventType:          req.EventType,
		Minute:             *req.Minute,
		Description:        req.Description,
		PlayerName:         req.PlayerName,
		PlayerID:           req.PlayerID,
		Team:               req.Team,
		TeamID:             req.TeamID,
		VoiceTranscription: req.VoiceTranscription,
		ConfidenceScore:    req.ConfidenceScore,
		AudioFilePath:      req.AudioFilePath,
	}
}

// ListMatchesRequest holds the validated query parameters for GET /matches.
type ListMatchesRequest struct {
	Status string `validate:"omitempty,match_status"`
	Limit  int    `validate:"min=1,max=100"`
	Offset int    `validate:"min=0"`
}

// CreateMatchRequest is the body of POST /matches. ExternalID links the
// match to FOGIS; without it the match is local only and its events cannot
// be synced.
type CreateMatchRequest struct {
	ExternalID  *string   `json:"external_id" validate:"omitempty,max=64"`
	HomeTeam    string    `json:"home_team" validate:"required,max=100"`
	AwayTeam    string    `json:"away_team" validate:"required,max=100,nefield=HomeTeam"`
	HomeTeamID  *int64    `json:"home_team_id" validate:"omitempty,min=1"`
	AwayTeamID  *int64    `json:"away_team_id" validate:"omitempty,min=1"`
	MatchDate   time.Time `json:"match_date" validate:"required"`
	Venue       string    `json:"venue" validate:"max=200"`
	Competition string    `json:"competition" validate:"max=200"`
	Status      string    `json:"status" validate:"omitempty,match_status"`
	RefereeName *string   `json:"referee_name" validate:"omitempty,max=100"`
}

func (req *CreateMatchRequest) toMatch() *models.Match {
	return &models.Match{
		ExternalID:  req.ExternalID,
		HomeTeam:    req.HomeTeam,
		AwayTeam:    req.AwayTeam,
		HomeTeamID:  req.HomeTeamID,
		AwayTeamID:  req.AwayTeamID,
		MatchDate:   req.MatchDate,
		Venue:       req.Venue,
		Competition: req.Competition,
		Status:      models.MatchStatus(req.Status),
		RefereeName: req.RefereeName,
	}
}

// CreateVoiceLogRequest is the body of POST /voice/logs.
type CreateVoiceLogRequest struct {
	OperationType    string   `json:"operation_type" validate:"required,voice_operation"`
	Status           string   `json:"status" validate:"required,oneof=success error timeout"`
	InputData        *string  `json:"input_data" validate:"omitempty,max=4000"`
	OutputData       *string  `json:"output_data" validate:"omitempty,max=4000"`
	ErrorMessage     *string  `json:"error_message" validate:"omitempty,max=2000"`
	ProcessingTimeMS *int64   `json:"processing_time_ms" validate:"omitempty,min=0"`
	ConfidenceScore  *float64 `json:"confidence_score" validate:"omitempty,min=0,max=1"`
	AudioFilePath    *string  `json:"audio_file_path" validate:"omitempty,max=500"`
	OutputFilePath   *string  `json:"output_file_path" validate:"omitempty,max=500"`
	MatchID          *int64   `json:"match_id" validate:"omitempty,min=1"`
	EventID          *int64   `json:"event_id" validate:"omitempty,min=1"`
	UserID           *int64   `json:"user_id" validate:"omitempty,min=1"`
}

func (req *CreateVoiceLogRequest) toLog() *models.VoiceProcessingLog {
	return &models.VoiceProcessingLog{
		OperationType:    req.OperationType,
		Status:           req.Status,
		InputData:        req.InputData,
		OutputData:       req.OutputData,
		ErrorMessage:     req.ErrorMessage,
		ProcessingTimeMS: req.ProcessingTimeMS,
		ConfidenceScore:  req.ConfidenceScore,
		AudioFilePath:    req.AudioFilePath,
		OutputFilePath:   req.OutputFilePath,
		MatchID:          req.MatchID,
		EventID:          req.EventID,
		UserID:           req.UserID,
	}
}

// ListVoiceLogsRequest holds the validated query parameters for GET /voice/logs.
type ListVoiceLogsRequest struct {
	MatchID       *int64
	EventID       *int64
	OperationType string `validate:"omitempty,voice_operation"`
	Limit         int    `validate:"min=1,max=200"`
	Offset        int    `validate:"min=0"`
}
