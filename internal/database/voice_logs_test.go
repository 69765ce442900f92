// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/matchreporter/internal/models"
)

func TestVoiceLogs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := insertTestMatch(t, db, nil)
	e := insertTestEvent(t, db, m.ID)

	ms := int64(420)
	logs := []*models.VoiceProcessingLog{
		{OperationType: models.VoiceOpTranscribe, Status: "success", MatchID: &m.ID, EventID: &e.ID, ProcessingTimeMS: &ms, OutputData: strPtr("goal by number nine")},
		{OperationType: models.VoiceOpTTS, Status: "success", MatchID: &m.ID},
		{OperationType: models.VoiceOpHotword, Status: "timeout", ErrorMessage: strPtr("no hotword")},
	}
	for _, l := range logs {
		if err := db.CreateVoiceLog(ctx, l); err != nil {
			t.Fatalf("CreateVoiceLog() error = %v", err)
		}
		if l.ID == 0 || l.CreatedAt.IsZero() {
			t.Fatalf("CreateVoiceLog() should set id and created_at, got %+v", l)
		}
	}

	tests := []struct {
		name   string
		filter models.VoiceLogFilter
		want   int
	}{
		{"all", models.VoiceLogFilter{}, 3},
		{"by match", models.VoiceLogFilter{MatchID: &m.ID}, 2},
		{"by event", models.VoiceLogFilter{EventID: &e.ID}, 1},
		{"by operation", models.VoiceLogFilter{OperationType: models.VoiceOpHotword}, 1},
		{"limit", models.VoiceLogFilter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListVoiceLogs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListVoiceLogs() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	got, err := db.ListVoiceLogs(ctx, models.VoiceLogFilter{EventID: &e.ID})
	if err != nil {
		t.Fatalf("ListVoiceLogs() error = %v", err)
	}
	if got[0].ProcessingTimeMS == nil || *got[0].ProcessingTimeMS != 420 {
		t.Errorf("ProcessingTimeMS = %v", got[0].ProcessingTimeMS)
	}
	if got[0].OutputData == nil || *got[0].OutputData != "goal by number nine" {
		t.Errorf("OutputData = %v", got[0].OutputData)
	}
}
