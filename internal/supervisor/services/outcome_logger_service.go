// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/matchreporter/internal/eventbus"
	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/models"
)

// OutcomeSubscriber is the subscribe side of *eventbus.Bus.
type OutcomeSubscriber interface {
	Subscribe(ctx context.Context, kind models.OutcomeKind) (<-chan *message.Message, error)
}

// OutcomeLoggerService writes every published sync outcome to the log,
// giving an audit trail of deliveries and failures independent of the
// database.
type OutcomeLoggerService struct {
	bus   OutcomeSubscriber
	kinds []models.OutcomeKind
	name  string
}

// NewOutcomeLoggerService subscribes to all outcome kinds.
func NewOutcomeLoggerService(bus OutcomeSubscriber) *OutcomeLoggerService {
	return &OutcomeLoggerService{
		bus: bus,
		kinds: []models.OutcomeKind{
			models.OutcomeEventSynced,
			models.OutcomeEventSyncFailed,
			models.OutcomeMatchImported,
		},
		name: "outcome-logger",
	}
}

// Serve implements suture.Service.
func (s *OutcomeLoggerService) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, kind := range s.kinds {
		ch, err := s.bus.Subscribe(ctx, kind)
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("subscribe %s: %w", kind, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range ch {
				logOutcome(msg)
				msg.Ack()
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func logOutcome(msg *message.Message) {
	o, err := eventbus.DecodeOutcome(msg)
	if err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable outcome")
		return
	}

	event := logging.Info()
	if o.Kind == models.OutcomeEventSyncFailed {
		event = logging.Warn()
	}
	event = event.
		Str("kind", string(o.Kind)).
		Str("message_uuid", msg.UUID).
		Str("correlation_id", msg.Metadata.Get("correlation_id"))

	switch o.Kind {
	case models.OutcomeMatchImported:
		event.Int("created", o.MatchesCreated).Int("updated", o.MatchesUpdated).Msg("Matches imported")
	case models.OutcomeEventSynced:
		event.Int64("event_id", o.EventID).Str("external_id", o.ExternalID).
			Int("attempts", o.Attempts).Bool("duplicate", o.Duplicate).Msg("Event synced")
	default:
		event.Int64("event_id", o.EventID).Int("attempts", o.Attempts).
			Bool("permanent", o.Permanent).Str("error", o.Error).Msg("Event sync failed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *OutcomeLoggerService) String() string {
	return s.name
}
