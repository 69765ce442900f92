// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/matchreporter/internal/config"
	"github.com/tomtom215/matchreporter/internal/eventbus"
	"github.com/tomtom215/matchreporter/internal/models"
)

// chanSubscriber hands out one test-owned channel per kind.
type chanSubscriber struct {
	mu       sync.Mutex
	channels map[models.OutcomeKind]chan *message.Message
	failKind models.OutcomeKind
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{channels: make(map[models.OutcomeKind]chan *message.Message)}
}

func (s *chanSubscriber) Subscribe(ctx context.Context, kind models.OutcomeKind) (<-chan *message.Message, error) {
	if kind == s.failKind {
		return nil, errors.New("subscribe refused")
	}
	ch := make(chan *message.Message, 4)
	s.mu.Lock()
	s.channels[kind] = ch
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (s *chanSubscriber) channel(t *testing.T, kind models.OutcomeKind) chan *message.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		ch, ok := s.channels[kind]
		s.mu.Unlock()
		if ok {
			return ch
		}
		if time.Now().After(deadline) {
			t.Fatalf("no subscription for %s", kind)
		}
		time.Sleep(time.Millisecond)
	}
}

func outcomeMessage(t *testing.T, o models.SyncOutcome) *message.Message {
	t.Helper()
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return message.NewMessage("msg-"+string(o.Kind), data)
}

func waitAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatalf("message %s was nacked", msg.UUID)
	case <-time.After(2 * time.Second):
		t.Fatalf("message %s was not acked", msg.UUID)
	}
}

func TestOutcomeLoggerService_AcksEveryKind(t *testing.T) {
	sub := newChanSubscriber()
	svc := NewOutcomeLoggerService(sub)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	msgs := []*message.Message{
		outcomeMessage(t, models.SyncOutcome{Kind: models.OutcomeEventSynced, EventID: 1, ExternalID: "EV-1", Attempts: 1}),
		outcomeMessage(t, models.SyncOutcome{Kind: models.OutcomeEventSyncFailed, EventID: 2, Error: "rejected", Permanent: true}),
		outcomeMessage(t, models.SyncOutcome{Kind: models.OutcomeMatchImported, MatchesCreated: 2}),
	}
	for _, msg := range msgs {
		var o models.SyncOutcome
		_ = json.Unmarshal(msg.Payload, &o)
		sub.channel(t, o.Kind) <- msg
	}

	// Undecodable payloads are dropped but still acked.
	garbage := message.NewMessage("garbage", []byte("{not json"))
	sub.channel(t, models.OutcomeEventSynced) <- garbage

	for _, msg := range append(msgs, garbage) {
		waitAcked(t, msg)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestOutcomeLoggerService_SubscribeFailure(t *testing.T) {
	sub := newChanSubscriber()
	sub.failKind = models.OutcomeMatchImported

	err := NewOutcomeLoggerService(sub).Serve(context.Background())
	if err == nil {
		t.Fatal("Serve() should fail when a subscription is refused")
	}
}

// signallingBus reports when all subscriptions on a real bus are in place.
type signallingBus struct {
	*eventbus.Bus
	wg sync.WaitGroup
}

func (b *signallingBus) Subscribe(ctx context.Context, kind models.OutcomeKind) (<-chan *message.Message, error) {
	defer b.wg.Done()
	return b.Bus.Subscribe(ctx, kind)
}

func TestOutcomeLoggerService_RealBus(t *testing.T) {
	bus, err := eventbus.New(config.EventBusConfig{Enabled: true})
	if err != nil {
		t.Fatalf("eventbus.New() error = %v", err)
	}
	defer bus.Close()

	sb := &signallingBus{Bus: bus}
	sb.wg.Add(3)
	svc := NewOutcomeLoggerService(sb)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	sb.wg.Wait()

	err = bus.Publish(ctx, []models.SyncOutcome{
		{Kind: models.OutcomeEventSynced, EventID: 9, ExternalID: "EV-9", Attempts: 1},
		{Kind: models.OutcomeMatchImported, MatchesUpdated: 4},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
