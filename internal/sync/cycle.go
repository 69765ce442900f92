// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tomtom215/matchreporter/internal/database"
	"github.com/tomtom215/matchreporter/internal/fogis"
	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/metrics"
	"github.com/tomtom215/matchreporter/internal/models"
)

// RunCycle performs one pull-then-push pass. A pull failure is recorded in
// the report and the push phase still runs. The returned error is set only
// when the cycle could not run at all (authentication, listing pending
// events, or a panic outside per-event processing).
func (c *Coordinator) RunCycle(ctx context.Context) (report CycleReport, err error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	report.StartedAt = time.Now().UTC()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync cycle panic: %v", r)
			logging.Ctx(ctx).Error().Interface("panic", r).Msg("Recovered from panic in sync cycle")
		}
		if err != nil {
			report.Error = err.Error()
		}
		report.Duration = time.Since(report.StartedAt)
		c.finishCycle(ctx, &report)
	}()

	if err := c.ensureSession(ctx); err != nil {
		return report, fmt.Errorf("authenticate: %w", err)
	}

	c.pull(ctx, &report)

	if err := c.push(ctx, &report); err != nil {
		return report, err
	}
	return report, nil
}

func (c *Coordinator) finishCycle(ctx context.Context, report *CycleReport) {
	metrics.RecordSyncCycle(report.result(), report.Duration)

	logging.Ctx(ctx).Info().
		Int("matches_created", report.MatchesCreated).
		Int("matches_updated", report.MatchesUpdated).
		Int("attempted", report.EventsAttempted).
		Int("synced", report.EventsSynced).
		Int("failed", report.EventsFailed).
		Int("permanent", report.EventsPermanent).
		Int("skipped", report.EventsSkipped).
		Dur("duration", report.Duration).
		Msg("Sync cycle completed")

	if c.publisher != nil && len(report.Outcomes) > 0 {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.CallTimeout)
		if err := c.publisher.Publish(pubCtx, report.Outcomes); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("outcomes", len(report.Outcomes)).Msg("Failed to publish sync outcomes")
		}
		cancel()
	}

	c.mu.Lock()
	c.last = *report
	c.lastTime = time.Now().UTC()
	c.mu.Unlock()

	if c.onCycleCompleted != nil {
		c.onCycleCompleted(*report)
	}
}

// ensureSession authenticates when credentials are configured and no
// session is currently believed valid.
func (c *Coordinator) ensureSession(ctx context.Context) error {
	if c.creds == nil || c.authenticated.Load() {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	if err := c.client.Authenticate(callCtx, *c.creds); err != nil {
		return err
	}
	c.authenticated.Store(true)
	return nil
}

// noteClientError drops the session flag after an auth failure so the next
// cycle authenticates again.
func (c *Coordinator) noteClientError(err error) {
	if fogis.KindOf(err) == fogis.KindAuth {
		c.authenticated.Store(false)
	}
}

// pull imports the matches of the configured window.
func (c *Coordinator) pull(ctx context.Context, report *CycleReport) {
	log := logging.Ctx(ctx)
	window := fogis.WindowAround(c.now(), c.cfg.DaysBehind, c.cfg.DaysAhead)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	matches, err := c.client.FetchMatches(callCtx, window)
	cancel()
	if err != nil {
		c.noteClientError(err)
		report.PullError = err.Error()
		log.Warn().Err(err).Time("from", window.From).Time("to", window.To).Msg("Match import failed")
		return
	}

	res, err := c.store.UpsertMatches(ctx, matches)
	if err != nil {
		report.PullError = err.Error()
		log.Error().Err(err).Int("matches", len(matches)).Msg("Failed to store imported matches")
		return
	}

	report.MatchesCreated = res.Created
	report.MatchesUpdated = res.Updated
	metrics.RecordMatchUpsert(res.Created, res.Updated)

	if res.Created+res.Updated > 0 {
		report.addOutcome(models.SyncOutcome{
			Kind:           models.OutcomeMatchImported,
			MatchesCreated: res.Created,
			MatchesUpdated: res.Updated,
			OccurredAt:     time.Now().UTC(),
		})
	}
	log.Debug().Int("fetched", len(matches)).Int("created", res.Created).Int("updated", res.Updated).Msg("Matches imported")
}

// push delivers up to BatchSize pending events. Cancellation stops the batch
// between events; the event being pushed is always finished.
func (c *Coordinator) push(ctx context.Context, report *CycleReport) error {
	events, err := c.store.ListPendingEvents(ctx, c.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("list pending events: %w", err)
	}
	metrics.SyncPendingEvents.Set(float64(len(events)))

	matches := make(map[int64]*models.Match)
	for i := range events {
		if ctx.Err() != nil {
			logging.Ctx(ctx).Info().Int("remaining", len(events)-i).Msg("Sync cycle interrupted, leaving events pending")
			break
		}
		c.processEvent(ctx, &events[i], matches, report)
	}
	return nil
}

// processEvent claims, pushes and records one event. Failures of any kind
// stay local to this event.
func (c *Coordinator) processEvent(ctx context.Context, e *models.Event, matches map[int64]*models.Match, report *CycleReport) {
	log := logging.Ctx(ctx).With().Int64("event_id", e.ID).Int64("match_id", e.MatchID).Logger()
	// Store writes for a claimed event must land even when the cycle is
	// being cancelled.
	storeCtx := context.WithoutCancel(ctx)

	claimed, err := c.store.ClaimEvent(storeCtx, e.ID, c.cfg.ClaimTTL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to claim event")
		c.skip(report)
		return
	}
	if !claimed {
		log.Debug().Msg("Event claimed elsewhere, skipping")
		c.skip(report)
		return
	}
	report.EventsAttempted++

	calls := 0
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int("attempts", calls).Msg("Recovered from panic while syncing event")
			c.recordFailure(storeCtx, e, calls, fmt.Errorf("panic: %v", r), false, report)
		}
	}()

	// No push is made for the failures below, so they record zero attempts.
	match, err := c.lookupMatch(storeCtx, e.MatchID, matches)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.recordFailure(storeCtx, e, 0, fmt.Errorf("match %d not found", e.MatchID), true, report)
			return
		}
		log.Error().Err(err).Msg("Failed to load match for event")
		report.EventsFailed++
		metrics.RecordSyncEvent("failed", 0)
		return
	}
	if !match.HasExternalID() {
		c.recordFailure(storeCtx, e, 0, fmt.Errorf("match %d has no external id", match.ID), true, report)
		return
	}

	res, err := c.deliver(ctx, fogis.NewPushRequest(e, *match.ExternalID), &calls)
	if err != nil {
		c.noteClientError(err)
		c.recordFailure(storeCtx, e, max(calls, 1), err, fogis.IsPermanent(err), report)
		return
	}

	if err := c.store.MarkEventSynced(storeCtx, e.ID, res.ExternalID, calls); err != nil {
		if errors.Is(err, database.ErrAlreadySynced) {
			log.Debug().Msg("Event already marked synced")
			c.skip(report)
			return
		}
		// The next cycle re-pushes and receives a duplicate confirmation.
		log.Error().Err(err).Str("external_id", res.ExternalID).Msg("Delivered event could not be marked synced")
		report.EventsFailed++
		metrics.RecordSyncEvent("failed", calls)
		return
	}

	report.EventsSynced++
	metrics.RecordSyncEvent("synced", calls)
	report.addOutcome(models.SyncOutcome{
		Kind:       models.OutcomeEventSynced,
		EventID:    e.ID,
		MatchID:    e.MatchID,
		ExternalID: res.ExternalID,
		Attempts:   calls,
		Duplicate:  res.Duplicate,
		OccurredAt: time.Now().UTC(),
	})
	log.Info().Str("external_id", res.ExternalID).Int("attempts", calls).Bool("duplicate", res.Duplicate).Msg("Event synced")
}

// deliver pushes with exponential backoff. Each call gets its own timeout
// and is not cancelled by ctx, so Stop waits for it; ctx only interrupts
// the waits between calls. calls receives the number of push calls made.
func (c *Coordinator) deliver(ctx context.Context, req fogis.PushRequest, calls *int) (fogis.PushResult, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	var lastErr error
	res, err := backoff.Retry(ctx, func() (fogis.PushResult, error) {
		*calls++
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.CallTimeout)
		defer cancel()

		res, err := c.client.PushEvent(callCtx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !fogis.IsRetryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Ctx(ctx).Warn().Err(err).Int("attempt", *calls).Int("max_attempts", c.cfg.MaxAttempts).Dur("delay", next).Msg("Push failed, retrying")
		}),
	)
	if err != nil && lastErr != nil && !errors.As(err, new(*fogis.IntegrationError)) {
		// Interrupted while waiting: report the push failure, not the
		// cancellation.
		err = lastErr
	}
	return res, err
}

func (c *Coordinator) lookupMatch(ctx context.Context, id int64, cache map[int64]*models.Match) (*models.Match, error) {
	if m, ok := cache[id]; ok {
		return m, nil
	}
	m, err := c.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = m
	return m, nil
}

func (c *Coordinator) recordFailure(ctx context.Context, e *models.Event, attempts int, cause error, permanent bool, report *CycleReport) {
	log := logging.Ctx(ctx).With().Int64("event_id", e.ID).Int("attempts", attempts).Logger()

	if err := c.store.RecordSyncFailure(ctx, e.ID, attempts, cause.Error(), permanent); err != nil {
		log.Error().Err(err).AnErr("cause", cause).Msg("Failed to record sync failure")
	}

	result := "failed"
	if permanent {
		result = "permanent"
		report.EventsPermanent++
		log.Warn().Err(cause).Msg("Event sync failed permanently, excluded from automatic retries")
	} else {
		report.EventsFailed++
		log.Warn().Err(cause).Msg("Event sync failed, will retry next cycle")
	}
	metrics.RecordSyncEvent(result, attempts)

	report.addOutcome(models.SyncOutcome{
		Kind:       models.OutcomeEventSyncFailed,
		EventID:    e.ID,
		MatchID:    e.MatchID,
		Attempts:   attempts,
		Error:      cause.Error(),
		Permanent:  permanent,
		OccurredAt: time.Now().UTC(),
	})
}

func (c *Coordinator) skip(report *CycleReport) {
	report.EventsSkipped++
	metrics.RecordSyncEvent("skipped", 0)
}
