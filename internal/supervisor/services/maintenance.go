// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// EventEvicter applies behavior retention to every event kind.
type EventEvicter interface {
	EvictAll(ctx context.Context)
}

// SessionSweeper drops idle sessions.
type SessionSweeper interface {
	Sweep() int
}

// IndexRebuilder rebuilds the session similarity index.
type IndexRebuilder interface {
	Rebuild(ctx context.Context) (int, error)
}

// FeedbackEvicter deletes feedback and served lists older than a cutoff.
type FeedbackEvicter interface {
	Evict(ctx context.Context, before time.Time) (int, error)
}

// NewBehaviorRetentionService evicts expired behavior events and idle
// sessions every interval. Either dependency may be nil.
//
//nolint:gocritic // hugeParam: zerolog.Logger is passed by value throughout
func NewBehaviorRetentionService(events EventEvicter, sessions SessionSweeper, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService(PeriodicConfig{Name: "behavior-retention", Interval: interval}, func(ctx context.Context) error {
		if events != nil {
			events.EvictAll(ctx)
		}
		if sessions != nil {
			if n := sessions.Sweep(); n > 0 {
				logger.Debug().Int("sessions", n).Msg("idle sessions expired")
			}
		}
		return nil
	}, logger)
}

// NewIndexRebuildService rebuilds the similarity index on start and then
// every interval.
//
//nolint:gocritic // hugeParam: zerolog.Logger is passed by value throughout
func NewIndexRebuildService(index IndexRebuilder, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService(PeriodicConfig{Name: "similarity-index", Interval: interval, RunOnStart: true}, func(ctx context.Context) error {
		n, err := index.Rebuild(ctx)
		if err != nil {
			return fmt.Errorf("rebuild similarity index: %w", err)
		}
		logger.Debug().Int("sessions", n).Msg("similarity index rebuilt")
		return nil
	}, logger)
}

// NewFeedbackRetentionService deletes feedback older than retention.
//
//nolint:gocritic // hugeParam: zerolog.Logger is passed by value throughout
func NewFeedbackRetentionService(store FeedbackEvicter, retention, interval time.Duration, now func() time.Time, logger zerolog.Logger) *PeriodicService {
	if now == nil {
		now = time.Now
	}
	return NewPeriodicService(PeriodicConfig{Name: "feedback-retention", Interval: interval}, func(ctx context.Context) error {
		n, err := store.Evict(ctx, now().Add(-retention))
		if err != nil {
			return fmt.Errorf("evict feedback: %w", err)
		}
		if n > 0 {
			logger.Info().Int("records", n).Msg("expired feedback removed")
		}
		return nil
	}, logger)
}
