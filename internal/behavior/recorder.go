// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package behavior

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/metrics"
)

// Recorder is the write path used by instrumentation. It never returns an
// error: a broken store degrades recommendation quality but must not break
// the page that reported the event.
type Recorder struct {
	store     Store
	retention Retention
	now       func() time.Time
	logger    zerolog.Logger

	// failures are logged in bursts, not once per event
	logSample *rate.Sometimes
}

// NewRecorder wraps store.
func NewRecorder(store Store, retention Retention) *Recorder {
	if retention == nil {
		retention = DefaultRetention()
	}
	return &Recorder{
		store:     store,
		retention: retention,
		now:       time.Now,
		logger:    logging.WithComponent("behavior"),
		logSample: &rate.Sometimes{First: 5, Interval: 30 * time.Second},
	}
}

// SetClock overrides the time source used to stamp events.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// Record stamps, validates and appends e, then evicts expired events of the
// same kind. It reports whether the event was stored.
func (r *Recorder) Record(ctx context.Context, e Event) bool {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now().UTC()
	}

	if err := e.Validate(); err != nil {
		r.fail(ctx, "validate", e.Kind, err)
		return false
	}
	if err := r.store.Append(ctx, e); err != nil {
		r.fail(ctx, "append", e.Kind, err)
		return false
	}
	metrics.BehaviorEvents.WithLabelValues(string(e.Kind)).Inc()

	r.evict(ctx, e.Kind)
	return true
}

func (r *Recorder) evict(ctx context.Context, kind Kind) {
	n, err := r.store.Evict(ctx, kind, r.retention.For(kind))
	if err != nil {
		r.fail(ctx, "evict", kind, err)
		return
	}
	if n > 0 {
		metrics.BehaviorEvicted.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// EvictAll runs retention for every kind. The background sweeper calls it.
func (r *Recorder) EvictAll(ctx context.Context) {
	for _, k := range Kinds {
		r.evict(ctx, k)
	}
}

func (r *Recorder) fail(ctx context.Context, op string, kind Kind, err error) {
	metrics.RecordBehaviorError(op, string(kind))
	r.logSample.Do(func() {
		l := logging.Ctx(ctx).With().Str("component", "behavior").Logger()
		l.Warn().Err(err).Str("operation", op).Str("kind", string(kind)).Msg("Behavior event dropped")
	})
}
