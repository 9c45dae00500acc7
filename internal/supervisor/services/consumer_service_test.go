// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package services

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/feedback"
	"github.com/tomtom215/reelrank/internal/logging"
)

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConsumerService_RestartsWithFreshRouter(t *testing.T) {
	wmLogger := logging.NewWatermillLogger(logging.NewTestLogger(io.Discard))
	pubsub := feedback.NewPubSub(16, wmLogger)
	t.Cleanup(func() { _ = pubsub.Close() }) //nolint:errcheck // test cleanup

	store := feedback.NewMemoryStore()
	var built atomic.Int32
	svc := NewConsumerService(func() (Router, error) {
		built.Add(1)
		return feedback.NewConsumer(pubsub, store, feedback.DefaultConsumerConfig(), wmLogger)
	}, zerolog.Nop())

	for round := 1; round <= 2; round++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()
		waitUntil(t, "router running", svc.IsRunning)

		ok := feedback.NewPublisher(pubsub).PublishFeedback(context.Background(), feedback.Feedback{
			RecommendationID: "rec-1",
			SessionID:        "s1",
			ContentID:        "movie-1",
			ContentType:      catalog.TypeMovie,
			Action:           feedback.ActionClick,
			Timestamp:        time.Now().UTC(),
		})
		if !ok {
			t.Fatalf("round %d: publish failed", round)
		}
		want := round
		waitUntil(t, "feedback persisted", func() bool {
			recs, err := store.ListFeedback(context.Background(), time.Time{})
			return err == nil && len(recs) == want
		})

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("round %d: Serve() = %v, want context.Canceled", round, err)
		}
	}
	if n := built.Load(); n != 2 {
		t.Errorf("factory called %d times, want 2", n)
	}
}

func TestConsumerService_FactoryError(t *testing.T) {
	svc := NewConsumerService(func() (Router, error) {
		return nil, errors.New("no subscriber")
	}, zerolog.Nop())
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Serve() should fail when the router cannot be built")
	}
	if svc.IsRunning() {
		t.Error("IsRunning() = true without a router")
	}
	if svc.String() != "feedback-consumer" {
		t.Errorf("String() = %q", svc.String())
	}
}
