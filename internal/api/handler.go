// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/feedback"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

// SessionHeader carries the session id on requests and responses.
const SessionHeader = "X-Session-ID"

// Recommender ranks candidates. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// EventRecorder stores behavior events best-effort. *behavior.Recorder
// implements it.
type EventRecorder interface {
	Record(ctx context.Context, e behavior.Event) bool
}

// FeedbackPublisher hands feedback and served lists to the pipeline.
// *feedback.Publisher implements it.
type FeedbackPublisher interface {
	PublishFeedback(ctx context.Context, f feedback.Feedback) bool
	PublishServed(ctx context.Context, s feedback.Served) bool
}

// FeedbackReader is the read side the analytics endpoint needs.
type FeedbackReader interface {
	ListFeedback(ctx context.Context, since time.Time) ([]feedback.Feedback, error)
	ListServed(ctx context.Context, since time.Time) ([]feedback.Served, error)
}

// WeightSource turns a profile into blending weights.
type WeightSource interface {
	Adapt(p *preference.Profile) recommend.WeightVector
}

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Dependencies lists everything the handlers call. Recommender, Sessions,
// Recorder and Publisher are required.
type Dependencies struct {
	Recommender Recommender
	Profiles    recommend.ProfileSource
	Weights     WeightSource
	Sessions    *behavior.SessionTracker
	Recorder    EventRecorder
	Publisher   FeedbackPublisher
	Feedback    FeedbackReader

	Thresholds      feedback.Thresholds
	AnalyticsWindow time.Duration
	RequestTimeout  time.Duration
	MaxBodyBytes    int64

	// ReadinessChecks are run by /health/ready, keyed by component name.
	ReadinessChecks map[string]ReadinessCheck
}

// Handler serves the HTTP API.
type Handler struct {
	deps      Dependencies
	startTime time.Time
	now       func() time.Time
}

// NewHandler validates deps and creates a handler.
//
//nolint:gocritic // hugeParam: called once at startup
func NewHandler(deps Dependencies) (*Handler, error) {
	switch {
	case deps.Recommender == nil:
		return nil, errors.New("api: recommender is required")
	case deps.Sessions == nil:
		return nil, errors.New("api: session tracker is required")
	case deps.Recorder == nil:
		return nil, errors.New("api: event recorder is required")
	case deps.Publisher == nil:
		return nil, errors.New("api: feedback publisher is required")
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 5 * time.Second
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 64 << 10
	}
	if deps.AnalyticsWindow <= 0 {
		deps.AnalyticsWindow = 7 * 24 * time.Hour
	}
	if deps.Thresholds == (feedback.Thresholds{}) {
		deps.Thresholds = feedback.DefaultThresholds()
	}
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
		now:       time.Now,
	}, nil
}

// SetClock overrides the time source used for served lists and analytics.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}
