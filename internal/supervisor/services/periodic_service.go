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

// Task is one run of a periodic job. A returned error is logged; it does
// not stop the loop.
type Task func(ctx context.Context) error

// PeriodicConfig controls a PeriodicService.
type PeriodicConfig struct {
	Name     string
	Interval time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool

	// Timeout bounds a single run. Zero means the interval.
	Timeout time.Duration
}

// PeriodicService runs a Task on a ticker until its context is cancelled.
// Runs never overlap.
type PeriodicService struct {
	cfg    PeriodicConfig
	task   Task
	logger zerolog.Logger
}

// NewPeriodicService panics on a non-positive interval; that is a wiring bug.
//
//nolint:gocritic // hugeParam: zerolog.Logger is passed by value throughout
func NewPeriodicService(cfg PeriodicConfig, task Task, logger zerolog.Logger) *PeriodicService {
	if cfg.Interval <= 0 {
		panic(fmt.Sprintf("services: %s interval must be positive", cfg.Name))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &PeriodicService{
		cfg:    cfg,
		task:   task,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.cfg.Interval).Msg("periodic service starting")

	if s.cfg.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.task(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Msg("periodic task failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("periodic task complete")
}

func (s *PeriodicService) String() string {
	return s.cfg.Name
}
