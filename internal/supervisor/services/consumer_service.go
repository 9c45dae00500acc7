// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Router is a message router that can be run once.
type Router interface {
	Run(ctx context.Context) error
	Close() error
	IsRunning() bool
}

// RouterFactory builds a fresh router for every start.
type RouterFactory func() (Router, error)

// ConsumerService supervises the feedback consumer. A watermill router
// cannot be restarted after Run returns, so each Serve builds a new one.
type ConsumerService struct {
	factory RouterFactory
	logger  zerolog.Logger

	mu      sync.Mutex
	current Router
}

// NewConsumerService returns a service that runs routers from factory.
//
//nolint:gocritic // hugeParam: zerolog.Logger is passed by value throughout
func NewConsumerService(factory RouterFactory, logger zerolog.Logger) *ConsumerService {
	return &ConsumerService{
		factory: factory,
		logger:  logger.With().Str("service", "feedback-consumer").Logger(),
	}
}

// Serve implements suture.Service.
func (c *ConsumerService) Serve(ctx context.Context) error {
	router, err := c.factory()
	if err != nil {
		return fmt.Errorf("build feedback router: %w", err)
	}
	c.mu.Lock()
	c.current = router
	c.mu.Unlock()

	defer func() {
		// a closed watermill router still reports IsRunning
		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
		if cerr := router.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("feedback router close failed")
		}
	}()

	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("feedback router stopped unexpectedly")
	}
	return err
}

// IsRunning reports whether the current router is processing messages.
// It backs the readiness probe.
func (c *ConsumerService) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.IsRunning()
}

func (c *ConsumerService) String() string {
	return "feedback-consumer"
}
