// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/metrics"
)

// ConsumerConfig holds router settings for the feedback consumer.
type ConsumerConfig struct {
	// CloseTimeout bounds how long Close waits for in-flight messages.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultConsumerConfig returns production defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     time.Second,
	}
}

// Consumer is a watermill router that persists feedback and served lists.
// Delivery is at most once: a record that still fails after the retries is
// counted and dropped, never redelivered.
type Consumer struct {
	router *message.Router
	store  Store
	logger zerolog.Logger
}

// NewConsumer registers the feedback and served handlers on a new router
// reading from sub.
func NewConsumer(sub message.Subscriber, store Store, cfg ConsumerConfig, logger watermill.LoggerAdapter) (*Consumer, error) {
	if logger == nil {
		logger = logging.NewWatermillLogger(logging.WithComponent("feedback-router"))
	}
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create feedback router: %w", err)
	}

	c := &Consumer{
		router: router,
		store:  store,
		logger: logging.WithComponent("feedback"),
	}

	// outer to inner: drop after retries, recover panics, retry
	router.AddMiddleware(c.dropFailed)
	router.AddMiddleware(middleware.Recoverer)
	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2.0,
			Logger:          logger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	shared := sharedSubscriber{sub}
	router.AddConsumerHandler("feedback_persist", TopicFeedback, shared, c.handleFeedback)
	router.AddConsumerHandler("served_persist", TopicServed, shared, c.handleServed)
	return c, nil
}

// sharedSubscriber stops the router from closing the pub/sub on shutdown.
// The pub/sub outlives any one router: the publisher keeps using it and a
// restarted consumer subscribes again. Subscriptions still end with the
// router's context.
type sharedSubscriber struct {
	message.Subscriber
}

func (sharedSubscriber) Close() error { return nil }

// Run blocks until ctx is cancelled or Close is called.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (c *Consumer) IsRunning() bool {
	return c.router.IsRunning()
}

// Close stops the router, waiting up to CloseTimeout for in-flight work.
func (c *Consumer) Close() error {
	return c.router.Close()
}

func (c *Consumer) handleFeedback(msg *message.Message) error {
	var f Feedback
	if err := json.Unmarshal(msg.Payload, &f); err != nil {
		c.decodeFailed(msg, err)
		return nil
	}
	if err := c.store.AppendFeedback(msg.Context(), f); err != nil {
		return fmt.Errorf("persist feedback %s: %w", f.ID, err)
	}
	metrics.FeedbackRecords.WithLabelValues(string(f.Action)).Inc()
	return nil
}

func (c *Consumer) handleServed(msg *message.Message) error {
	var s Served
	if err := json.Unmarshal(msg.Payload, &s); err != nil {
		c.decodeFailed(msg, err)
		return nil
	}
	if err := c.store.AppendServed(msg.Context(), s); err != nil {
		return fmt.Errorf("persist served %s: %w", s.RecommendationID, err)
	}
	metrics.FeedbackRecords.WithLabelValues("served").Inc()
	return nil
}

// decodeFailed acks undecodable messages; retrying cannot fix them.
func (c *Consumer) decodeFailed(msg *message.Message, err error) {
	metrics.FeedbackErrors.WithLabelValues("decode").Inc()
	c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Undecodable feedback message dropped")
}

func (c *Consumer) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			metrics.FeedbackErrors.WithLabelValues("persist").Inc()
			c.logger.Error().Err(err).
				Str("message_uuid", msg.UUID).
				Str(MetadataRecID, msg.Metadata.Get(MetadataRecID)).
				Msg("Feedback message dropped after retries")
			return nil, nil
		}
		return out, nil
	}
}
