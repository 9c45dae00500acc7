// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package main

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/reelrank/internal/config"
	"github.com/tomtom215/reelrank/internal/feedback"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/supervisor/services"
)

// FeedbackComponents is the in-process feedback pipeline.
type FeedbackComponents struct {
	PubSub    *gochannel.GoChannel
	Publisher *feedback.Publisher
	Consumer  *services.ConsumerService
}

func initFeedback(cfg *config.FeedbackConfig, store feedback.Store) *FeedbackComponents {
	wmLogger := logging.NewWatermillLogger(logging.WithComponent("watermill"))
	pubsub := feedback.NewPubSub(cfg.BufferSize, wmLogger)

	consumerCfg := feedback.DefaultConsumerConfig()
	consumerCfg.RetryMaxRetries = cfg.RetryMaxRetries
	if cfg.RetryInitialInterval > 0 {
		consumerCfg.RetryInitialInterval = cfg.RetryInitialInterval
	}
	if cfg.CloseTimeout > 0 {
		consumerCfg.CloseTimeout = cfg.CloseTimeout
	}

	consumer := services.NewConsumerService(func() (services.Router, error) {
		return feedback.NewConsumer(pubsub, store, consumerCfg, wmLogger)
	}, logging.WithComponent("supervisor"))

	return &FeedbackComponents{
		PubSub:    pubsub,
		Publisher: feedback.NewPublisher(pubsub),
		Consumer:  consumer,
	}
}

func feedbackThresholds(cfg *config.FeedbackConfig) feedback.Thresholds {
	t := feedback.DefaultThresholds()
	if cfg.MinDiversity > 0 {
		t.MinDiversity = cfg.MinDiversity
	}
	if cfg.MinConversion > 0 {
		t.MinConversion = cfg.MinConversion
	}
	if cfg.MinCTR > 0 {
		t.MinCTR = cfg.MinCTR
	}
	if cfg.MinImpressionsForCTR > 0 {
		t.MinImpressionsForCTR = cfg.MinImpressionsForCTR
	}
	if cfg.MinContentTypeImpressions > 0 {
		t.MinContentTypeImpression = cfg.MinContentTypeImpressions
	}
	return t
}
