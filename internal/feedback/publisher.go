// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/metrics"
)

// Topics carrying feedback records and served lists.
const (
	TopicFeedback = "recommend.feedback"
	TopicServed   = "recommend.served"
)

// Metadata keys set on every published message.
const (
	MetadataSessionID = "session_id"
	MetadataRecID     = "recommendation_id"
	MetadataRequestID = "request_id"
)

// NewPubSub creates the in-process channel both the Publisher and the
// Consumer attach to. buffer is the per-subscriber output buffer.
func NewPubSub(buffer int64, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	if buffer <= 0 {
		buffer = 256
	}
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, logger)
}

// Publisher sends feedback and served lists to the consumer without making
// the caller wait on persistence. Nothing it does is reported back to the
// caller: failures are counted and logged.
type Publisher struct {
	pub       message.Publisher
	now       func() time.Time
	logger    zerolog.Logger
	logSample *rate.Sometimes
}

// NewPublisher wraps pub.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{
		pub:       pub,
		now:       time.Now,
		logger:    logging.WithComponent("feedback"),
		logSample: &rate.Sometimes{First: 5, Interval: 30 * time.Second},
	}
}

// SetClock overrides the time source used to stamp records.
func (p *Publisher) SetClock(now func() time.Time) {
	p.now = now
}

// PublishFeedback stamps f with an id and timestamp when missing and
// publishes it. It reports whether the record was handed off.
//
//nolint:gocritic // hugeParam: f is modified locally before encoding
func (p *Publisher) PublishFeedback(ctx context.Context, f Feedback) bool {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = p.now().UTC()
	}
	if err := f.Validate(); err != nil {
		p.fail(ctx, "publish", TopicFeedback, err)
		return false
	}
	return p.publish(ctx, TopicFeedback, f.ID, f.SessionID, f.RecommendationID, f)
}

// PublishServed publishes a served list. Call it only after the list was
// returned to the visitor.
//
//nolint:gocritic // hugeParam: s is modified locally before encoding
func (p *Publisher) PublishServed(ctx context.Context, s Served) bool {
	if s.ServedAt.IsZero() {
		s.ServedAt = p.now().UTC()
	}
	if err := s.Validate(); err != nil {
		p.fail(ctx, "publish", TopicServed, err)
		return false
	}
	return p.publish(ctx, TopicServed, s.RecommendationID, s.SessionID, s.RecommendationID, s)
}

func (p *Publisher) publish(ctx context.Context, topic, id, sessionID, recID string, v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		p.fail(ctx, "publish", topic, err)
		return false
	}
	msg := message.NewMessage(id, payload)
	msg.Metadata.Set(MetadataSessionID, sessionID)
	msg.Metadata.Set(MetadataRecID, recID)
	if reqID := logging.RequestIDFromContext(ctx); reqID != "" {
		msg.Metadata.Set(MetadataRequestID, reqID)
	}

	if err := p.pub.Publish(topic, msg); err != nil {
		p.fail(ctx, "publish", topic, err)
		return false
	}
	return true
}

func (p *Publisher) fail(ctx context.Context, stage, topic string, err error) {
	metrics.FeedbackErrors.WithLabelValues(stage).Inc()
	p.logSample.Do(func() {
		l := logging.Ctx(ctx).With().Str("component", "feedback").Logger()
		l.Warn().Err(err).Str("topic", topic).Msg("Feedback record dropped")
	})
}
