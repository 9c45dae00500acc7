// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"fmt"
	"math"
	"strings"
)

// Validate checks that configuration values are usable. It reports the first
// problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateBehavior,
		c.validateCatalog,
		c.validateRecommend,
		c.validateSimilarity,
		c.validateFeedback,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("server.environment must be development, production or test, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateBehavior() error {
	b := &c.Behavior
	switch b.Store {
	case "memory":
	case "badger":
		if b.Path == "" {
			return fmt.Errorf("behavior.path is required when behavior.store=badger")
		}
	default:
		return fmt.Errorf("behavior.store must be memory or badger, got %q", b.Store)
	}
	if b.PageViewRetention <= 0 || b.SearchRetention <= 0 || b.InteractionRetention <= 0 {
		return fmt.Errorf("behavior retention windows must be positive")
	}
	if b.SessionTimeout <= 0 {
		return fmt.Errorf("behavior.session_timeout must be positive")
	}
	if b.MaxTrackedSessions < 1 {
		return fmt.Errorf("behavior.max_tracked_sessions must be at least 1")
	}
	if b.MinEvents < 1 {
		return fmt.Errorf("behavior.min_events must be at least 1, got %d", b.MinEvents)
	}
	if b.LikedThreshold <= 0 || b.LikedThreshold > 100 {
		return fmt.Errorf("behavior.liked_threshold must be in (0, 100], got %v", b.LikedThreshold)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.SeedFile == "" {
			return fmt.Errorf("catalog.seed_file is required when catalog.source=file")
		}
	case "duckdb":
	default:
		return fmt.Errorf("catalog.source must be file or duckdb, got %q", c.Catalog.Source)
	}
	if c.Catalog.CallTimeout <= 0 {
		return fmt.Errorf("catalog.call_timeout must be positive")
	}
	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("catalog.cache_size cannot be negative")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	w := r.Weights
	for name, v := range map[string]float64{
		"content_based": w.ContentBased, "collaborative": w.Collaborative,
		"popularity": w.Popularity, "recency": w.Recency,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("recommend.weights.%s must be in [0, 1], got %v", name, v)
		}
	}
	if sum := w.ContentBased + w.Collaborative + w.Popularity + w.Recency; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("recommend.weights must sum to 1, got %v", sum)
	}
	if r.DefaultLimit < 1 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend limits invalid: default %d, max %d", r.DefaultLimit, r.MaxLimit)
	}
	if r.ExpansionFactor < 1 {
		return fmt.Errorf("recommend.expansion_factor must be at least 1")
	}
	if r.GeneratorTimeout <= 0 {
		return fmt.Errorf("recommend.generator_timeout must be positive")
	}
	if r.LowEngagement >= r.HighEngagement {
		return fmt.Errorf("recommend.low_engagement (%v) must be below high_engagement (%v)", r.LowEngagement, r.HighEngagement)
	}
	if r.RecencyHalfLife <= 0 {
		return fmt.Errorf("recommend.recency_half_life must be positive")
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	s := &c.Similarity
	if !s.Enabled {
		return nil
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("similarity.threshold must be in [0, 1], got %v", s.Threshold)
	}
	if s.MaxSessions < 1 || s.MaxMatches < 1 {
		return fmt.Errorf("similarity.max_sessions and max_matches must be at least 1")
	}
	if s.RebuildInterval <= 0 {
		return fmt.Errorf("similarity.rebuild_interval must be positive")
	}
	return nil
}

func (c *Config) validateFeedback() error {
	f := &c.Feedback
	switch f.Store {
	case "memory", "duckdb":
	default:
		return fmt.Errorf("feedback.store must be memory or duckdb, got %q", f.Store)
	}
	if f.Retention <= 0 || f.SweepInterval <= 0 {
		return fmt.Errorf("feedback retention and sweep interval must be positive")
	}
	if f.AnalyticsWindow <= 0 {
		return fmt.Errorf("feedback.analytics_window must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := &c.Security
	if !s.RateLimitDisabled && (s.RateLimitReqs < 1 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("security rate limit needs positive requests and window")
	}
	if s.MaxBodyBytes < 1 {
		return fmt.Errorf("security.max_body_bytes must be positive")
	}
	if c.Server.IsProduction() {
		for _, o := range s.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("security.cors_origins cannot contain * in production")
			}
		}
	}
	return nil
}
