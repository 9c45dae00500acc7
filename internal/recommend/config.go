// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights is the cold-start blend. It must already sum to 1.
	Weights WeightVector `json:"weights"`

	// Adaptation contains the per-session weight rules.
	Adaptation AdaptationConfig `json:"adaptation"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Content contains parameters for content-based matching.
	Content ContentConfig `json:"content"`

	// Collaborative contains parameters for session-to-session matching.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Popularity contains parameters for popularity ranking.
	Popularity PopularityConfig `json:"popularity"`

	// Recency contains parameters for recency ranking.
	Recency RecencyConfig `json:"recency"`
}

// LimitsConfig bounds a single request.
type LimitsConfig struct {
	// DefaultLimit applies when a request does not set one.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest allowed limit.
	MaxLimit int `json:"max_limit"`

	// ExpansionFactor multiplies the limit before splitting it across
	// generators, leaving room for deduplication losses.
	ExpansionFactor int `json:"expansion_factor"`

	// GeneratorTimeout bounds each generator call.
	GeneratorTimeout time.Duration `json:"generator_timeout"`
}

// ContentConfig weights the attributes compared by content matching.
type ContentConfig struct {
	GenreWeight    float64 `json:"genre_weight"`
	DirectorWeight float64 `json:"director_weight"`
	EraWeight      float64 `json:"era_weight"`
	TagWeight      float64 `json:"tag_weight"`

	// MinSimilarity drops weaker matches.
	MinSimilarity float64 `json:"min_similarity"`
}

// CollaborativeConfig tunes neighbour-based scoring.
type CollaborativeConfig struct {
	// FallbackFactor scales popular items used when no neighbour helps.
	FallbackFactor float64 `json:"fallback_factor"`
}

// PopularityConfig sets the popularity score range.
type PopularityConfig struct {
	// BaseScore is the score of the most popular item.
	BaseScore float64 `json:"base_score"`
}

// RecencyConfig sets the recency decay.
type RecencyConfig struct {
	// BaseScore is the score of an item updated right now.
	BaseScore float64 `json:"base_score"`

	// HalfLife halves the score of an item every interval.
	HalfLife time.Duration `json:"half_life"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:    DefaultWeights(),
		Adaptation: DefaultAdaptation(),
		Limits: LimitsConfig{
			DefaultLimit:     10,
			MaxLimit:         50,
			ExpansionFactor:  2,
			GeneratorTimeout: 2 * time.Second,
		},
		Content: ContentConfig{
			GenreWeight:    0.4,
			DirectorWeight: 0.25,
			EraWeight:      0.15,
			TagWeight:      0.2,
			MinSimilarity:  0.05,
		},
		Collaborative: CollaborativeConfig{
			FallbackFactor: 0.3,
		},
		Popularity: PopularityConfig{
			BaseScore: 0.8,
		},
		Recency: RecencyConfig{
			BaseScore: 0.6,
			HalfLife:  14 * 24 * time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateWeights(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateAdaptation(); err != nil {
		return err
	}
	return c.validateGenerators()
}

func (c *Config) validateWeights() error {
	w := c.Weights
	for _, s := range Strategies {
		if v := w.Get(s); v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weights.%s must be non-negative, got %f", s, v)
		}
	}
	if math.Abs(w.Sum()-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %f", w.Sum())
	}
	return nil
}

func (c *Config) validateLimits() error {
	l := c.Limits
	if l.MaxLimit <= 0 {
		return fmt.Errorf("limits.max_limit must be positive")
	}
	if l.DefaultLimit <= 0 || l.DefaultLimit > l.MaxLimit {
		return fmt.Errorf("limits.default_limit must be in (0, %d], got %d", l.MaxLimit, l.DefaultLimit)
	}
	if l.ExpansionFactor < 1 {
		return fmt.Errorf("limits.expansion_factor must be at least 1")
	}
	if l.GeneratorTimeout <= 0 {
		return fmt.Errorf("limits.generator_timeout must be positive")
	}
	return nil
}

func (c *Config) validateAdaptation() error {
	a := c.Adaptation
	if a.LowEngagement < 0 || a.HighEngagement > 100 || a.LowEngagement >= a.HighEngagement {
		return fmt.Errorf("adaptation thresholds must satisfy 0 <= low < high <= 100, got %f/%f",
			a.LowEngagement, a.HighEngagement)
	}
	return nil
}

func (c *Config) validateGenerators() error {
	cc := c.Content
	for name, v := range map[string]float64{
		"genre_weight":    cc.GenreWeight,
		"director_weight": cc.DirectorWeight,
		"era_weight":      cc.EraWeight,
		"tag_weight":      cc.TagWeight,
	} {
		if v < 0 {
			return fmt.Errorf("content.%s must be non-negative", name)
		}
	}
	if cc.MinSimilarity < 0 || cc.MinSimilarity > 1 {
		return fmt.Errorf("content.min_similarity must be in [0, 1]")
	}
	if f := c.Collaborative.FallbackFactor; f < 0 || f > 1 {
		return fmt.Errorf("collaborative.fallback_factor must be in [0, 1]")
	}
	if b := c.Popularity.BaseScore; b <= 0 || b > 1 {
		return fmt.Errorf("popularity.base_score must be in (0, 1]")
	}
	if b := c.Recency.BaseScore; b <= 0 || b > 1 {
		return fmt.Errorf("recency.base_score must be in (0, 1]")
	}
	if c.Recency.HalfLife <= 0 {
		return fmt.Errorf("recency.half_life must be positive")
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
