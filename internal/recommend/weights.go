// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"math"

	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

// WeightVector is the blend of the four strategies. It is a value type:
// every method returns a new vector and leaves the receiver alone.
type WeightVector struct {
	ContentBased  float64 `json:"contentBased" koanf:"content_based"`
	Collaborative float64 `json:"collaborative" koanf:"collaborative"`
	Popularity    float64 `json:"popularity" koanf:"popularity"`
	Recency       float64 `json:"recency" koanf:"recency"`
}

// DefaultWeights is the cold-start blend.
func DefaultWeights() WeightVector {
	return WeightVector{ContentBased: 0.4, Collaborative: 0.3, Popularity: 0.2, Recency: 0.1}
}

// Get returns the weight for s.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) Get(s Strategy) float64 {
	switch s {
	case StrategyContent:
		return w.ContentBased
	case StrategyCollaborative:
		return w.Collaborative
	case StrategyPopularity:
		return w.Popularity
	case StrategyRecency:
		return w.Recency
	}
	return 0
}

// Add returns the component-wise sum.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) Add(d WeightVector) WeightVector {
	return WeightVector{
		ContentBased:  w.ContentBased + d.ContentBased,
		Collaborative: w.Collaborative + d.Collaborative,
		Popularity:    w.Popularity + d.Popularity,
		Recency:       w.Recency + d.Recency,
	}
}

// Clamp raises negative components to zero.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) Clamp() WeightVector {
	return WeightVector{
		ContentBased:  math.Max(0, w.ContentBased),
		Collaborative: math.Max(0, w.Collaborative),
		Popularity:    math.Max(0, w.Popularity),
		Recency:       math.Max(0, w.Recency),
	}
}

// Sum returns the total weight.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) Sum() float64 {
	return w.ContentBased + w.Collaborative + w.Popularity + w.Recency
}

// Normalize clamps and then scales to sum 1. A vector with nothing left
// after clamping becomes DefaultWeights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) Normalize() WeightVector {
	return w.NormalizeOr(DefaultWeights())
}

// NormalizeOr is Normalize with an explicit fallback for the all-zero case.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) NormalizeOr(fallback WeightVector) WeightVector {
	c := w.Clamp()
	sum := c.Sum()
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return fallback
	}
	return WeightVector{
		ContentBased:  c.ContentBased / sum,
		Collaborative: c.Collaborative / sum,
		Popularity:    c.Popularity / sum,
		Recency:       c.Recency / sum,
	}
}

// ToMap returns the weights keyed by strategy.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w WeightVector) ToMap() map[Strategy]float64 {
	m := make(map[Strategy]float64, len(Strategies))
	for _, s := range Strategies {
		m[s] = w.Get(s)
	}
	return m
}

// AdaptationConfig holds the engagement rules used by WeightAdapter.
type AdaptationConfig struct {
	// HighEngagement and LowEngagement are inclusive 0-100 thresholds.
	HighEngagement float64 `json:"high_engagement"`
	LowEngagement  float64 `json:"low_engagement"`

	// HighShift is added for engaged sessions, LowShift for disengaged ones.
	HighShift WeightVector `json:"high_shift"`
	LowShift  WeightVector `json:"low_shift"`

	// SearchBoost is added to content-based when the session searched.
	SearchBoost float64 `json:"search_boost"`
}

// DefaultAdaptation moves engaged sessions toward personalised strategies
// and disengaged ones toward popular content.
func DefaultAdaptation() AdaptationConfig {
	return AdaptationConfig{
		HighEngagement: 70,
		LowEngagement:  30,
		HighShift:      WeightVector{ContentBased: 0.1, Collaborative: 0.1, Popularity: -0.15, Recency: -0.05},
		LowShift:       WeightVector{ContentBased: -0.1, Collaborative: -0.1, Popularity: 0.15, Recency: 0.05},
		SearchBoost:    0.05,
	}
}

// WeightAdapter maps a profile to a weight vector.
type WeightAdapter struct {
	defaults WeightVector
	rules    AdaptationConfig
}

// NewWeightAdapter returns an adapter starting from defaults.
//
//nolint:gocritic // hugeParam: value types kept immutable
func NewWeightAdapter(defaults WeightVector, rules AdaptationConfig) *WeightAdapter {
	return &WeightAdapter{defaults: defaults, rules: rules}
}

// Defaults returns the cold-start vector.
func (a *WeightAdapter) Defaults() WeightVector {
	return a.defaults
}

// Adapt returns the blend for p. A nil profile gets the defaults exactly;
// otherwise the nudges are applied, then the result is clamped and
// normalized.
func (a *WeightAdapter) Adapt(p *preference.Profile) WeightVector {
	if p == nil {
		return a.defaults
	}

	w := a.defaults
	switch {
	case p.Engagement >= a.rules.HighEngagement:
		w = w.Add(a.rules.HighShift)
	case p.Engagement <= a.rules.LowEngagement:
		w = w.Add(a.rules.LowShift)
	}
	if len(p.SearchPatterns) > 0 {
		w = w.Add(WeightVector{ContentBased: a.rules.SearchBoost})
	}
	return w.NormalizeOr(a.defaults)
}
