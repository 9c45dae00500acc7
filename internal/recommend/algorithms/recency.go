// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// Recency ranks the catalog by the later of publish and update time.
//
//	score(item) = base · 0.5^(age / halfLife)
type Recency struct {
	BaseGenerator
	baseScore float64
	halfLife  time.Duration
	now       func() time.Time
}

// NewRecency creates a recency generator.
func NewRecency(store catalog.Store, cfg recommend.RecencyConfig) *Recency {
	if cfg.BaseScore <= 0 {
		cfg.BaseScore = 0.6
	}
	if cfg.HalfLife <= 0 {
		cfg.HalfLife = 14 * 24 * time.Hour
	}
	return &Recency{
		BaseGenerator: NewBaseGenerator(recommend.StrategyRecency, store),
		baseScore:     cfg.BaseScore,
		halfLife:      cfg.HalfLife,
		now:           time.Now,
	}
}

// SetClock overrides the time source.
func (r *Recency) SetClock(now func() time.Time) {
	r.now = now
}

// Generate implements recommend.Generator.
//
//nolint:gocritic // hugeParam: q passed by value per the Generator contract
func (r *Recency) Generate(ctx context.Context, q recommend.Query) recommend.Result {
	items, err := r.listAllowed(ctx, &q)
	if err != nil {
		return recommend.Failed(r.strategy, fmt.Errorf("list catalog: %w", err))
	}

	// undated items have no place in a recency ranking
	dated := items[:0]
	for i := range items {
		if !items[i].Freshness().IsZero() {
			dated = append(dated, items[i])
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		fi, fj := dated[i].Freshness(), dated[j].Freshness()
		if !fi.Equal(fj) {
			return fi.After(fj)
		}
		if dated[i].Rating != dated[j].Rating {
			return dated[i].Rating > dated[j].Rating
		}
		return dated[i].ID < dated[j].ID
	})
	if q.Limit > 0 && len(dated) > q.Limit {
		dated = dated[:q.Limit]
	}

	now := r.now()
	out := make([]recommend.Candidate, 0, len(dated))
	for i := range dated {
		it := &dated[i]
		age := now.Sub(it.Freshness())
		out = append(out, r.candidate(*it, r.Score(age), []recommend.Reason{{
			Type:        "recent",
			Description: recentDescription(age),
			Confidence:  r.Score(age) / r.baseScore,
		}}))
	}
	return recommend.OK(r.strategy, out)
}

// Score decays the base score by age. Future timestamps count as new.
func (r *Recency) Score(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	return r.baseScore * math.Pow(0.5, float64(age)/float64(r.halfLife))
}

func recentDescription(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days <= 0:
		return "Updated today"
	case days == 1:
		return "Updated yesterday"
	default:
		return fmt.Sprintf("Updated %d days ago", days)
	}
}
