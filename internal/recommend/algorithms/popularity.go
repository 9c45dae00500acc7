// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// Popularity ranks the catalog by views plus votes. It is the fallback for
// every other strategy, so it depends on nothing but a catalog listing.
//
// The score keeps every item in a narrow band below the base score:
//
//	score(item) = base · (0.9 + 0.1 · popularity / max popularity)
type Popularity struct {
	BaseGenerator
	baseScore float64
}

// NewPopularity creates a popularity generator.
func NewPopularity(store catalog.Store, cfg recommend.PopularityConfig) *Popularity {
	if cfg.BaseScore <= 0 {
		cfg.BaseScore = 0.8
	}
	return &Popularity{
		BaseGenerator: NewBaseGenerator(recommend.StrategyPopularity, store),
		baseScore:     cfg.BaseScore,
	}
}

// Generate implements recommend.Generator.
//
//nolint:gocritic // hugeParam: q passed by value per the Generator contract
func (p *Popularity) Generate(ctx context.Context, q recommend.Query) recommend.Result {
	items, err := p.listAllowed(ctx, &q)
	if err != nil {
		return recommend.Failed(p.strategy, fmt.Errorf("list catalog: %w", err))
	}
	ranked := rankByPopularity(items)
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}

	out := make([]recommend.Candidate, 0, len(ranked))
	maxPop := maxPopularity(ranked)
	for i := range ranked {
		it := &ranked[i]
		out = append(out, p.candidate(*it, PopularityScore(it.Popularity(), maxPop, p.baseScore), popularReasons(it)))
	}
	return recommend.OK(p.strategy, out)
}

// PopularityScore maps a popularity count into [0.9·base, base].
func PopularityScore(pop, maxPop int64, base float64) float64 {
	norm := 1.0
	if maxPop > 0 {
		norm = float64(pop) / float64(maxPop)
	}
	return base * (0.9 + 0.1*norm)
}

// rankByPopularity sorts items in place by popularity, rating, then id.
func rankByPopularity(items []catalog.Item) []catalog.Item {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Popularity(), items[j].Popularity()
		if pi != pj {
			return pi > pj
		}
		if items[i].Rating != items[j].Rating {
			return items[i].Rating > items[j].Rating
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// maxPopularity expects items ranked by rankByPopularity.
func maxPopularity(items []catalog.Item) int64 {
	if len(items) == 0 {
		return 0
	}
	return items[0].Popularity()
}

func popularReasons(it *catalog.Item) []recommend.Reason {
	return []recommend.Reason{{
		Type:        "popular",
		Description: fmt.Sprintf("Popular with visitors: %d views, %d votes", it.ViewCount, it.VoteCount),
		Confidence:  1,
	}}
}
