// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
	"github.com/tomtom215/reelrank/internal/recommend/similarity"
)

// Collaborative recommends what similar sessions liked. For each item
// liked by a neighbour and not yet seen here:
//
//	raw(item) = Σ_neighbours (preference/100) · similarity
//
// and scores are raw divided by the largest raw value. When no neighbour
// contributes anything, popular unseen items are offered instead at
// fallbackFactor times their popularity score.
type Collaborative struct {
	BaseGenerator
	finder         similarity.Finder
	fallbackFactor float64
	popularityBase float64
}

// NewCollaborative creates a collaborative generator.
func NewCollaborative(store catalog.Store, finder similarity.Finder, cfg recommend.CollaborativeConfig, pop recommend.PopularityConfig) *Collaborative {
	if finder == nil {
		finder = similarity.Disabled{}
	}
	if pop.BaseScore <= 0 {
		pop.BaseScore = 0.8
	}
	return &Collaborative{
		BaseGenerator:  NewBaseGenerator(recommend.StrategyCollaborative, store),
		finder:         finder,
		fallbackFactor: cfg.FallbackFactor,
		popularityBase: pop.BaseScore,
	}
}

type neighbourScore struct {
	item       preference.ItemScore
	raw        float64
	neighbours int
}

// Generate implements recommend.Generator.
//
//nolint:gocritic // hugeParam: q passed by value per the Generator contract
func (c *Collaborative) Generate(ctx context.Context, q recommend.Query) recommend.Result {
	if q.Profile == nil {
		return recommend.Empty(c.strategy)
	}

	matches, err := c.finder.FindSimilarSessions(ctx, q.Profile)
	if err != nil {
		return recommend.Failed(c.strategy, fmt.Errorf("find similar sessions: %w", err))
	}

	out := c.fromNeighbours(ctx, &q, matches)
	if len(out) > 0 {
		return recommend.OK(c.strategy, out)
	}
	if err := ctx.Err(); err != nil {
		return recommend.Failed(c.strategy, err)
	}

	out, err = c.fallback(ctx, &q)
	if err != nil {
		return recommend.Failed(c.strategy, fmt.Errorf("popular fallback: %w", err))
	}
	return recommend.OK(c.strategy, out)
}

func (c *Collaborative) fromNeighbours(ctx context.Context, q *recommend.Query, matches []similarity.Match) []recommend.Candidate {
	byKey := make(map[string]*neighbourScore)
	for _, m := range matches {
		for _, liked := range m.Liked {
			if q.Profile.HasSeen(liked.ContentID) {
				continue
			}
			if _, excluded := q.Exclude[liked.ContentID]; excluded {
				continue
			}
			if !catalog.MatchesTypes(liked.ContentType, q.Types) {
				continue
			}
			key := string(liked.ContentType) + "/" + liked.ContentID
			ns := byKey[key]
			if ns == nil {
				ns = &neighbourScore{item: liked}
				byKey[key] = ns
			}
			ns.raw += liked.Score / 100 * m.Similarity
			ns.neighbours++
		}
	}
	if len(byKey) == 0 {
		return nil
	}

	ranked := make([]*neighbourScore, 0, len(byKey))
	maxRaw := 0.0
	for _, ns := range byKey {
		ranked = append(ranked, ns)
		if ns.raw > maxRaw {
			maxRaw = ns.raw
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].raw != ranked[j].raw {
			return ranked[i].raw > ranked[j].raw
		}
		if ranked[i].item.ContentType != ranked[j].item.ContentType {
			return ranked[i].item.ContentType < ranked[j].item.ContentType
		}
		return ranked[i].item.ContentID < ranked[j].item.ContentID
	})

	out := make([]recommend.Candidate, 0, min(len(ranked), max(q.Limit, 1)))
	dropped := 0
	for _, ns := range ranked {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		item, err := c.catalog.Get(ctx, ns.item.ContentID)
		if err != nil {
			if !errors.Is(err, catalog.ErrNotFound) && ctx.Err() != nil {
				break
			}
			dropped++
			continue
		}
		if !q.Allows(&item) {
			continue
		}
		score := ns.raw / maxRaw
		out = append(out, c.candidate(item, score, []recommend.Reason{{
			Type:        "similar_sessions",
			Description: neighbourDescription(ns.neighbours),
			Confidence:  score,
		}}))
	}
	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("catalog lookups failed for neighbour likes")
	}
	byScore(out)
	return out
}

func (c *Collaborative) fallback(ctx context.Context, q *recommend.Query) ([]recommend.Candidate, error) {
	items, err := c.listAllowed(ctx, q)
	if err != nil {
		return nil, err
	}
	ranked := rankByPopularity(items)
	maxPop := maxPopularity(ranked)

	out := make([]recommend.Candidate, 0, q.Limit)
	for i := range ranked {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		it := &ranked[i]
		if q.Profile.HasSeen(it.ID) {
			continue
		}
		score := c.fallbackFactor * PopularityScore(it.Popularity(), maxPop, c.popularityBase)
		out = append(out, c.candidate(*it, score, []recommend.Reason{{
			Type:        "popular",
			Description: "Popular with other visitors",
			Confidence:  c.fallbackFactor,
		}}))
	}
	return out, nil
}

func neighbourDescription(n int) string {
	if n == 1 {
		return "Liked by a visitor with similar taste"
	}
	return fmt.Sprintf("Liked by %d visitors with similar taste", n)
}
