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
	"strings"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/similarity"
)

// Reason types emitted by content matching.
const (
	ReasonGenre    = "genre"
	ReasonDirector = "director"
	ReasonEra      = "era"
	ReasonTag      = "tag"
)

// ContentBased recommends items that share attributes with the item the
// visitor is looking at. The similarity is a weighted sum:
//
//	sim(a, b) = w_genre · J(genres) + w_director · J(directors) +
//	            w_era · era(a, b) + w_tag · J(tags)
//
// era is 1 for the same decade, 0.5 for neighbouring decades and 0
// otherwise.
type ContentBased struct {
	BaseGenerator
	cfg recommend.ContentConfig
}

// NewContentBased creates a content-based generator.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewContentBased(store catalog.Store, cfg recommend.ContentConfig) *ContentBased {
	return &ContentBased{
		BaseGenerator: NewBaseGenerator(recommend.StrategyContent, store),
		cfg:           cfg,
	}
}

// features holds the normalized attribute sets of one item.
type features struct {
	genres    map[string]struct{}
	directors map[string]struct{}
	tags      map[string]struct{}
	era       int
}

func extract(it *catalog.Item) features {
	return features{
		genres:    stringSet(it.Genres),
		directors: stringSet(it.Directors),
		tags:      stringSet(it.Tags),
		era:       it.Era(),
	}
}

// EraMatch compares two decades.
func EraMatch(a, b int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	switch d := a - b; {
	case d == 0:
		return 1
	case d == 10 || d == -10:
		return 0.5
	}
	return 0
}

type contribution struct {
	reason recommend.Reason
	value  float64
}

// Generate implements recommend.Generator.
//
//nolint:gocritic // hugeParam: q passed by value per the Generator contract
func (c *ContentBased) Generate(ctx context.Context, q recommend.Query) recommend.Result {
	if q.ContextType != recommend.ContextItemDetail || q.ContextID == "" {
		return recommend.Empty(c.strategy)
	}

	focal, err := c.catalog.Get(ctx, q.ContextID)
	if errors.Is(err, catalog.ErrNotFound) {
		return recommend.Empty(c.strategy)
	}
	if err != nil {
		return recommend.Failed(c.strategy, fmt.Errorf("load focal item: %w", err))
	}

	items, err := c.listAllowed(ctx, &q)
	if err != nil {
		return recommend.Failed(c.strategy, fmt.Errorf("list catalog: %w", err))
	}

	ff := extract(&focal)
	out := make([]recommend.Candidate, 0, len(items))
	for i := range items {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return recommend.Failed(c.strategy, err)
			}
		}
		it := &items[i]
		if it.ID == focal.ID {
			continue
		}
		score, reasons := c.score(ff, it)
		if score < c.cfg.MinSimilarity || score <= 0 {
			continue
		}
		out = append(out, c.candidate(*it, score, reasons))
	}

	byScore(out)
	return recommend.OK(c.strategy, truncate(out, q.Limit))
}

// score returns the similarity of it to the focal item and one reason per
// matching attribute, strongest first.
func (c *ContentBased) score(ff features, it *catalog.Item) (float64, []recommend.Reason) {
	fi := extract(it)
	var parts []contribution

	if m := similarity.Jaccard(ff.genres, fi.genres); m > 0 {
		parts = append(parts, contribution{value: c.cfg.GenreWeight * m, reason: recommend.Reason{
			Type:        ReasonGenre,
			Description: "Shares genres: " + strings.Join(shared(it.Genres, ff.genres), ", "),
			Confidence:  m,
		}})
	}
	if m := similarity.Jaccard(ff.directors, fi.directors); m > 0 {
		parts = append(parts, contribution{value: c.cfg.DirectorWeight * m, reason: recommend.Reason{
			Type:        ReasonDirector,
			Description: "Same director: " + strings.Join(shared(it.Directors, ff.directors), ", "),
			Confidence:  m,
		}})
	}
	if m := EraMatch(ff.era, fi.era); m > 0 {
		desc := fmt.Sprintf("Also from the %ds", fi.era)
		if m < 1 {
			desc = fmt.Sprintf("From the %ds, close to the %ds", fi.era, ff.era)
		}
		parts = append(parts, contribution{value: c.cfg.EraWeight * m, reason: recommend.Reason{
			Type:        ReasonEra,
			Description: desc,
			Confidence:  m,
		}})
	}
	if m := similarity.Jaccard(ff.tags, fi.tags); m > 0 {
		parts = append(parts, contribution{value: c.cfg.TagWeight * m, reason: recommend.Reason{
			Type:        ReasonTag,
			Description: "Tagged " + strings.Join(shared(it.Tags, ff.tags), ", "),
			Confidence:  m,
		}})
	}

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].value > parts[j].value })

	total := 0.0
	reasons := make([]recommend.Reason, len(parts))
	for i, p := range parts {
		total += p.value
		reasons[i] = p.reason
	}
	return total, reasons
}
