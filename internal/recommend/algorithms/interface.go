// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// ctxCheckInterval is how many items a scan processes between context checks.
const ctxCheckInterval = 256

// BaseGenerator provides what every generator shares.
type BaseGenerator struct {
	strategy recommend.Strategy
	catalog  catalog.Store
	logger   zerolog.Logger
}

// NewBaseGenerator returns a base for strategy reading from store.
func NewBaseGenerator(strategy recommend.Strategy, store catalog.Store) BaseGenerator {
	return BaseGenerator{
		strategy: strategy,
		catalog:  store,
		logger:   logging.WithComponent("generator").With().Str("strategy", string(strategy)).Logger(),
	}
}

// Strategy returns the strategy identifier.
func (b *BaseGenerator) Strategy() recommend.Strategy {
	return b.strategy
}

// listAllowed lists catalog items that pass the query's filters.
func (b *BaseGenerator) listAllowed(ctx context.Context, q *recommend.Query) ([]catalog.Item, error) {
	items, err := b.catalog.List(ctx, q.Types)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for i := range items {
		if q.Allows(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// candidate builds a candidate for item.
func (b *BaseGenerator) candidate(item catalog.Item, score float64, reasons []recommend.Reason) recommend.Candidate {
	return recommend.Candidate{
		ContentID:   item.ID,
		ContentType: item.Type,
		Score:       score,
		Reasons:     reasons,
		Strategy:    b.strategy,
		Algorithm:   b.strategy.Algorithm(),
		Item:        &item,
	}
}

// stringSet lowercases and trims values into a set, skipping blanks.
func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// shared returns the original-case values of a that also occur in b.
func shared(a []string, b map[string]struct{}) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range a {
		k := strings.ToLower(strings.TrimSpace(v))
		if _, ok := b[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// byScore sorts candidates by score descending, then rating descending,
// then id.
func byScore(c []recommend.Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		ri, rj := rating(&c[i]), rating(&c[j])
		if ri != rj {
			return ri > rj
		}
		return c[i].ContentID < c[j].ContentID
	})
}

func rating(c *recommend.Candidate) float64 {
	if c.Item == nil {
		return 0
	}
	return c.Item.Rating
}

func truncate(c []recommend.Candidate, limit int) []recommend.Candidate {
	if limit > 0 && len(c) > limit {
		return c[:limit]
	}
	return c
}
