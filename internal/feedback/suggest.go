// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"fmt"
	"sort"
)

// Priority orders suggestions for operator review.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Suggestion types.
const (
	SuggestIncreaseDiversity    = "increase_diversity"
	SuggestIncreaseWeight       = "increase_weight"
	SuggestImproveRelevance     = "improve_relevance"
	SuggestRebalanceContentType = "rebalance_content_type"
)

// Suggestion is an advisory change for an operator. Nothing applies it
// automatically.
type Suggestion struct {
	Type     string   `json:"type"`
	Priority Priority `json:"priority"`
	// Target names the strategy or content type concerned, if any.
	Target      string `json:"target,omitempty"`
	Description string `json:"description"`
	// EstimatedImprovement is a rough percentage.
	EstimatedImprovement float64 `json:"estimatedImprovement"`
}

// Thresholds drive Suggest.
type Thresholds struct {
	MinDiversity             float64 `koanf:"min_diversity" json:"minDiversity"`
	MinConversion            float64 `koanf:"min_conversion" json:"minConversion"`
	MinCTR                   float64 `koanf:"min_ctr" json:"minCtr"`
	MinImpressionsForCTR     int     `koanf:"min_impressions_for_ctr" json:"minImpressionsForCtr"`
	MinContentTypeImpression int     `koanf:"min_content_type_impressions" json:"minContentTypeImpressions"`
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDiversity:             0.6,
		MinConversion:            0.1,
		MinCTR:                   0.02,
		MinImpressionsForCTR:     100,
		MinContentTypeImpression: 20,
	}
}

// Suggest derives advisory suggestions from m. It is pure: the same metrics
// and thresholds always give the same list, sorted by priority then type.
//
//nolint:gocritic // hugeParam: read-only
func Suggest(m Metrics, t Thresholds) []Suggestion {
	var out []Suggestion

	if m.DiversitySample > 0 && m.Diversity < t.MinDiversity {
		out = append(out, Suggestion{
			Type:                 SuggestIncreaseDiversity,
			Priority:             PriorityHigh,
			Description:          fmt.Sprintf("Only %.0f%% of recommended items are distinct; add diversity to the ranking", m.Diversity*100),
			EstimatedImprovement: (t.MinDiversity - m.Diversity) * 100,
		})
	}

	if best, ok := bestConversion(m.Strategies); ok && best.Conversion > t.MinConversion {
		out = append(out, Suggestion{
			Type:                 SuggestIncreaseWeight,
			Priority:             PriorityMedium,
			Target:               best.Strategy,
			Description:          fmt.Sprintf("%s recommendations convert best (%.3f); consider raising their weight", best.Strategy, best.Conversion),
			EstimatedImprovement: best.Conversion * 50,
		})
	}

	if m.Impressions >= t.MinImpressionsForCTR && m.ClickThroughRate < t.MinCTR {
		out = append(out, Suggestion{
			Type:                 SuggestImproveRelevance,
			Priority:             PriorityHigh,
			Description:          fmt.Sprintf("Click-through rate %.2f%% is below %.2f%%", m.ClickThroughRate*100, t.MinCTR*100),
			EstimatedImprovement: (t.MinCTR - m.ClickThroughRate) / t.MinCTR * 100,
		})
	}

	if m.ClickThroughRate > 0 {
		half := m.ClickThroughRate / 2
		for _, ct := range m.ContentTypes {
			if ct.Impressions < t.MinContentTypeImpression || ct.ClickThroughRate >= half {
				continue
			}
			out = append(out, Suggestion{
				Type:                 SuggestRebalanceContentType,
				Priority:             PriorityLow,
				Target:               string(ct.ContentType),
				Description:          fmt.Sprintf("%s recommendations are clicked at %.2f%%, under half the overall rate", ct.ContentType, ct.ClickThroughRate*100),
				EstimatedImprovement: (half - ct.ClickThroughRate) / m.ClickThroughRate * 100,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Priority.rank(), out[j].Priority.rank(); ri != rj {
			return ri < rj
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// bestConversion ignores unattributed feedback; ties go to the first name.
func bestConversion(strategies []StrategyStats) (StrategyStats, bool) {
	var (
		best  StrategyStats
		found bool
	)
	for _, s := range strategies {
		if s.Strategy == UnknownAlgorithm {
			continue
		}
		if !found || s.Conversion > best.Conversion ||
			(s.Conversion == best.Conversion && s.Strategy < best.Strategy) {
			best, found = s, true
		}
	}
	return best, found
}
