// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/reelrank/internal/catalog"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()
	tests := []struct {
		name    string
		metrics Metrics
		want    []string // types in order
	}{
		{
			name:    "healthy",
			metrics: Metrics{Counts: Counts{Impressions: 200, Clicks: 20}, ClickThroughRate: 0.1, Diversity: 0.9, DiversitySample: 200},
			want:    nil,
		},
		{
			name:    "low diversity",
			metrics: Metrics{Diversity: 0.4, DiversitySample: 50},
			want:    []string{SuggestIncreaseDiversity},
		},
		{
			name:    "low ctr needs enough impressions",
			metrics: Metrics{Counts: Counts{Impressions: 99}, ClickThroughRate: 0.01},
			want:    nil,
		},
		{
			name: "everything at once",
			metrics: Metrics{
				Counts:           Counts{Impressions: 500, Clicks: 5},
				ClickThroughRate: 0.01,
				Diversity:        0.5,
				DiversitySample:  500,
				Strategies: []StrategyStats{
					{Strategy: "content", Conversion: 0.05},
					{Strategy: "popularity", Conversion: 0.2},
					{Strategy: UnknownAlgorithm, Conversion: 0.9},
				},
				ContentTypes: []ContentTypeStats{
					{ContentType: catalog.TypeGuide, Counts: Counts{Impressions: 40}, ClickThroughRate: 0.001},
					{ContentType: catalog.TypeReview, Counts: Counts{Impressions: 10}, ClickThroughRate: 0},
				},
			},
			want: []string{SuggestImproveRelevance, SuggestIncreaseDiversity, SuggestIncreaseWeight, SuggestRebalanceContentType},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Suggest(tt.metrics, th)
			var types []string
			for _, s := range got {
				types = append(types, s.Type)
			}
			if !reflect.DeepEqual(types, tt.want) {
				t.Errorf("Suggest() types = %v, want %v", types, tt.want)
			}
		})
	}
}

func TestSuggest_Details(t *testing.T) {
	t.Parallel()

	m := Metrics{
		Diversity:       0.45,
		DiversitySample: 10,
		Strategies:      []StrategyStats{{Strategy: "collaborative", Conversion: 0.3}},
	}
	got := Suggest(m, DefaultThresholds())
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}

	div := got[0]
	if div.Priority != PriorityHigh || math.Abs(div.EstimatedImprovement-15) > 1e-9 {
		t.Errorf("diversity suggestion = %+v", div)
	}
	weight := got[1]
	if weight.Priority != PriorityMedium || weight.Target != "collaborative" || math.Abs(weight.EstimatedImprovement-15) > 1e-9 {
		t.Errorf("weight suggestion = %+v", weight)
	}

	if again := Suggest(m, DefaultThresholds()); !reflect.DeepEqual(got, again) {
		t.Error("Suggest is not deterministic")
	}
}
