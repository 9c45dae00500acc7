// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"errors"
	"testing"

	"github.com/tomtom215/reelrank/internal/catalog"
)

func TestStrategyAlgorithm(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     Algorithm
	}{
		{StrategyContent, AlgorithmContent},
		{StrategyCollaborative, AlgorithmCollaborative},
		{StrategyPopularity, AlgorithmPopular},
		{StrategyRecency, AlgorithmPopular},
	}
	for _, tt := range tests {
		if got := tt.strategy.Algorithm(); got != tt.want {
			t.Errorf("%s.Algorithm() = %s, want %s", tt.strategy, got, tt.want)
		}
	}
}

func TestContextTypeValid(t *testing.T) {
	for _, c := range []ContextType{ContextGeneral, ContextItemDetail, ContextSearchResult} {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if ContextType("homepage").Valid() {
		t.Error("unknown context type accepted")
	}
}

func TestResultConstructors(t *testing.T) {
	if r := OK(StrategyRecency, nil); r.Status != StatusEmpty {
		t.Errorf("OK(nil).Status = %s", r.Status)
	}
	if r := OK(StrategyRecency, []Candidate{{ContentID: "x"}}); r.Status != StatusOK || len(r.Candidates) != 1 {
		t.Errorf("OK() = %+v", r)
	}
	err := errors.New("x")
	if r := Failed(StrategyContent, err); r.Status != StatusFailed || !errors.Is(r.Err, err) {
		t.Errorf("Failed() = %+v", r)
	}
}

func TestQueryAllows(t *testing.T) {
	q := &Query{
		Types:   []catalog.ContentType{catalog.TypeMovie, catalog.TypeReview},
		Exclude: map[string]struct{}{"m-seen": {}},
	}
	tests := []struct {
		item catalog.Item
		want bool
	}{
		{catalog.Item{ID: "m1", Type: catalog.TypeMovie}, true},
		{catalog.Item{ID: "r1", Type: catalog.TypeReview}, true},
		{catalog.Item{ID: "g1", Type: catalog.TypeGuide}, false},
		{catalog.Item{ID: "m-seen", Type: catalog.TypeMovie}, false},
	}
	for _, tt := range tests {
		if got := q.Allows(&tt.item); got != tt.want {
			t.Errorf("Allows(%s) = %v, want %v", tt.item.ID, got, tt.want)
		}
	}

	open := &Query{}
	if !open.Allows(&catalog.Item{ID: "g1", Type: catalog.TypeGuide}) {
		t.Error("empty type filter should allow everything")
	}
}

func TestCandidateKey(t *testing.T) {
	a := Candidate{ContentID: "x", ContentType: catalog.TypeMovie}
	b := Candidate{ContentID: "x", ContentType: catalog.TypeGuide}
	if a.Key() == b.Key() {
		t.Error("same id with different types must not collide")
	}
}
