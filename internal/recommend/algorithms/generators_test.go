// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
	"github.com/tomtom215/reelrank/internal/recommend/similarity"
)

func ids(cands []recommend.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ContentID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPopularity_OrderAndScores(t *testing.T) {
	t.Parallel()

	g := NewPopularity(testCatalog(), recommend.DefaultConfig().Popularity)
	r := g.Generate(context.Background(), recommend.Query{Limit: 20})
	if r.Status != recommend.StatusOK {
		t.Fatalf("status = %s", r.Status)
	}

	want := []string{"alien", "aliens", "blade-runner", "the-thing", "ripley", "notting-hill", "review-alien", "guide-xeno"}
	if got := ids(r.Candidates); !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if r.Candidates[0].Score != 0.8 {
		t.Errorf("top score = %v, want 0.8", r.Candidates[0].Score)
	}
	if s := r.Candidates[1].Score; math.Abs(s-0.8*(0.9+0.1*0.8)) > 1e-9 {
		t.Errorf("second score = %v", s)
	}
	for _, c := range r.Candidates {
		if c.Score < 0.72-1e-9 || c.Score > 0.8 {
			t.Errorf("%s score %v outside [0.72, 0.8]", c.ContentID, c.Score)
		}
	}
}

func TestPopularity_Deterministic(t *testing.T) {
	t.Parallel()

	g := NewPopularity(testCatalog(), recommend.PopularityConfig{})
	first := ids(g.Generate(context.Background(), recommend.Query{Limit: 5}).Candidates)
	for i := 0; i < 10; i++ {
		if got := ids(g.Generate(context.Background(), recommend.Query{Limit: 5}).Candidates); !equalIDs(first, got) {
			t.Fatalf("run %d: %v != %v", i, got, first)
		}
	}
	if len(first) != 5 {
		t.Errorf("limit ignored: %d", len(first))
	}
}

func TestPopularity_FiltersAndFailures(t *testing.T) {
	t.Parallel()

	g := NewPopularity(testCatalog(), recommend.PopularityConfig{})
	r := g.Generate(context.Background(), recommend.Query{
		Limit:   10,
		Types:   []catalog.ContentType{catalog.TypeMovie},
		Exclude: map[string]struct{}{"alien": {}},
	})
	if r.Candidates[0].ContentID != "aliens" || len(r.Candidates) != 4 {
		t.Errorf("filtered = %v", ids(r.Candidates))
	}
	// the top remaining item still anchors the score range
	if r.Candidates[0].Score != 0.8 {
		t.Errorf("top score = %v", r.Candidates[0].Score)
	}

	if r := NewPopularity(brokenStore{}, recommend.PopularityConfig{}).Generate(context.Background(), recommend.Query{}); r.Status != recommend.StatusFailed {
		t.Errorf("status = %s, want failed", r.Status)
	}
}

func TestRecency_OrderAndDecay(t *testing.T) {
	t.Parallel()

	g := NewRecency(testCatalog(), recommend.DefaultConfig().Recency)
	g.SetClock(func() time.Time { return now })

	r := g.Generate(context.Background(), recommend.Query{Limit: 3})
	want := []string{"review-alien", "ripley", "guide-xeno"}
	if got := ids(r.Candidates); !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	if s := g.Score(0); s != 0.6 {
		t.Errorf("Score(0) = %v", s)
	}
	if s := g.Score(14 * 24 * time.Hour); math.Abs(s-0.3) > 1e-9 {
		t.Errorf("Score(half life) = %v, want 0.3", s)
	}
	if s := g.Score(-time.Hour); s != 0.6 {
		t.Errorf("future items should score as new, got %v", s)
	}
	if s := r.Candidates[1].Score; math.Abs(s-0.6*math.Pow(0.5, 2.0/14)) > 1e-9 {
		t.Errorf("ripley score = %v (update time should win over publish time)", s)
	}
}

func TestRecency_SkipsUndated(t *testing.T) {
	t.Parallel()

	store := catalog.NewMemoryStore(
		catalog.Item{ID: "dated", Type: catalog.TypeGuide, PublishedAt: now},
		catalog.Item{ID: "undated", Type: catalog.TypeGuide},
	)
	g := NewRecency(store, recommend.RecencyConfig{})
	g.SetClock(func() time.Time { return now })
	if got := ids(g.Generate(context.Background(), recommend.Query{}).Candidates); !equalIDs(got, []string{"dated"}) {
		t.Errorf("got %v", got)
	}
}

// fakeFinder returns canned matches.
type fakeFinder struct {
	matches []similarity.Match
	err     error
}

func (f fakeFinder) FindSimilarSessions(context.Context, *preference.Profile) ([]similarity.Match, error) {
	return f.matches, f.err
}

func liked(ct catalog.ContentType, id string, score float64) preference.ItemScore {
	return preference.ItemScore{ContentType: ct, ContentID: id, Score: score}
}

func TestCollaborative_NoProfile(t *testing.T) {
	t.Parallel()

	g := NewCollaborative(testCatalog(), fakeFinder{}, recommend.CollaborativeConfig{FallbackFactor: 0.3}, recommend.PopularityConfig{})
	if r := g.Generate(context.Background(), recommend.Query{Limit: 5}); r.Status != recommend.StatusEmpty {
		t.Errorf("status = %s, want empty", r.Status)
	}
}

func TestCollaborative_ScoresNeighbourLikes(t *testing.T) {
	t.Parallel()

	finder := fakeFinder{matches: []similarity.Match{
		{SessionID: "n1", Similarity: 0.5, Liked: []preference.ItemScore{
			liked(catalog.TypeMovie, "alien", 100),
			liked(catalog.TypeMovie, "aliens", 50),
			liked(catalog.TypeMovie, "ghost", 100), // not in the catalog
			liked(catalog.TypeMovie, "the-thing", 100),
		}},
		{SessionID: "n2", Similarity: 1.0, Liked: []preference.ItemScore{
			liked(catalog.TypeMovie, "aliens", 100),
		}},
	}}
	g := NewCollaborative(testCatalog(), finder, recommend.CollaborativeConfig{FallbackFactor: 0.3}, recommend.PopularityConfig{})

	profile := &preference.Profile{SessionID: "me", Seen: []string{"the-thing"}}
	r := g.Generate(context.Background(), recommend.Query{Profile: profile, Limit: 5})
	if r.Status != recommend.StatusOK {
		t.Fatalf("status = %s (%v)", r.Status, r.Err)
	}

	if got := ids(r.Candidates); !equalIDs(got, []string{"aliens", "alien"}) {
		t.Fatalf("candidates = %v", got)
	}
	// aliens: 0.5·0.5 + 1·1 = 1.25 (max); alien: 0.5
	if r.Candidates[0].Score != 1 || math.Abs(r.Candidates[1].Score-0.4) > 1e-9 {
		t.Errorf("scores = %v, %v", r.Candidates[0].Score, r.Candidates[1].Score)
	}
	if r.Candidates[0].Reasons[0].Description != "Liked by 2 visitors with similar taste" {
		t.Errorf("reason = %q", r.Candidates[0].Reasons[0].Description)
	}
}

func TestCollaborative_FallbackToPopularUnseen(t *testing.T) {
	t.Parallel()

	g := NewCollaborative(testCatalog(), similarity.Disabled{}, recommend.CollaborativeConfig{FallbackFactor: 0.3}, recommend.PopularityConfig{BaseScore: 0.8})
	profile := &preference.Profile{SessionID: "me", Seen: []string{"alien"}}
	r := g.Generate(context.Background(), recommend.Query{Profile: profile, Limit: 2})

	if got := ids(r.Candidates); !equalIDs(got, []string{"aliens", "blade-runner"}) {
		t.Fatalf("fallback = %v", got)
	}
	// alien is seen but still defines the popularity range
	want := 0.3 * 0.8 * (0.9 + 0.1*0.8)
	if math.Abs(r.Candidates[0].Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", r.Candidates[0].Score, want)
	}
}

func TestCollaborative_FinderError(t *testing.T) {
	t.Parallel()

	g := NewCollaborative(testCatalog(), fakeFinder{err: errors.New("index offline")}, recommend.CollaborativeConfig{}, recommend.PopularityConfig{})
	r := g.Generate(context.Background(), recommend.Query{Profile: &preference.Profile{}, Limit: 5})
	if r.Status != recommend.StatusFailed {
		t.Errorf("status = %s, want failed", r.Status)
	}
}

// Two sessions sharing four of five likes: the neighbour's fifth like
// surfaces for the current session.
func TestCollaborative_SharedLikesSurfaceUnseenItem(t *testing.T) {
	store := behavior.NewMemoryStore()
	ctx := context.Background()
	like := func(session string, ct catalog.ContentType, id string, minute int) {
		t.Helper()
		err := store.Append(ctx, behavior.Event{
			ID: session + "-" + id, Kind: behavior.KindInteraction, SessionID: session,
			Timestamp:   now.Add(time.Duration(minute) * time.Minute),
			Interaction: &behavior.Interaction{ContentType: ct, ContentID: id, Interaction: behavior.InteractionLike},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	for i, id := range []string{"alien", "aliens", "blade-runner", "the-thing", "notting-hill"} {
		like("sess-me", catalog.TypeMovie, id, i)
	}
	for i, id := range []string{"alien", "aliens", "blade-runner", "the-thing"} {
		like("sess-other", catalog.TypeMovie, id, i)
	}
	like("sess-other", catalog.TypeCharacter, "ripley", 5)

	analyzer := preference.NewAnalyzer(store, preference.DefaultConfig())
	index := similarity.NewIndex(store, analyzer, similarity.DefaultConfig())
	if _, err := index.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	me, err := analyzer.Analyze(ctx, "sess-me")
	if err != nil || me == nil {
		t.Fatalf("Analyze: %v", err)
	}
	matches, _ := index.FindSimilarSessions(ctx, me)
	if len(matches) != 1 || matches[0].Similarity <= 0.3 {
		t.Fatalf("matches = %+v", matches)
	}

	g := NewCollaborative(testCatalog(), index, recommend.CollaborativeConfig{FallbackFactor: 0.3}, recommend.PopularityConfig{})
	r := g.Generate(ctx, recommend.Query{Profile: me, Limit: 5})
	if got := ids(r.Candidates); !equalIDs(got, []string{"ripley"}) {
		t.Fatalf("candidates = %v, want [ripley]", got)
	}
	if r.Candidates[0].Algorithm != recommend.AlgorithmCollaborative {
		t.Errorf("algorithm = %s", r.Candidates[0].Algorithm)
	}
}

// An empty session gets the default blend and a list led by popular items.
func TestEngine_EmptySessionIsPopularityLed(t *testing.T) {
	store := testCatalog()
	cfg := recommend.DefaultConfig()
	analyzer := preference.NewAnalyzer(behavior.NewMemoryStore(), preference.DefaultConfig())
	recency := NewRecency(store, cfg.Recency)
	recency.SetClock(func() time.Time { return now })

	engine, err := recommend.NewEngine(cfg, analyzer,
		NewContentBased(store, cfg.Content),
		NewCollaborative(store, similarity.Disabled{}, cfg.Collaborative, cfg.Popularity),
		NewPopularity(store, cfg.Popularity),
		recency,
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := engine.Recommend(context.Background(), recommend.Request{SessionID: "sess-new", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Weights != recommend.DefaultWeights() {
		t.Errorf("weights = %+v, want defaults", resp.Weights)
	}
	if resp.Total != 3 {
		// popularity asked for ceil(10·0.2)=2, recency for 1
		t.Errorf("Total = %d, want 3", resp.Total)
	}
	if resp.Candidates[0].ContentID != "alien" || resp.Candidates[0].Score != 0.8 {
		t.Errorf("top = %+v", resp.Candidates[0])
	}
	for _, c := range resp.Candidates {
		if c.Algorithm != recommend.AlgorithmPopular {
			t.Errorf("%s algorithm = %s", c.ContentID, c.Algorithm)
		}
	}
}
