// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package preference

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/catalog"
)

var t0 = time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC) // a Monday

func pv(id string, ct catalog.ContentType, dwellMs int64, scroll float64, at time.Time) behavior.Event {
	return behavior.Event{
		ID: "pv-" + id + at.Format("150405"), Kind: behavior.KindPageView, SessionID: "sess-1", Timestamp: at,
		PageView: &behavior.PageView{PageType: string(ct), EntityID: id, ContentType: ct, DwellTime: dwellMs, ScrollDepth: scroll},
	}
}

func act(id string, ct catalog.ContentType, kind behavior.InteractionKind, at time.Time) behavior.Event {
	return behavior.Event{
		ID: "in-" + id + string(kind), Kind: behavior.KindInteraction, SessionID: "sess-1", Timestamp: at,
		Interaction: &behavior.Interaction{ContentType: ct, ContentID: id, Interaction: kind},
	}
}

func search(q string, clicked []string, at time.Time) behavior.Event {
	return behavior.Event{
		ID: "s-" + q, Kind: behavior.KindSearch, SessionID: "sess-1", Timestamp: at,
		Search: &behavior.Search{Query: q, ResultCount: 5, ClickedResults: clicked},
	}
}

func group(events ...behavior.Event) map[behavior.Kind][]behavior.Event {
	out := make(map[behavior.Kind][]behavior.Event)
	for _, e := range events {
		out[e.Kind] = append(out[e.Kind], e)
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuild_BelowMinimum(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if p := Build("sess-1", nil, cfg); p != nil {
		t.Errorf("expected nil profile for no events")
	}
	events := group(pv("m1", catalog.TypeMovie, 1000, 10, t0), pv("m2", catalog.TypeMovie, 1000, 10, t0))
	if p := Build("sess-1", events, cfg); p != nil {
		t.Errorf("expected nil profile for 2 events, got %+v", p)
	}
}

func TestBuild_ItemScores(t *testing.T) {
	t.Parallel()

	events := group(
		// 60s dwell + 80% scroll -> 68; second view is weaker and ignored
		pv("m1", catalog.TypeMovie, 60000, 80, t0),
		pv("m1", catalog.TypeMovie, 5000, 10, t0.Add(time.Minute)),
		act("m1", catalog.TypeMovie, behavior.InteractionLike, t0.Add(2*time.Minute)),
		act("m1", catalog.TypeMovie, behavior.InteractionFavorite, t0.Add(3*time.Minute)),
		// interaction only, 10 points: below the liked threshold
		act("c1", catalog.TypeCharacter, behavior.InteractionTagClick, t0.Add(4*time.Minute)),
		// short view, no entity: counted but no item
		behavior.Event{ID: "pv-home", Kind: behavior.KindPageView, SessionID: "sess-1", Timestamp: t0, PageView: &behavior.PageView{PageType: "home", DwellTime: 2000}},
	)

	p := Build("sess-1", events, DefaultConfig())
	if p == nil {
		t.Fatal("expected a profile")
	}
	if p.PageViews != 3 || p.Interactions != 3 || p.Searches != 0 {
		t.Errorf("counts = %d/%d/%d", p.PageViews, p.Searches, p.Interactions)
	}

	want := []ItemScore{
		{ContentType: catalog.TypeMovie, ContentID: "m1", Score: 100}, // 68 + 15 + 30 capped
		{ContentType: catalog.TypeCharacter, ContentID: "c1", Score: 10},
	}
	if !reflect.DeepEqual(p.Items, want) {
		t.Errorf("Items = %+v, want %+v", p.Items, want)
	}
	if len(p.Liked) != 1 || p.Liked[0].ContentID != "m1" {
		t.Errorf("Liked = %+v", p.Liked)
	}
	if !approx(p.Affinity[catalog.TypeMovie], 100) || !approx(p.Affinity[catalog.TypeCharacter], 10) {
		t.Errorf("Affinity = %v", p.Affinity)
	}
	if p.TopContentType() != catalog.TypeMovie {
		t.Errorf("TopContentType = %s", p.TopContentType())
	}
	if !p.HasSeen("m1") || !p.HasSeen("c1") || p.HasSeen("m2") {
		t.Errorf("Seen = %v", p.Seen)
	}
}

func TestBuild_SearchPatterns(t *testing.T) {
	t.Parallel()

	events := group(
		search("The Space Horror", []string{"m9"}, t0),
		search("space western", nil, t0.Add(time.Minute)),
		search("a horror of space", nil, t0.Add(2*time.Minute)),
	)
	p := Build("sess-1", events, DefaultConfig())
	if p == nil {
		t.Fatal("expected a profile")
	}

	want := []SearchPattern{
		{Keyword: "space", Frequency: 3, SuccessRate: 1.0 / 3},
		{Keyword: "horror", Frequency: 2, SuccessRate: 0.5},
		{Keyword: "western", Frequency: 1, SuccessRate: 0},
	}
	if len(p.SearchPatterns) != len(want) {
		t.Fatalf("patterns = %+v", p.SearchPatterns)
	}
	for i, w := range want {
		got := p.SearchPatterns[i]
		if got.Keyword != w.Keyword || got.Frequency != w.Frequency || !approx(got.SuccessRate, w.SuccessRate) {
			t.Errorf("pattern %d = %+v, want %+v", i, got, w)
		}
	}
	if !p.HasSeen("m9") {
		t.Error("clicked search results should count as seen")
	}
	if p.Engagement != 0 {
		t.Errorf("search-only engagement = %v, want 0", p.Engagement)
	}
}

func TestBuild_TimeHistograms(t *testing.T) {
	t.Parallel()

	local := time.FixedZone("UTC+2", 2*3600)
	events := group(
		pv("m1", catalog.TypeMovie, 1000, 0, t0.In(local)),
		pv("m2", catalog.TypeMovie, 1000, 0, t0.Add(time.Hour)),
		pv("m3", catalog.TypeMovie, 1000, 0, t0.Add(5*time.Hour)), // Tuesday 01:00
	)
	p := Build("sess-1", events, DefaultConfig())

	if p.HourHistogram[20] != 1 || p.HourHistogram[21] != 1 || p.HourHistogram[1] != 1 {
		t.Errorf("HourHistogram = %v", p.HourHistogram)
	}
	if p.DayHistogram[time.Monday] != 2 || p.DayHistogram[time.Tuesday] != 1 {
		t.Errorf("DayHistogram = %v", p.DayHistogram)
	}
	if !reflect.DeepEqual(p.ActiveHours(), []int{1, 20, 21}) {
		t.Errorf("ActiveHours = %v", p.ActiveHours())
	}
	if !p.LastActivity.Equal(t0.Add(5 * time.Hour)) {
		t.Errorf("LastActivity = %v", p.LastActivity)
	}
}

func TestEngagement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		pageViews    int
		interactions int
		dwellMs      float64
		scroll       float64
		want         float64
	}{
		{"nothing", 0, 0, 0, 0, 0},
		{"two minute average dwell", 1, 0, 120000, 0, 50},
		{"dwell caps at 50", 1, 0, 600000, 0, 50},
		{"full scroll", 2, 0, 0, 200, 30},
		{"one interaction per view", 2, 2, 0, 0, 20},
		{"everything", 1, 3, 240000, 100, 100},
		{"interactions without views", 0, 4, 0, 0, 20},
		{"mixed", 2, 1, 120000, 100, 25 + 15 + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Engagement(tt.pageViews, tt.interactions, tt.dwellMs, tt.scroll); !approx(got, tt.want) {
				t.Errorf("Engagement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := Tokenize("The Lord of the Rings: Return of the King, 2003 - king")
	want := []string{"lord", "rings", "return", "king", "2003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
	if len(Tokenize("a I x")) != 0 {
		t.Error("single characters should be dropped")
	}
}

func TestAnalyzer_Idempotent(t *testing.T) {
	store := behavior.NewMemoryStore()
	ctx := context.Background()
	for _, e := range []behavior.Event{
		pv("m1", catalog.TypeMovie, 45000, 60, t0),
		pv("g1", catalog.TypeGuide, 90000, 100, t0.Add(time.Minute)),
		act("m1", catalog.TypeMovie, behavior.InteractionShare, t0.Add(2*time.Minute)),
		search("director commentary", []string{"r1"}, t0.Add(3*time.Minute)),
	} {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	a := NewAnalyzer(store, DefaultConfig())
	first, err := a.Analyze(ctx, "sess-1")
	if err != nil || first == nil {
		t.Fatalf("Analyze: %v %v", first, err)
	}
	second, err := a.Analyze(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("profiles differ:\n%+v\n%+v", first, second)
	}

	if other, err := a.Analyze(ctx, "sess-unknown"); err != nil || other != nil {
		t.Errorf("unknown session should have no profile, got %+v %v", other, err)
	}
	if p, _ := a.Analyze(ctx, ""); p != nil {
		t.Error("empty session id should have no profile")
	}
}

func TestBuild_AffinityStableWithFractionalScores(t *testing.T) {
	t.Parallel()

	var views []behavior.Event
	for i, dwell := range []int64{100, 200, 300, 700, 1100, 1300} {
		id := string(rune('a' + i))
		views = append(views, pv("m-"+id, catalog.TypeMovie, dwell, 0, t0.Add(time.Duration(i)*time.Minute)))
		views = append(views, pv("r-"+id, catalog.TypeReview, dwell+50, 3, t0.Add(time.Duration(i)*time.Minute+time.Second)))
	}
	views = append(views, pv("g1", catalog.TypeGuide, 90000, 0, t0.Add(time.Hour)))
	events := map[behavior.Kind][]behavior.Event{behavior.KindPageView: views}

	first := Build("sess-1", events, DefaultConfig())
	if first == nil {
		t.Fatal("Build() = nil")
	}
	if first.Affinity[catalog.TypeGuide] != 100 {
		t.Errorf("guide affinity = %v, want 100", first.Affinity[catalog.TypeGuide])
	}
	for i := 0; i < 200; i++ {
		if again := Build("sess-1", events, DefaultConfig()); !reflect.DeepEqual(first, again) {
			t.Fatalf("build %d differs:\n%v\n%v", i, first.Affinity, again.Affinity)
		}
	}
}
