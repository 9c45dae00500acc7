// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package behavior

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/reelrank/internal/catalog"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()

	dir, err := os.MkdirTemp("", "badger-behavior-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(dir)
	})
	return db
}

type clockedStore interface {
	Store
	SessionLister
	SetClock(func() time.Time)
}

func storeFactories(t *testing.T) map[string]func() clockedStore {
	t.Helper()
	return map[string]func() clockedStore{
		"memory": func() clockedStore { return NewMemoryStore() },
		"badger": func() clockedStore {
			// long retention so badger TTLs do not interfere with test timestamps
			ret := Retention{KindPageView: 24 * 365 * 100 * time.Hour, KindSearch: 24 * 365 * 100 * time.Hour, KindInteraction: 24 * 365 * 100 * time.Hour}
			return NewBadgerStore(createTestBadgerDB(t), ret)
		},
	}
}

func pageView(session string, at time.Time, entity string) Event {
	return Event{
		ID:        fmt.Sprintf("%s-%d", entity, at.UnixNano()),
		Kind:      KindPageView,
		SessionID: session,
		Timestamp: at,
		PageView: &PageView{
			PageType:    "movie",
			EntityID:    entity,
			ContentType: catalog.TypeMovie,
			DwellTime:   30000,
			ScrollDepth: 50,
		},
	}
}

func TestStore_AppendQueryNewestFirst(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			ctx := context.Background()

			// appended out of order on purpose
			for _, offset := range []int{2, 0, 1} {
				at := baseTime.Add(time.Duration(offset) * time.Minute)
				if err := s.Append(ctx, pageView("sess-a", at, fmt.Sprintf("movie-%d", offset))); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			if err := s.Append(ctx, pageView("sess-b", baseTime, "movie-9")); err != nil {
				t.Fatalf("Append: %v", err)
			}

			all, err := s.Query(ctx, "sess-a", KindPageView, 0)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("Query returned %d events, want 3", len(all))
			}
			for i, want := range []string{"movie-2", "movie-1", "movie-0"} {
				if all[i].PageView.EntityID != want {
					t.Errorf("event %d = %s, want %s", i, all[i].PageView.EntityID, want)
				}
			}

			limited, _ := s.Query(ctx, "sess-a", KindPageView, 2)
			if len(limited) != 2 || limited[0].PageView.EntityID != "movie-2" {
				t.Errorf("limited query = %+v", limited)
			}

			other, _ := s.Query(ctx, "sess-a", KindSearch, 0)
			if len(other) != 0 {
				t.Errorf("expected no search events, got %d", len(other))
			}
		})
	}
}

func TestStore_EvictByAge(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			ctx := context.Background()
			s.SetClock(func() time.Time { return baseTime.Add(10 * 24 * time.Hour) })

			old := pageView("sess-a", baseTime, "movie-old")
			recent := pageView("sess-a", baseTime.Add(9*24*time.Hour), "movie-new")
			gone := pageView("sess-b", baseTime.Add(time.Hour), "movie-gone")
			for _, e := range []Event{old, recent, gone} {
				if err := s.Append(ctx, e); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			n, err := s.Evict(ctx, KindPageView, 7*24*time.Hour)
			if err != nil {
				t.Fatalf("Evict: %v", err)
			}
			if n != 2 {
				t.Errorf("Evict removed %d, want 2", n)
			}

			left, _ := s.Query(ctx, "sess-a", KindPageView, 0)
			if len(left) != 1 || left[0].PageView.EntityID != "movie-new" {
				t.Errorf("remaining = %+v", left)
			}

			sessions, _ := s.Sessions(ctx, KindPageView)
			if len(sessions) != 1 || sessions[0] != "sess-a" {
				t.Errorf("Sessions() = %v, want [sess-a]", sessions)
			}

			// nothing left to evict
			if n, _ := s.Evict(ctx, KindPageView, 7*24*time.Hour); n != 0 {
				t.Errorf("second Evict removed %d", n)
			}
		})
	}
}

func TestStore_EvictIsPerKind(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			ctx := context.Background()
			s.SetClock(func() time.Time { return baseTime.Add(20 * 24 * time.Hour) })

			if err := s.Append(ctx, pageView("sess-a", baseTime, "movie-1")); err != nil {
				t.Fatal(err)
			}
			fav := Event{
				ID: "fav-1", Kind: KindInteraction, SessionID: "sess-a", Timestamp: baseTime,
				Interaction: &Interaction{ContentType: catalog.TypeMovie, ContentID: "movie-1", Interaction: InteractionFavorite},
			}
			if err := s.Append(ctx, fav); err != nil {
				t.Fatal(err)
			}

			if _, err := s.Evict(ctx, KindPageView, 7*24*time.Hour); err != nil {
				t.Fatal(err)
			}

			pv, _ := s.Query(ctx, "sess-a", KindPageView, 0)
			in, _ := s.Query(ctx, "sess-a", KindInteraction, 0)
			if len(pv) != 0 {
				t.Errorf("page views should be evicted, got %d", len(pv))
			}
			if len(in) != 1 {
				t.Errorf("interaction should survive page view eviction, got %d", len(in))
			}
		})
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			bad := pageView("has/slash", baseTime, "movie-1")
			if err := s.Append(context.Background(), bad); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestStore_QueryReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Append(ctx, pageView("sess-a", baseTime, "movie-1")); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Query(ctx, "sess-a", KindPageView, 0)
	got[0].PageView.EntityID = "tampered"

	again, _ := s.Query(ctx, "sess-a", KindPageView, 0)
	if again[0].PageView.EntityID != "movie-1" {
		t.Error("stored event was mutated through a query result")
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		ok    bool
	}{
		{"valid page view", pageView("s1", baseTime, "m1"), true},
		{"scroll out of range", func() Event {
			e := pageView("s1", baseTime, "m1")
			e.PageView.ScrollDepth = 120
			return e
		}(), false},
		{"missing timestamp", func() Event {
			e := pageView("s1", baseTime, "m1")
			e.Timestamp = time.Time{}
			return e
		}(), false},
		{"valid search", Event{Kind: KindSearch, SessionID: "s1", Timestamp: baseTime, Search: &Search{Query: "heist", ResultCount: 4}}, true},
		{"empty search", Event{Kind: KindSearch, SessionID: "s1", Timestamp: baseTime, Search: &Search{}}, false},
		{"bad interaction", Event{Kind: KindInteraction, SessionID: "s1", Timestamp: baseTime, Interaction: &Interaction{ContentType: catalog.TypeMovie, ContentID: "m1", Interaction: "bookmark"}}, false},
		{"payload mismatch", Event{Kind: KindInteraction, SessionID: "s1", Timestamp: baseTime, Search: &Search{Query: "x"}}, false},
		{"unknown kind", Event{Kind: "scroll", SessionID: "s1", Timestamp: baseTime}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.event.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestRetentionFor(t *testing.T) {
	t.Parallel()

	r := Retention{KindPageView: time.Hour}
	if r.For(KindPageView) != time.Hour {
		t.Errorf("override ignored")
	}
	if r.For(KindInteraction) != 30*24*time.Hour {
		t.Errorf("default interaction retention = %v", r.For(KindInteraction))
	}
	d := DefaultRetention()
	if !(d[KindPageView] < d[KindSearch] && d[KindSearch] < d[KindInteraction]) {
		t.Errorf("expected page views to expire first: %v", d)
	}
}
