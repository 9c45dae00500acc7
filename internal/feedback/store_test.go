// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
)

// exerciseStore runs the Store contract against any implementation.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	newer := record("r2", "b", 1, ActionClick, 12_000)
	newer.Timestamp = now.Add(-time.Minute)
	older := record("r1", "a", 0, ActionView, 0)
	older.Timestamp = now.Add(-40 * 24 * time.Hour)
	for _, f := range []Feedback{newer, older} {
		if err := s.AppendFeedback(ctx, f); err != nil {
			t.Fatalf("AppendFeedback(%s): %v", f.ID, err)
		}
	}

	bad := record("r3", "c", 0, "like", 0)
	if err := s.AppendFeedback(ctx, bad); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("invalid action error = %v", err)
	}

	served := Served{
		RecommendationID: "r2",
		SessionID:        "sess-1",
		ContextType:      "general",
		ServedAt:         now.Add(-2 * time.Minute),
		Items: []ServedItem{
			{ContentID: "b", ContentType: catalog.TypeMovie, Position: 1, Algorithm: "hybrid", Strategy: "content"},
		},
	}
	if err := s.AppendServed(ctx, served); err != nil {
		t.Fatalf("AppendServed: %v", err)
	}

	all, err := s.ListFeedback(ctx, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != older.ID || all[1].ID != newer.ID {
		t.Fatalf("ListFeedback = %+v, want oldest first", all)
	}
	if all[1].DwellTime != 12_000 || !all[1].Timestamp.Equal(newer.Timestamp) {
		t.Errorf("round trip = %+v", all[1])
	}

	recent, _ := s.ListFeedback(ctx, now.Add(-time.Hour))
	if len(recent) != 1 || recent[0].ID != newer.ID {
		t.Errorf("since filter = %+v", recent)
	}

	gotServed, err := s.ListServed(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(gotServed) != 1 || len(gotServed[0].Items) != 1 || gotServed[0].Items[0].Algorithm != "hybrid" {
		t.Errorf("ListServed = %+v", gotServed)
	}

	n, err := s.Evict(ctx, now.Add(-DefaultRetention))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Evict removed %d, want 1", n)
	}
	if left, _ := s.ListFeedback(ctx, time.Time{}); len(left) != 1 {
		t.Errorf("after eviction %d records left", len(left))
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	err := s.AppendServed(ctx, Served{
		RecommendationID: "r1", ServedAt: now,
		Items: []ServedItem{{ContentID: "a", ContentType: catalog.TypeMovie}},
	})
	if err != nil {
		t.Fatal(err)
	}
	first, _ := s.ListServed(ctx, time.Time{})
	first[0].Items[0].ContentID = "mutated"
	second, _ := s.ListServed(ctx, time.Time{})
	if second[0].Items[0].ContentID != "a" {
		t.Error("ListServed leaked internal state")
	}
}

func TestFeedbackValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Feedback)
		wantErr error
	}{
		{"valid", func(*Feedback) {}, nil},
		{"unknown action", func(f *Feedback) { f.Action = "hover" }, ErrInvalidAction},
		{"missing recommendation", func(f *Feedback) { f.RecommendationID = "" }, ErrInvalidRecord},
		{"bad content type", func(f *Feedback) { f.ContentType = "podcast" }, ErrInvalidRecord},
		{"negative position", func(f *Feedback) { f.Position = -1 }, ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := record("r1", "a", 0, ActionClick, 0)
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
