// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

//go:build integration

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory DuckDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDuckDBStore_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewDuckDBStore(db)
	ctx := context.Background()

	if err := store.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	items := testItems()
	items[0].UpdatedAt = updated
	if err := store.Upsert(ctx, items...); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	it, err := store.Get(ctx, "movie-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if it.Title != "Heat" || len(it.Genres) != 1 || it.Genres[0] != "crime" {
		t.Errorf("unexpected item: %+v", it)
	}
	if !it.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", it.UpdatedAt, updated)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	movies, err := store.List(ctx, []ContentType{TypeMovie})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movies) != 2 || movies[0].ID != "movie-1" {
		t.Errorf("List(movie) = %+v", movies)
	}

	// replace keeps a single row
	items[1].Title = "Alien (Director's Cut)"
	if err := store.Upsert(ctx, items[1]); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}
	all, _ := store.List(ctx, nil)
	if len(all) != 4 {
		t.Errorf("List(nil) = %d items, want 4", len(all))
	}
}
