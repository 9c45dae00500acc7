// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

//go:build integration

package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/reelrank/internal/config"
)

func TestNew_InMemory(t *testing.T) {
	db, err := New(&config.DatabaseConfig{Path: MemoryPath, MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	var n int
	if err := db.Conn().QueryRowContext(ctx, "SELECT 41 + 1").Scan(&n); err != nil {
		t.Fatalf("query error = %v", err)
	}
	if n != 42 {
		t.Errorf("SELECT 41 + 1 = %d", n)
	}
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "reelrank.duckdb")

	db, err := New(&config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestConnectionString(t *testing.T) {
	got := connectionString(&config.DatabaseConfig{Path: "/data/x.duckdb", Threads: 4})
	for _, want := range []string{"/data/x.duckdb?", "threads=4", "max_memory=1GB", "autoinstall_known_extensions=false"} {
		if !strings.Contains(got, want) {
			t.Errorf("connectionString() = %q, missing %q", got, want)
		}
	}
}
