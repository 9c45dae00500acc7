// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/reelrank/internal/config"
	"github.com/tomtom215/reelrank/internal/feedback"
	"github.com/tomtom215/reelrank/internal/recommend"
)

const seedJSON = `[
  {"id": "movie-1", "type": "movie", "title": "Heat", "url": "/movies/heat", "genres": ["crime"], "viewCount": 900},
  {"id": "movie-2", "type": "movie", "title": "Ronin", "url": "/movies/ronin", "genres": ["crime", "action"], "viewCount": 400},
  {"id": "guide-1", "type": "guide", "title": "Heist films", "url": "/guides/heist", "viewCount": 100}
]`

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))

	seed := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(seed, []byte(seedJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REELRANK_CATALOG__SEED_FILE", seed)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestBuildEngineConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		cfg := buildEngineConfig(&config.RecommendConfig{
			Weights: config.WeightsConfig{ContentBased: 0.4, Collaborative: 0.3, Popularity: 0.2, Recency: 0.1},
		})
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if cfg.Limits != recommend.DefaultConfig().Limits {
			t.Errorf("zero overrides changed limits: %+v", cfg.Limits)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := buildEngineConfig(&config.RecommendConfig{
			Weights:          config.WeightsConfig{ContentBased: 0.25, Collaborative: 0.25, Popularity: 0.25, Recency: 0.25},
			DefaultLimit:     8,
			MaxLimit:         40,
			GeneratorTimeout: 300 * time.Millisecond,
			SearchBoost:      0.05,
			RecencyHalfLife:  48 * time.Hour,
		})
		if cfg.Limits.DefaultLimit != 8 || cfg.Limits.MaxLimit != 40 {
			t.Errorf("limits = %+v", cfg.Limits)
		}
		if cfg.Limits.GeneratorTimeout != 300*time.Millisecond {
			t.Errorf("GeneratorTimeout = %v", cfg.Limits.GeneratorTimeout)
		}
		if cfg.Adaptation.SearchBoost != 0.05 {
			t.Errorf("SearchBoost = %v", cfg.Adaptation.SearchBoost)
		}
		if cfg.Recency.HalfLife != 48*time.Hour {
			t.Errorf("HalfLife = %v", cfg.Recency.HalfLife)
		}
		if cfg.Weights.Recency != 0.25 {
			t.Errorf("Weights = %+v", cfg.Weights)
		}
	})
}

func TestFeedbackThresholds(t *testing.T) {
	got := feedbackThresholds(&config.FeedbackConfig{MinCTR: 0.2})
	want := feedback.DefaultThresholds()
	want.MinCTR = 0.2
	if got != want {
		t.Errorf("feedbackThresholds() = %+v, want %+v", got, want)
	}
}

func TestInitStorageAndRecommend(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	st, err := initStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("initStorage() error = %v", err)
	}
	t.Cleanup(st.Close)

	if st.db != nil || st.badger != nil {
		t.Error("memory configuration should not open duckdb or badger")
	}

	rc, err := initRecommend(cfg, st)
	if err != nil {
		t.Fatalf("initRecommend() error = %v", err)
	}

	resp, err := rc.Engine.Recommend(ctx, recommend.Request{Limit: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates) > 2 {
		t.Fatalf("got %d candidates, want 1..2", len(resp.Candidates))
	}
	if !resp.Metadata.ColdStart {
		t.Error("a request without a session should be a cold start")
	}
}

func TestInitStorage_BadSeed(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Catalog.SeedFile = filepath.Join(t.TempDir(), "absent.json")
	if _, err := initStorage(context.Background(), cfg); err == nil {
		t.Error("initStorage() should fail on a missing seed file")
	}
}
