// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package main

import (
	"fmt"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/config"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/algorithms"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
	"github.com/tomtom215/reelrank/internal/recommend/similarity"
)

// RecommendComponents holds the engine and what the server wires around it.
type RecommendComponents struct {
	Engine   *recommend.Engine
	Analyzer *preference.Analyzer

	// Index is nil when cross-session similarity is disabled.
	Index *similarity.Index
}

func initRecommend(cfg *config.Config, st *storage) (*RecommendComponents, error) {
	analyzer := preference.NewAnalyzer(st.behavior, buildPreferenceConfig(&cfg.Behavior))

	var (
		finder similarity.Finder = similarity.Disabled{}
		index  *similarity.Index
	)
	if cfg.Similarity.Enabled {
		index = similarity.NewIndex(st.lister, analyzer, buildSimilarityConfig(&cfg.Similarity))
		finder = index
	}

	engineCfg := buildEngineConfig(&cfg.Recommend)
	var store catalog.Store = st.catalog
	engine, err := recommend.NewEngine(engineCfg, analyzer,
		algorithms.NewContentBased(store, engineCfg.Content),
		algorithms.NewCollaborative(store, finder, engineCfg.Collaborative, engineCfg.Popularity),
		algorithms.NewPopularity(store, engineCfg.Popularity),
		algorithms.NewRecency(store, engineCfg.Recency),
	)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	logging.Info().
		Interface("weights", engineCfg.Weights).
		Bool("similarity", cfg.Similarity.Enabled).
		Int("max_limit", engineCfg.Limits.MaxLimit).
		Msg("Recommendation engine initialized")

	return &RecommendComponents{Engine: engine, Analyzer: analyzer, Index: index}, nil
}

// buildEngineConfig maps server config onto the engine config. Adaptation
// shifts and content feature weights keep their engine defaults.
func buildEngineConfig(rc *config.RecommendConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()

	cfg.Weights = recommend.WeightVector{
		ContentBased:  rc.Weights.ContentBased,
		Collaborative: rc.Weights.Collaborative,
		Popularity:    rc.Weights.Popularity,
		Recency:       rc.Weights.Recency,
	}

	setInt(&cfg.Limits.DefaultLimit, rc.DefaultLimit)
	setInt(&cfg.Limits.MaxLimit, rc.MaxLimit)
	setInt(&cfg.Limits.ExpansionFactor, rc.ExpansionFactor)
	if rc.GeneratorTimeout > 0 {
		cfg.Limits.GeneratorTimeout = rc.GeneratorTimeout
	}

	setFloat(&cfg.Adaptation.HighEngagement, rc.HighEngagement)
	setFloat(&cfg.Adaptation.LowEngagement, rc.LowEngagement)
	setFloat(&cfg.Adaptation.SearchBoost, rc.SearchBoost)

	setFloat(&cfg.Content.MinSimilarity, rc.ContentMinSimilarity)
	setFloat(&cfg.Collaborative.FallbackFactor, rc.CollaborativeFallbackFactor)
	setFloat(&cfg.Popularity.BaseScore, rc.PopularityBaseScore)
	setFloat(&cfg.Recency.BaseScore, rc.RecencyBaseScore)
	if rc.RecencyHalfLife > 0 {
		cfg.Recency.HalfLife = rc.RecencyHalfLife
	}
	return cfg
}

func buildPreferenceConfig(bc *config.BehaviorConfig) preference.Config {
	cfg := preference.DefaultConfig()
	setInt(&cfg.MinEvents, bc.MinEvents)
	setFloat(&cfg.LikedThreshold, bc.LikedThreshold)
	return cfg
}

func buildSimilarityConfig(sc *config.SimilarityConfig) similarity.Config {
	cfg := similarity.DefaultConfig()
	setFloat(&cfg.Threshold, sc.Threshold)
	setInt(&cfg.MinInteractions, sc.MinInteractions)
	setInt(&cfg.MaxSessions, sc.MaxSessions)
	setInt(&cfg.MaxMatches, sc.MaxMatches)
	return cfg
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
