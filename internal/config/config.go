// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: REELRANK_ prefixed, "__" separates sections
//
// Example:
//
//	REELRANK_SERVER__PORT=8080
//	REELRANK_RECOMMEND__WEIGHTS__POPULARITY=0.3
//	REELRANK_LOG_LEVEL=debug   (short alias for logging.level)
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Behavior   BehaviorConfig   `koanf:"behavior"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Feedback   FeedbackConfig   `koanf:"feedback"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RequestTimeout bounds a whole recommendation request.
	RequestTimeout time.Duration `koanf:"request_timeout"`
	Environment    string        `koanf:"environment"` // development, production
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings. The database is opened only when
// the catalog or feedback store uses it.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // ":memory:" for an in-process database
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// BehaviorConfig holds the behavior store and session settings.
type BehaviorConfig struct {
	Store string `koanf:"store"` // memory, badger
	Path  string `koanf:"path"`  // badger directory

	PageViewRetention    time.Duration `koanf:"page_view_retention"`
	SearchRetention      time.Duration `koanf:"search_retention"`
	InteractionRetention time.Duration `koanf:"interaction_retention"`

	// SweepInterval is how often every kind is evicted in the background,
	// on top of the eviction after each write.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	SessionTimeout     time.Duration `koanf:"session_timeout"`
	MaxTrackedSessions int           `koanf:"max_tracked_sessions"`

	// Preference analysis thresholds.
	MinEvents      int     `koanf:"min_events"`
	LikedThreshold float64 `koanf:"liked_threshold"`
}

// CatalogConfig holds the catalog source and its guard settings.
type CatalogConfig struct {
	Source   string `koanf:"source"`    // file, duckdb
	SeedFile string `koanf:"seed_file"` // JSON items; also loaded into duckdb when set

	CallTimeout        time.Duration `koanf:"call_timeout"`
	CacheSize          int           `koanf:"cache_size"`
	CacheTTL           time.Duration `koanf:"cache_ttl"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// WeightsConfig is the cold-start strategy blend.
type WeightsConfig struct {
	ContentBased  float64 `koanf:"content_based"`
	Collaborative float64 `koanf:"collaborative"`
	Popularity    float64 `koanf:"popularity"`
	Recency       float64 `koanf:"recency"`
}

// RecommendConfig holds engine settings. It is mapped onto
// recommend.Config at startup.
type RecommendConfig struct {
	Weights WeightsConfig `koanf:"weights"`

	DefaultLimit     int           `koanf:"default_limit"`
	MaxLimit         int           `koanf:"max_limit"`
	ExpansionFactor  int           `koanf:"expansion_factor"`
	GeneratorTimeout time.Duration `koanf:"generator_timeout"`

	HighEngagement float64 `koanf:"high_engagement"`
	LowEngagement  float64 `koanf:"low_engagement"`
	SearchBoost    float64 `koanf:"search_boost"`

	ContentMinSimilarity        float64       `koanf:"content_min_similarity"`
	CollaborativeFallbackFactor float64       `koanf:"collaborative_fallback_factor"`
	PopularityBaseScore         float64       `koanf:"popularity_base_score"`
	RecencyBaseScore            float64       `koanf:"recency_base_score"`
	RecencyHalfLife             time.Duration `koanf:"recency_half_life"`
}

// SimilarityConfig holds the cross-session index settings.
type SimilarityConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Threshold       float64       `koanf:"threshold"`
	MinInteractions int           `koanf:"min_interactions"`
	MaxSessions     int           `koanf:"max_sessions"`
	MaxMatches      int           `koanf:"max_matches"`
	RebuildInterval time.Duration `koanf:"rebuild_interval"`
}

// FeedbackConfig holds the feedback pipeline and analytics settings.
type FeedbackConfig struct {
	Store         string        `koanf:"store"` // memory, duckdb
	Retention     time.Duration `koanf:"retention"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	BufferSize    int64         `koanf:"buffer_size"`

	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	// AnalyticsWindow is the default window for the analytics endpoint.
	AnalyticsWindow time.Duration `koanf:"analytics_window"`

	MinDiversity              float64 `koanf:"min_diversity"`
	MinConversion             float64 `koanf:"min_conversion"`
	MinCTR                    float64 `koanf:"min_ctr"`
	MinImpressionsForCTR      int     `koanf:"min_impressions_for_ctr"`
	MinContentTypeImpressions int     `koanf:"min_content_type_impressions"`
}

// SecurityConfig holds HTTP edge protection. There is no authentication:
// visitors are anonymous.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
