// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelrank/config.yaml",
	"/etc/reelrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix is stripped from every environment variable read.
const EnvPrefix = "REELRANK_"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  5 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/reelrank.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Behavior: BehaviorConfig{
			Store:                "memory",
			Path:                 "/data/behavior",
			PageViewRetention:    7 * 24 * time.Hour,
			SearchRetention:      14 * 24 * time.Hour,
			InteractionRetention: 30 * 24 * time.Hour,
			SweepInterval:        10 * time.Minute,
			SessionTimeout:       30 * time.Minute,
			MaxTrackedSessions:   100_000,
			MinEvents:            3,
			LikedThreshold:       15,
		},
		Catalog: CatalogConfig{
			Source:             "file",
			SeedFile:           "catalog.json",
			CallTimeout:        500 * time.Millisecond,
			CacheSize:          10_000,
			CacheTTL:           5 * time.Minute,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Recommend: RecommendConfig{
			Weights: WeightsConfig{
				ContentBased:  0.4,
				Collaborative: 0.3,
				Popularity:    0.2,
				Recency:       0.1,
			},
			DefaultLimit:                10,
			MaxLimit:                    50,
			ExpansionFactor:             2,
			GeneratorTimeout:            2 * time.Second,
			HighEngagement:              70,
			LowEngagement:               30,
			SearchBoost:                 0.05,
			ContentMinSimilarity:        0.05,
			CollaborativeFallbackFactor: 0.3,
			PopularityBaseScore:         0.8,
			RecencyBaseScore:            0.6,
			RecencyHalfLife:             14 * 24 * time.Hour,
		},
		Similarity: SimilarityConfig{
			Enabled:         true,
			Threshold:       0.3,
			MinInteractions: 3,
			MaxSessions:     5000,
			MaxMatches:      50,
			RebuildInterval: 5 * time.Minute,
		},
		Feedback: FeedbackConfig{
			Store:                     "memory",
			Retention:                 30 * 24 * time.Hour,
			SweepInterval:             time.Hour,
			BufferSize:                256,
			RetryMaxRetries:           3,
			RetryInitialInterval:      100 * time.Millisecond,
			CloseTimeout:              10 * time.Second,
			AnalyticsWindow:           7 * 24 * time.Hour,
			MinDiversity:              0.6,
			MinConversion:             0.1,
			MinCTR:                    0.02,
			MinImpressionsForCTR:      100,
			MinContentTypeImpressions: 20,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			MaxBodyBytes:      64 << 10,
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Built-in defaults
//  2. Config file (optional)
//  3. Environment variables
//
// The configuration is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, otherwise the first
// existing default path, otherwise "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists keys that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envAliases are short names kept for the settings operators touch most.
var envAliases = map[string]string{
	"log_level":         "logging.level",
	"log_format":        "logging.format",
	"http_host":         "server.host",
	"http_port":         "server.port",
	"environment":       "server.environment",
	"duckdb_path":       "database.path",
	"behavior_store":    "behavior.store",
	"catalog_seed_file": "catalog.seed_file",
	"cors_origins":      "security.cors_origins",
}

// envTransformFunc maps REELRANK_SECTION__FIELD to section.field.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if mapped, ok := envAliases[key]; ok {
		return mapped
	}
	return strings.ReplaceAll(key, "__", ".")
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
