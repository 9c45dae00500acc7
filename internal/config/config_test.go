// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file and runs from an empty
// directory so no local config.yaml leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Behavior.PageViewRetention != 7*24*time.Hour ||
		cfg.Behavior.SearchRetention != 14*24*time.Hour ||
		cfg.Behavior.InteractionRetention != 30*24*time.Hour {
		t.Errorf("retention defaults = %+v", cfg.Behavior)
	}
	if cfg.Behavior.SessionTimeout != 30*time.Minute {
		t.Errorf("SessionTimeout = %v, want 30m", cfg.Behavior.SessionTimeout)
	}
	w := cfg.Recommend.Weights
	if w != (WeightsConfig{ContentBased: 0.4, Collaborative: 0.3, Popularity: 0.2, Recency: 0.1}) {
		t.Errorf("weights = %+v", w)
	}
	if cfg.Recommend.MaxLimit != 50 || cfg.Recommend.DefaultLimit != 10 {
		t.Errorf("limits = %d/%d", cfg.Recommend.DefaultLimit, cfg.Recommend.MaxLimit)
	}
	if cfg.Similarity.Threshold != 0.3 || cfg.Similarity.MinInteractions != 3 {
		t.Errorf("similarity = %+v", cfg.Similarity)
	}
	if cfg.Feedback.Retention != 30*24*time.Hour || cfg.Feedback.MinDiversity != 0.6 {
		t.Errorf("feedback = %+v", cfg.Feedback)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, defaultConfig()) {
		t.Errorf("Load() without overrides differs from defaults:\n%+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)

	yaml := `
server:
  port: 9090
behavior:
  store: badger
  path: /tmp/behavior
recommend:
  weights:
    content_based: 0.25
    collaborative: 0.25
    popularity: 0.25
    recency: 0.25
  generator_timeout: 750ms
similarity:
  enabled: false
`
	path := filepath.Join(dir, "reelrank.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("REELRANK_SERVER__PORT", "7070")
	t.Setenv("REELRANK_LOG_LEVEL", "debug")
	t.Setenv("REELRANK_FEEDBACK__RETENTION", "240h")
	t.Setenv("REELRANK_CORS_ORIGINS", "https://films.example, https://admin.example")
	t.Setenv("UNPREFIXED_PORT", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
	if cfg.Behavior.Store != "badger" || cfg.Behavior.Path != "/tmp/behavior" {
		t.Errorf("behavior = %+v", cfg.Behavior)
	}
	if cfg.Recommend.Weights.Recency != 0.25 || cfg.Recommend.GeneratorTimeout != 750*time.Millisecond {
		t.Errorf("recommend = %+v", cfg.Recommend)
	}
	if cfg.Similarity.Enabled {
		t.Error("similarity should be disabled by the file")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("alias not applied: level = %q", cfg.Logging.Level)
	}
	if cfg.Feedback.Retention != 240*time.Hour {
		t.Errorf("feedback retention = %v", cfg.Feedback.Retention)
	}
	want := []string{"https://films.example", "https://admin.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	// untouched defaults survive
	if cfg.Catalog.CacheTTL != 5*time.Minute {
		t.Errorf("catalog cache ttl = %v", cfg.Catalog.CacheTTL)
	}
}

func TestLoad_InvalidFails(t *testing.T) {
	isolate(t)
	t.Setenv("REELRANK_RECOMMEND__WEIGHTS__POPULARITY", "0.9")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "sum to 1") {
		t.Errorf("Load() error = %v, want weight sum error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad environment", func(c *Config) { c.Server.Environment = "staging" }, "server.environment"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"badger without path", func(c *Config) { c.Behavior.Store = "badger"; c.Behavior.Path = "" }, "behavior.path"},
		{"unknown behavior store", func(c *Config) { c.Behavior.Store = "redis" }, "behavior.store"},
		{"zero retention", func(c *Config) { c.Behavior.SearchRetention = 0 }, "retention"},
		{"liked threshold too high", func(c *Config) { c.Behavior.LikedThreshold = 101 }, "liked_threshold"},
		{"file catalog without seed", func(c *Config) { c.Catalog.SeedFile = "" }, "seed_file"},
		{"negative weight", func(c *Config) { c.Recommend.Weights.Recency = -0.1 }, "recommend.weights"},
		{"max below default", func(c *Config) { c.Recommend.MaxLimit = 5 }, "limits"},
		{"inverted engagement", func(c *Config) { c.Recommend.LowEngagement = 80 }, "low_engagement"},
		{"similarity threshold", func(c *Config) { c.Similarity.Threshold = 2 }, "similarity.threshold"},
		{"disabled similarity skips checks", func(c *Config) { c.Similarity.Enabled = false; c.Similarity.Threshold = 2 }, ""},
		{"feedback store", func(c *Config) { c.Feedback.Store = "kafka" }, "feedback.store"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "cors_origins"},
		{"rate limit disabled", func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.RateLimitReqs = 0 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"REELRANK_SERVER__PORT":                "server.port",
		"REELRANK_RECOMMEND__WEIGHTS__RECENCY": "recommend.weights.recency",
		"REELRANK_BEHAVIOR__SESSION_TIMEOUT":   "behavior.session_timeout",
		"REELRANK_LOG_LEVEL":                   "logging.level",
		"REELRANK_HTTP_PORT":                   "server.port",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
