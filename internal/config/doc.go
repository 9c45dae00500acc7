// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package config provides centralized configuration management for ReelRank.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. Load validates the result and
returns the first invalid setting as an error.

# Configuration File

The file is read from CONFIG_PATH when set, otherwise from the first of
config.yaml, config.yml, /etc/reelrank/config.yaml and
/etc/reelrank/config.yml that exists:

	server:
	  port: 8080
	behavior:
	  store: badger
	  path: /data/behavior
	recommend:
	  weights:
	    content_based: 0.4
	    collaborative: 0.3
	    popularity: 0.2
	    recency: 0.1

# Environment Variables

Every key can be set with the REELRANK_ prefix, using "__" between
sections:

	REELRANK_BEHAVIOR__STORE=badger
	REELRANK_SIMILARITY__ENABLED=false
	REELRANK_FEEDBACK__RETENTION=720h

A few short aliases exist: REELRANK_LOG_LEVEL, REELRANK_LOG_FORMAT,
REELRANK_HTTP_HOST, REELRANK_HTTP_PORT, REELRANK_ENVIRONMENT,
REELRANK_DUCKDB_PATH, REELRANK_BEHAVIOR_STORE, REELRANK_CATALOG_SEED_FILE
and REELRANK_CORS_ORIGINS (comma-separated).

# Sections

  - server: listen address, timeouts, environment
  - logging: level, format, caller
  - database: DuckDB path and resources
  - behavior: event store, retention windows, session timeout, profile thresholds
  - catalog: catalog source, cache and circuit breaker
  - recommend: default weights, limits, adaptation rules, generator tuning
  - similarity: cross-session index
  - feedback: pipeline, retention, analytics thresholds
  - security: rate limiting, CORS, body size
*/
package config
