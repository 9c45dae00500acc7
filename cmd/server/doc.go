// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package main is the entry point for the ReelRank server.

ReelRank serves session-scoped recommendations for anonymous visitors of a
content site. Each request blends four candidate generators (content-based,
collaborative, popularity and recency) with weights adapted to the
visitor's engagement in the current session.

# Application Architecture

	reelrank
	├── data-layer
	│   ├── behavior-retention
	│   ├── feedback-retention
	│   └── similarity-index     (similarity.enabled)
	├── messaging-layer
	│   └── feedback-consumer    (watermill gochannel router)
	└── api-layer
	    └── http-server          (chi)

Startup order:

 1. Configuration: koanf defaults, then config.yaml, then REELRANK_* env
 2. Logging: zerolog, JSON or console
 3. Storage: behavior (memory or badger), DuckDB when the catalog or
    feedback store needs it, the catalog behind a breaker and cache
 4. Engine: preference analyzer, optional similarity index, generators
 5. Feedback pipeline: in-process pub/sub with a supervised consumer
 6. HTTP API and the supervisor tree

# Configuration

	REELRANK_SERVER__PORT=8080
	REELRANK_LOG_LEVEL=debug
	REELRANK_BEHAVIOR__STORE=badger
	REELRANK_BEHAVIOR__PATH=/data/behavior
	REELRANK_CATALOG__SOURCE=duckdb
	REELRANK_CATALOG__SEED_FILE=/data/catalog.json
	REELRANK_FEEDBACK__STORE=duckdb
	REELRANK_DATABASE__PATH=/data/reelrank.duckdb
	REELRANK_SIMILARITY__ENABLED=true

A config file is read from CONFIG_PATH, ./config.yaml or
/etc/reelrank/config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
server.shutdown_timeout, the feedback router finishes in-flight messages,
then the stores are closed.
*/
package main
