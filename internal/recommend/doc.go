// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package recommend blends several candidate generators into one ranked
// list of movies, characters, reviews and guides.
//
// # Architecture
//
// A request flows through four steps:
//
//   - the session's behavior is turned into a preference.Profile;
//   - the WeightAdapter maps that profile (or its absence) to a WeightVector;
//   - each generator with a positive weight is asked for its share of twice
//     the requested limit, concurrently and under its own timeout;
//   - Merge deduplicates by content type and id, sorts and truncates.
//
// The generators live in the algorithms subpackage:
//
//   - content: attribute similarity to the item being viewed
//   - collaborative: likes of sessions with similar profiles
//   - popularity: views plus votes
//   - recency: exponential decay on the last update
//
// # Degradation
//
// A generator never fails a request. Panics are recovered, timeouts and
// errors are recorded in the response metadata, and the remaining
// generators fill the list. When all of them fail the response is empty.
// Cancelling the request context is the only way Recommend returns an
// error.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, analyzer,
//	    algorithms.NewContentBased(store, cfg.Content),
//	    algorithms.NewPopularity(store, cfg.Popularity),
//	)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Limit:       10,
//	    ContextType: recommend.ContextItemDetail,
//	    ContextID:   "movie-42",
//	})
//
// # Thread Safety
//
// The engine holds only immutable configuration and may be shared freely.
// Generators must be safe for concurrent use.
package recommend
