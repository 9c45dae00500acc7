// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package algorithms implements the candidate generators behind the
// recommendation engine.
//
// Each generator implements recommend.Generator and reads the catalog
// through catalog.Store. None of them keeps state between calls, so all are
// safe for concurrent use.
//
// # Generators
//
// ContentBased needs a focal item (an item_detail request) and ranks the
// catalog by shared attributes:
//
//	score = 0.4·J(genres) + 0.25·J(directors) + 0.15·era + 0.2·J(tags)
//
// where J is Jaccard overlap and era is 1 for the same decade, 0.5 for an
// adjacent one. Every matching attribute contributes a reason.
//
// Collaborative asks a similarity.Finder for sessions resembling the
// current profile and sums preference × similarity over the items they
// liked and this session has not seen. With no neighbours it falls back to
// popular unseen items at a reduced score.
//
// Popularity orders by views plus votes and scores the top item 0.8.
//
// Recency orders by the last update and halves the score every 14 days.
//
// # Ordering
//
// Every ranking breaks ties by rating and then by id, so identical inputs
// always produce identical output.
//
// # Failure
//
// A generator returns recommend.Failed only when it cannot produce
// anything, for example when the catalog listing fails. A single missing
// catalog item drops that candidate and nothing more.
package algorithms
