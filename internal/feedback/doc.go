// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package feedback closes the loop between served recommendations and what
visitors did with them.

# Write Path

The API hands records to a Publisher, which encodes them with goccy/go-json
and publishes onto an in-process watermill GoChannel:

	recommend.feedback  view, click and dismiss records
	recommend.served    one entry per response actually returned

A Consumer router subscribes to both topics and persists into a Store
(MemoryStore or DuckDBStore). Publishing never fails the caller. Records
that cannot be decoded or persisted after the retries are counted in
feedback_errors_total and dropped.

# Read Path

Analyze computes click-through, view-through, per-strategy conversion
(0.7·CTR + 0.3·engagement), per-position and per-content-type rates, and
a diversity score over a rolling window. Suggest turns those metrics into
advisory suggestions for an operator. Neither changes the recommender's
weights.

Records older than the retention window (30 days by default) are removed
by the retention sweeper through Store.Evict.
*/
package feedback
