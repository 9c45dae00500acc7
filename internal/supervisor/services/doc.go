// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package services adapts ReelRank's long-running work to suture.Service.
//
//   - HTTPServerService: the API listener with graceful shutdown
//   - ConsumerService: the watermill feedback router, rebuilt per restart
//   - PeriodicService: ticker loops for retention and index rebuilds
//
// Every service returns ctx.Err() on shutdown so suture does not count a
// clean stop as a failure.
package services
