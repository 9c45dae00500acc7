// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package api provides the HTTP surface of ReelRank.

Routes:

	GET  /api/v1/recommendations                 ranked candidates for a session and context
	POST /api/v1/recommendations/feedback        view, click or dismiss on a served item (202)
	POST /api/v1/events/page-view                behavior events (202, returns the session id)
	POST /api/v1/events/search
	POST /api/v1/events/interaction
	GET  /api/v1/sessions/{sessionID}/profile    derived preference profile and weights
	GET  /api/v1/analytics/recommendations       effectiveness metrics and suggestions
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics                                Prometheus

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"requestId": "...", "timestamp": "...", "durationMs": 3}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "..."}, "meta": {...}}

The recommendations endpoint never answers 5xx because the recommender
failed; it degrades to an empty list. Event and feedback writes are
best-effort and answer 202 even when storage is unavailable.

Sessions are anonymous. Clients echo the id returned in the X-Session-ID
header or the sessionId field; an unknown or expired id starts a new
session.

Middleware order: request id, RealIP, Recoverer, CORS, then per route group
httprate per-IP limiting, security headers and Prometheus instrumentation.
Health probes skip rate limiting.
*/
package api
