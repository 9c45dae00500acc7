// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelrank/internal/feedback"
)

// maxAnalyticsWindow bounds the window parameter to the feedback retention
// horizon; older records are already evicted.
const maxAnalyticsWindow = 90 * 24 * time.Hour

type analyticsPayload struct {
	Metrics     feedback.Metrics      `json:"metrics"`
	Suggestions []feedback.Suggestion `json:"suggestions"`
	Thresholds  feedback.Thresholds   `json:"thresholds"`
}

// RecommendationAnalytics handles GET /api/v1/analytics/recommendations
//
// Query parameters: window, a Go duration such as 24h or 168h. Defaults to
// the configured analytics window.
func (h *Handler) RecommendationAnalytics(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Feedback == nil {
		rw.ServiceUnavailable("Feedback analytics are not available", nil)
		return
	}

	window := h.deps.AnalyticsWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > maxAnalyticsWindow {
			rw.BadRequest("window must be a positive duration of at most 2160h")
			return
		}
		window = d
	}

	now := h.now().UTC()
	since := now.Add(-window)

	records, err := h.deps.Feedback.ListFeedback(r.Context(), since)
	if err != nil {
		rw.InternalError("Failed to load feedback", err)
		return
	}
	served, err := h.deps.Feedback.ListServed(r.Context(), since)
	if err != nil {
		rw.InternalError("Failed to load served recommendations", err)
		return
	}

	m := feedback.Analyze(records, served, window, now)
	suggestions := feedback.Suggest(m, h.deps.Thresholds)
	if suggestions == nil {
		suggestions = []feedback.Suggestion{}
	}
	rw.Success(analyticsPayload{
		Metrics:     m,
		Suggestions: suggestions,
		Thresholds:  h.deps.Thresholds,
	})
}
