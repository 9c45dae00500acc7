// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"net/http"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/feedback"
)

type feedbackRequest struct {
	RecommendationID string `json:"recommendationId" validate:"required,max=64"`
	SessionID        string `json:"sessionId" validate:"omitempty,max=64"`
	ContentID        string `json:"contentId" validate:"required,max=256"`
	ContentType      string `json:"contentType" validate:"required,oneof=movie character review guide"`
	Position         int    `json:"position" validate:"gte=0,lte=1000"`
	Action           string `json:"action" validate:"required,oneof=view click dismiss"`
	Algorithm        string `json:"algorithm" validate:"omitempty,max=32"`
	DwellTime        int64  `json:"dwellTime" validate:"gte=0"`
}

type feedbackAccepted struct {
	RecommendationID string `json:"recommendationId"`
	Accepted         bool   `json:"accepted"`
}

// RecommendationFeedback handles POST /api/v1/recommendations/feedback
//
// The record is published to the feedback pipeline and the call returns 202
// without waiting for persistence. Pipeline failures are counted and logged
// but not reported to the client.
func (h *Handler) RecommendationFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req feedbackRequest
	if err := decodeJSON(r, h.deps.MaxBodyBytes, &req); err != nil {
		respondDecodeError(rw, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(SessionHeader)
	}
	if respondValidation(rw, &req) {
		return
	}

	h.deps.Publisher.PublishFeedback(r.Context(), feedback.Feedback{
		RecommendationID: req.RecommendationID,
		SessionID:        req.SessionID,
		ContentID:        req.ContentID,
		ContentType:      catalog.ContentType(req.ContentType),
		Position:         req.Position,
		Action:           feedback.Action(req.Action),
		Algorithm:        req.Algorithm,
		Timestamp:        h.now().UTC(),
		DwellTime:        req.DwellTime,
	})

	rw.Accepted(feedbackAccepted{RecommendationID: req.RecommendationID, Accepted: true})
}
