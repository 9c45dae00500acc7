// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/feedback"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// recommendationContext echoes what the list was computed for.
type recommendationContext struct {
	SessionID   string                 `json:"sessionId,omitempty"`
	ContextType recommend.ContextType  `json:"contextType"`
	ContextID   string                 `json:"contextId,omitempty"`
	Weights     recommend.WeightVector `json:"weights"`
}

// recommendationItem is a candidate rendered with its catalog fields.
type recommendationItem struct {
	ID          string              `json:"id"`
	Type        catalog.ContentType `json:"type"`
	Title       string              `json:"title"`
	Subtitle    string              `json:"subtitle,omitempty"`
	Description string              `json:"description,omitempty"`
	ImageURL    string              `json:"imageUrl,omitempty"`
	URL         string              `json:"url"`
	Score       float64             `json:"score"`
	Reasons     []recommend.Reason  `json:"reasons"`
	Algorithm   recommend.Algorithm `json:"algorithm"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
}

func renderCandidates(cands []recommend.Candidate) []recommendationItem {
	items := make([]recommendationItem, len(cands))
	for i := range cands {
		c := &cands[i]
		items[i] = recommendationItem{
			ID:        c.ContentID,
			Type:      c.ContentType,
			Score:     c.Score,
			Reasons:   c.Reasons,
			Algorithm: c.Algorithm,
			Metadata:  c.Metadata,
		}
		if c.Item != nil {
			items[i].Title = c.Item.Title
			items[i].Subtitle = c.Item.Subtitle
			items[i].Description = c.Item.Description
			items[i].ImageURL = c.Item.ImageURL
			items[i].URL = c.Item.URL
		}
		if items[i].Reasons == nil {
			items[i].Reasons = []recommend.Reason{}
		}
	}
	return items
}

// recommendationsPayload is the data of GET /api/v1/recommendations.
type recommendationsPayload struct {
	Recommendations []recommendationItem        `json:"recommendations"`
	Total           int                         `json:"total"`
	Context         recommendationContext       `json:"context"`
	Metadata        *recommend.ResponseMetadata `json:"metadata,omitempty"`
}

// Recommendations handles GET /api/v1/recommendations
//
// Query parameters: limit, types (repeated or comma separated), contextType,
// contextId, sessionId. The session may also be given in X-Session-ID.
//
// Recommender failures never produce a 5xx: the response degrades to an
// empty list with total 0.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	req := recommend.Request{
		Limit:       limit,
		ContextType: recommend.ContextType(q.Get("contextType")),
		ContextID:   q.Get("contextId"),
		SessionID:   q.Get("sessionId"),
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(SessionHeader)
	}
	for _, t := range parseCommaSeparated(q["types"]) {
		req.Types = append(req.Types, catalog.ContentType(t))
	}
	if respondValidation(rw, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deps.RequestTimeout)
	defer cancel()
	if req.SessionID != "" {
		ctx = logging.ContextWithSessionID(ctx, req.SessionID)
	}

	resp, err := h.deps.Recommender.Recommend(ctx, req)
	if err != nil || resp == nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("recommendation failed, serving empty list")
		rw.Success(recommendationsPayload{
			Recommendations: []recommendationItem{},
			Context: recommendationContext{
				SessionID:   req.SessionID,
				ContextType: fallbackContext(req.ContextType),
				ContextID:   req.ContextID,
			},
		})
		return
	}

	if len(resp.Candidates) > 0 {
		// detach from the request so the ledger write is not cancelled
		// when the client goes away
		h.deps.Publisher.PublishServed(context.WithoutCancel(ctx), servedFromResponse(resp))
	}

	if resp.SessionID != "" {
		w.Header().Set(SessionHeader, resp.SessionID)
	}
	rw.Success(recommendationsPayload{
		Recommendations: renderCandidates(resp.Candidates),
		Total:           resp.Total,
		Context: recommendationContext{
			SessionID:   resp.SessionID,
			ContextType: resp.ContextType,
			ContextID:   resp.ContextID,
			Weights:     resp.Weights,
		},
		Metadata: &resp.Metadata,
	})
}

func fallbackContext(c recommend.ContextType) recommend.ContextType {
	if c.Valid() {
		return c
	}
	return recommend.ContextGeneral
}

// servedFromResponse records which strategy placed each item. Positions
// are zero-based, matching what clients send back with feedback.
func servedFromResponse(resp *recommend.Response) feedback.Served {
	items := make([]feedback.ServedItem, len(resp.Candidates))
	for i := range resp.Candidates {
		c := &resp.Candidates[i]
		items[i] = feedback.ServedItem{
			ContentID:   c.ContentID,
			ContentType: c.ContentType,
			Position:    i,
			Algorithm:   string(c.Algorithm),
			Strategy:    string(c.Strategy),
		}
	}
	return feedback.Served{
		RecommendationID: resp.Metadata.RecommendationID,
		SessionID:        resp.SessionID,
		ContextType:      string(resp.ContextType),
		ContextID:        resp.ContextID,
		ServedAt:         resp.Metadata.GeneratedAt,
		Items:            items,
	}
}
