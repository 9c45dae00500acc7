// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"net/http"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/logging"
)

type pageViewRequest struct {
	SessionID   string  `json:"sessionId" validate:"omitempty,max=64"`
	PageType    string  `json:"pageType" validate:"required,max=64"`
	EntityID    string  `json:"entityId" validate:"max=256"`
	ContentType string  `json:"contentType" validate:"omitempty,oneof=movie character review guide"`
	DwellTime   int64   `json:"dwellTime" validate:"gte=0"`
	ScrollDepth float64 `json:"scrollDepth" validate:"gte=0,lte=100"`
}

type searchRequest struct {
	SessionID      string   `json:"sessionId" validate:"omitempty,max=64"`
	Query          string   `json:"query" validate:"required,max=256"`
	ResultCount    int      `json:"resultCount" validate:"gte=0"`
	ClickedResults []string `json:"clickedResults" validate:"max=100,dive,required,max=256"`
}

type interactionRequest struct {
	SessionID   string `json:"sessionId" validate:"omitempty,max=64"`
	ContentType string `json:"contentType" validate:"required,oneof=movie character review guide"`
	ContentID   string `json:"contentId" validate:"required,max=256"`
	Interaction string `json:"interaction" validate:"required,oneof=view tag_click comment like share favorite"`
	Tag         string `json:"tag" validate:"max=64"`
}

// eventAccepted tells the client which session to send next time.
type eventAccepted struct {
	SessionID  string `json:"sessionId"`
	NewSession bool   `json:"newSession"`
	Recorded   bool   `json:"recorded"`
}

// PageView handles POST /api/v1/events/page-view
func (h *Handler) PageView(w http.ResponseWriter, r *http.Request) {
	var req pageViewRequest
	h.recordEvent(w, r, &req, func() (string, behavior.Event) {
		return req.SessionID, behavior.Event{
			Kind: behavior.KindPageView,
			PageView: &behavior.PageView{
				PageType:    req.PageType,
				EntityID:    req.EntityID,
				ContentType: catalog.ContentType(req.ContentType),
				DwellTime:   req.DwellTime,
				ScrollDepth: req.ScrollDepth,
			},
		}
	})
}

// Search handles POST /api/v1/events/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	h.recordEvent(w, r, &req, func() (string, behavior.Event) {
		return req.SessionID, behavior.Event{
			Kind: behavior.KindSearch,
			Search: &behavior.Search{
				Query:          req.Query,
				ResultCount:    req.ResultCount,
				ClickedResults: req.ClickedResults,
			},
		}
	})
}

// Interaction handles POST /api/v1/events/interaction
func (h *Handler) Interaction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	h.recordEvent(w, r, &req, func() (string, behavior.Event) {
		return req.SessionID, behavior.Event{
			Kind: behavior.KindInteraction,
			Interaction: &behavior.Interaction{
				ContentType: catalog.ContentType(req.ContentType),
				ContentID:   req.ContentID,
				Interaction: behavior.InteractionKind(req.Interaction),
				Tag:         req.Tag,
			},
		}
	})
}

// recordEvent decodes and validates req, resolves the session and records
// the event built by build. Storage failures still answer 202: losing an
// event must not break the page that reported it.
func (h *Handler) recordEvent(w http.ResponseWriter, r *http.Request, req interface{}, build func() (string, behavior.Event)) {
	rw := NewResponseWriter(w, r)

	if err := decodeJSON(r, h.deps.MaxBodyBytes, req); err != nil {
		respondDecodeError(rw, err)
		return
	}
	if respondValidation(rw, req) {
		return
	}

	requested, event := build()
	if requested == "" {
		requested = r.Header.Get(SessionHeader)
	}
	session, created := h.deps.Sessions.Resolve(requested, r.UserAgent(), r.Referer())
	event.SessionID = session.ID

	ctx := logging.ContextWithSessionID(r.Context(), session.ID)
	recorded := h.deps.Recorder.Record(ctx, event)
	if created {
		logging.Ctx(ctx).Debug().Str("kind", string(event.Kind)).Msg("session started")
	}

	w.Header().Set(SessionHeader, session.ID)
	rw.Accepted(eventAccepted{SessionID: session.ID, NewSession: created, Recorded: recorded})
}
