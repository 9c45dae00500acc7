// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

type sessionProfile struct {
	SessionID string `json:"sessionId"`
	// Active is false once the session has been idle past the timeout.
	Active  bool                   `json:"active"`
	Session *behavior.Session      `json:"session,omitempty"`
	Profile *preference.Profile    `json:"profile"`
	Weights recommend.WeightVector `json:"weights"`
}

// SessionProfile handles GET /api/v1/sessions/{sessionID}/profile
//
// It shows what the recommender knows about a session: the derived profile
// (null below the minimum event count) and the weights it would blend with.
func (h *Handler) SessionProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sessionID := chi.URLParam(r, "sessionID")
	if !behavior.ValidSessionID(sessionID) {
		rw.BadRequest("Invalid session id")
		return
	}
	if h.deps.Profiles == nil || h.deps.Weights == nil {
		rw.NotFound("Session profiles are not available")
		return
	}

	profile, err := h.deps.Profiles.Analyze(r.Context(), sessionID)
	if err != nil {
		rw.InternalError("Failed to build session profile", err)
		return
	}

	out := sessionProfile{
		SessionID: sessionID,
		Profile:   profile,
		Weights:   h.deps.Weights.Adapt(profile),
	}
	if s, ok := h.deps.Sessions.Lookup(sessionID); ok {
		out.Active = true
		out.Session = &s
	}
	if profile == nil && !out.Active {
		rw.NotFound("Unknown session")
		return
	}
	rw.Success(out)
}
