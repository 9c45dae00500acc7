// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// HealthLive handles GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

type componentStatus struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// HealthReady handles GET /api/v1/health/ready
//
// Every registered check must pass for a 200. The recommender itself is
// not checked: it always answers, degrading to popularity or an empty list.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	names := make([]string, 0, len(h.deps.ReadinessChecks))
	for name := range h.deps.ReadinessChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	components := make([]componentStatus, 0, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := h.deps.ReadinessChecks[name](ctx)
		cancel()

		cs := componentStatus{Name: name, Ready: err == nil}
		if err != nil {
			ready = false
			cs.Error = err.Error()
		}
		components = append(components, cs)
	}

	data := map[string]interface{}{
		"ready":      ready,
		"components": components,
		"uptime":     time.Since(h.startTime).Seconds(),
	}
	if !ready {
		rw.ServiceUnavailable("Not ready", data)
		return
	}
	rw.Success(data)
}
