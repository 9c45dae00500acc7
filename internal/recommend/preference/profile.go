// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package preference turns one session's behavior events into a Profile.
//
// A Profile is derived data: it is rebuilt from the event log on demand and
// never stored as a source of truth. Building it twice from the same events
// yields an identical Profile.
package preference

import (
	"sort"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
)

// ItemScore is the accumulated interest in one catalog item.
type ItemScore struct {
	ContentType catalog.ContentType `json:"contentType"`
	ContentID   string              `json:"contentId"`

	// Score is min(100, best page-view score + summed interaction weights).
	Score float64 `json:"score"`
}

// SearchPattern is one keyword from the session's queries.
type SearchPattern struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`

	// SuccessRate is the share of searches with this keyword that led to a
	// result click.
	SuccessRate float64 `json:"successRate"`
}

// Profile summarizes a session's preferences.
type Profile struct {
	SessionID string `json:"sessionId"`

	PageViews    int `json:"pageViews"`
	Searches     int `json:"searches"`
	Interactions int `json:"interactions"`

	// Affinity is 0-100 per content type, relative to the strongest type.
	Affinity map[catalog.ContentType]float64 `json:"affinity"`

	// Items is sorted by score descending, then type and id.
	Items []ItemScore `json:"items"`

	// Liked is the subset of Items at or above the liked threshold.
	Liked []ItemScore `json:"liked"`

	// SearchPatterns is sorted by frequency descending, then keyword.
	SearchPatterns []SearchPattern `json:"searchPatterns"`

	HourHistogram [24]int `json:"hourHistogram"`
	DayHistogram  [7]int  `json:"dayHistogram"`

	// Engagement is 0-100.
	Engagement float64 `json:"engagement"`

	// Seen lists every content id the session viewed, interacted with or
	// clicked from search, sorted.
	Seen []string `json:"seen"`

	// LastActivity is the newest event timestamp.
	LastActivity time.Time `json:"lastActivity"`
}

// EventCount is the total number of events behind the profile.
func (p *Profile) EventCount() int {
	return p.PageViews + p.Searches + p.Interactions
}

// HasSeen reports whether the session already encountered id.
func (p *Profile) HasSeen(id string) bool {
	i := sort.SearchStrings(p.Seen, id)
	return i < len(p.Seen) && p.Seen[i] == id
}

// LikedIDs returns the liked content ids in Liked order.
func (p *Profile) LikedIDs() []string {
	ids := make([]string, len(p.Liked))
	for i, l := range p.Liked {
		ids[i] = l.ContentID
	}
	return ids
}

// Keywords returns the search keywords in pattern order.
func (p *Profile) Keywords() []string {
	kws := make([]string, len(p.SearchPatterns))
	for i, sp := range p.SearchPatterns {
		kws[i] = sp.Keyword
	}
	return kws
}

// ActiveHours returns the UTC hours with at least one event.
func (p *Profile) ActiveHours() []int {
	var hours []int
	for h, n := range p.HourHistogram {
		if n > 0 {
			hours = append(hours, h)
		}
	}
	return hours
}

// TopContentType returns the type with the highest affinity, or "" when
// there is none. Ties resolve in catalog.AllTypes order.
func (p *Profile) TopContentType() catalog.ContentType {
	var best catalog.ContentType
	bestScore := 0.0
	for _, t := range catalog.AllTypes {
		if s := p.Affinity[t]; s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}
