// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package similarity finds sessions whose preferences resemble the current
// one. It is the only component that looks across sessions, and it does so
// through summaries: liked item ids, search keywords and active hours. Raw
// events never leave the behavior store through this package.
package similarity

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

// Match is a neighbouring session and what it liked.
type Match struct {
	SessionID  string                 `json:"sessionId"`
	Similarity float64                `json:"similarity"`
	Liked      []preference.ItemScore `json:"liked"`
}

// Finder locates sessions similar to a profile. Results are sorted by
// similarity descending, then session id.
type Finder interface {
	FindSimilarSessions(ctx context.Context, profile *preference.Profile) ([]Match, error)
}

// Weights blend the three overlap measures.
type Weights struct {
	Liked    float64 `json:"liked"`
	Keywords float64 `json:"keywords"`
	Hours    float64 `json:"hours"`
}

// DefaultWeights favour shared taste over shared habits.
func DefaultWeights() Weights {
	return Weights{Liked: 0.5, Keywords: 0.3, Hours: 0.2}
}

// Summary is the anonymized view of one session kept by the index.
type Summary struct {
	SessionID string
	Liked     []preference.ItemScore

	// ContentEvents counts page views and interactions.
	ContentEvents int
	LastActivity  time.Time

	liked    map[string]struct{}
	keywords map[string]struct{}
	hours    map[int]struct{}
}

// Summarize reduces a profile to the fields used for matching.
func Summarize(p *preference.Profile) Summary {
	s := Summary{
		SessionID:     p.SessionID,
		Liked:         append([]preference.ItemScore(nil), p.Liked...),
		ContentEvents: p.PageViews + p.Interactions,
		LastActivity:  p.LastActivity,
		liked:         make(map[string]struct{}, len(p.Liked)),
		keywords:      make(map[string]struct{}, len(p.SearchPatterns)),
		hours:         make(map[int]struct{}),
	}
	for _, l := range p.Liked {
		s.liked[l.ContentID] = struct{}{}
	}
	for _, kw := range p.Keywords() {
		s.keywords[kw] = struct{}{}
	}
	for _, h := range p.ActiveHours() {
		s.hours[h] = struct{}{}
	}
	return s
}

// Similarity is the weighted blend of Jaccard overlaps between a and b.
func Similarity(a, b Summary, w Weights) float64 {
	return w.Liked*Jaccard(a.liked, b.liked) +
		w.Keywords*Jaccard(a.keywords, b.keywords) +
		w.Hours*Jaccard(a.hours, b.hours)
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both are empty.
func Jaccard[K comparable](a, b map[K]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func sortMatches(m []Match) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Similarity != m[j].Similarity {
			return m[i].Similarity > m[j].Similarity
		}
		return m[i].SessionID < m[j].SessionID
	})
}

// Disabled never finds anyone. Collaborative filtering then falls back to
// popular items.
type Disabled struct{}

// FindSimilarSessions implements Finder.
func (Disabled) FindSimilarSessions(context.Context, *preference.Profile) ([]Match, error) {
	return nil, nil
}
