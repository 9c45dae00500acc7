// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package similarity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/metrics"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

// ProfileSource builds a profile for one session.
type ProfileSource interface {
	Analyze(ctx context.Context, sessionID string) (*preference.Profile, error)
}

// Config controls the index.
type Config struct {
	// Threshold is the minimum similarity for a match.
	Threshold float64 `json:"threshold"`

	// MinInteractions excludes sessions with fewer content events.
	MinInteractions int `json:"min_interactions"`

	// MaxSessions caps how many sessions the index keeps. The most recently
	// active sessions are kept.
	MaxSessions int `json:"max_sessions"`

	// MaxMatches caps the matches returned per lookup.
	MaxMatches int `json:"max_matches"`

	Weights Weights `json:"weights"`
}

// DefaultConfig returns the standard matching rules.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.3,
		MinInteractions: 3,
		MaxSessions:     5000,
		MaxMatches:      50,
		Weights:         DefaultWeights(),
	}
}

// Index holds summaries of recent sessions and answers similarity lookups
// against them. Summaries are replaced wholesale by Rebuild; lookups see
// either the old or the new set, never a mix.
type Index struct {
	lister   behavior.SessionLister
	profiles ProfileSource
	cfg      Config
	logger   zerolog.Logger

	mu        sync.RWMutex
	summaries []Summary
	builtAt   time.Time
}

// NewIndex returns an empty index. Call Rebuild to populate it.
func NewIndex(lister behavior.SessionLister, profiles ProfileSource, cfg Config) *Index {
	def := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.MinInteractions <= 0 {
		cfg.MinInteractions = def.MinInteractions
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = def.MaxMatches
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	return &Index{
		lister:   lister,
		profiles: profiles,
		cfg:      cfg,
		logger:   logging.WithComponent("similarity"),
	}
}

// Rebuild re-summarizes every session the lister knows about. On error the
// previous summaries stay in place.
func (x *Index) Rebuild(ctx context.Context) (int, error) {
	start := time.Now()

	ids, err := x.sessionIDs(ctx)
	if err != nil {
		return 0, err
	}

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		p, err := x.profiles.Analyze(ctx, id)
		if err != nil {
			x.logger.Debug().Err(err).Str("session_id", id).Msg("skipping session")
			continue
		}
		if p == nil || p.PageViews+p.Interactions < x.cfg.MinInteractions {
			continue
		}
		summaries = append(summaries, Summarize(p))
	}
	if len(summaries) > x.cfg.MaxSessions {
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].LastActivity.After(summaries[j].LastActivity)
		})
		summaries = summaries[:x.cfg.MaxSessions]
	}

	x.mu.Lock()
	x.summaries = summaries
	x.builtAt = time.Now()
	x.mu.Unlock()

	metrics.SimilarityIndexSessions.Set(float64(len(summaries)))
	x.logger.Debug().
		Int("sessions_seen", len(ids)).
		Int("sessions_indexed", len(summaries)).
		Dur("duration", time.Since(start)).
		Msg("similarity index rebuilt")
	return len(summaries), nil
}

// sessionIDs unions sessions across all kinds, sorted.
func (x *Index) sessionIDs(ctx context.Context) ([]string, error) {
	set := make(map[string]struct{})
	for _, k := range behavior.Kinds {
		ids, err := x.lister.Sessions(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("list %s sessions: %w", k, err)
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Len returns the number of indexed sessions.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.summaries)
}

// BuiltAt returns when the summaries were last replaced.
func (x *Index) BuiltAt() time.Time {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.builtAt
}

// FindSimilarSessions implements Finder. The profile's own session is never
// returned.
func (x *Index) FindSimilarSessions(ctx context.Context, profile *preference.Profile) ([]Match, error) {
	if profile == nil {
		return nil, nil
	}
	target := Summarize(profile)

	x.mu.RLock()
	summaries := x.summaries
	x.mu.RUnlock()

	var matches []Match
	for i := range summaries {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s := &summaries[i]
		if s.SessionID == target.SessionID {
			continue
		}
		sim := Similarity(target, *s, x.cfg.Weights)
		if sim <= x.cfg.Threshold {
			continue
		}
		matches = append(matches, Match{SessionID: s.SessionID, Similarity: sim, Liked: s.Liked})
	}

	sortMatches(matches)
	if len(matches) > x.cfg.MaxMatches {
		matches = matches[:x.cfg.MaxMatches]
	}
	return matches, nil
}
