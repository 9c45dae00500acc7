// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package preference

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/catalog"
)

// InteractionWeights are ordinal by commitment: a favorite says more than a
// like, a like more than a passing view.
var InteractionWeights = map[behavior.InteractionKind]float64{
	behavior.InteractionView:     5,
	behavior.InteractionTagClick: 10,
	behavior.InteractionComment:  20,
	behavior.InteractionLike:     15,
	behavior.InteractionShare:    25,
	behavior.InteractionFavorite: 30,
}

// Config tunes profile construction.
type Config struct {
	// MinEvents below which Analyze reports no profile.
	MinEvents int `json:"min_events"`

	// LikedThreshold is the item score at which an item counts as liked.
	LikedThreshold float64 `json:"liked_threshold"`

	// MaxSearchPatterns caps the ranked keyword list.
	MaxSearchPatterns int `json:"max_search_patterns"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinEvents:         3,
		LikedThreshold:    15,
		MaxSearchPatterns: 20,
	}
}

// Analyzer builds profiles from a behavior store.
type Analyzer struct {
	store behavior.Store
	cfg   Config
}

// NewAnalyzer returns an analyzer reading from store.
func NewAnalyzer(store behavior.Store, cfg Config) *Analyzer {
	if cfg.MinEvents <= 0 {
		cfg.MinEvents = DefaultConfig().MinEvents
	}
	if cfg.MaxSearchPatterns <= 0 {
		cfg.MaxSearchPatterns = DefaultConfig().MaxSearchPatterns
	}
	return &Analyzer{store: store, cfg: cfg}
}

// Analyze returns the profile for sessionID, or nil when the session has
// too few events to say anything reliable.
func (a *Analyzer) Analyze(ctx context.Context, sessionID string) (*Profile, error) {
	if sessionID == "" {
		return nil, nil
	}
	events, err := behavior.SessionEvents(ctx, a.store, sessionID)
	if err != nil && len(events) == 0 {
		return nil, fmt.Errorf("load session events: %w", err)
	}
	return Build(sessionID, events, a.cfg), nil
}

type itemKey struct {
	contentType catalog.ContentType
	contentID   string
}

type itemAccumulator struct {
	bestPageView float64
	interactions float64
}

// Build computes a profile from already loaded events. It returns nil when
// there are fewer than cfg.MinEvents events.
func Build(sessionID string, events map[behavior.Kind][]behavior.Event, cfg Config) *Profile {
	total := 0
	for _, list := range events {
		total += len(list)
	}
	if total == 0 || total < cfg.MinEvents {
		return nil
	}

	p := &Profile{
		SessionID: sessionID,
		Affinity:  make(map[catalog.ContentType]float64),
	}
	acc := make(map[itemKey]*itemAccumulator)
	seen := make(map[string]struct{})
	get := func(k itemKey) *itemAccumulator {
		a := acc[k]
		if a == nil {
			a = &itemAccumulator{}
			acc[k] = a
		}
		return a
	}
	touch := func(e *behavior.Event) {
		ts := e.Timestamp.UTC()
		p.HourHistogram[ts.Hour()]++
		p.DayHistogram[int(ts.Weekday())]++
		if ts.After(p.LastActivity) {
			p.LastActivity = ts
		}
	}

	var dwellSum, scrollSum float64
	for i := range events[behavior.KindPageView] {
		e := &events[behavior.KindPageView][i]
		if e.PageView == nil {
			continue
		}
		touch(e)
		p.PageViews++
		pv := e.PageView
		dwellSum += float64(pv.DwellTime)
		scrollSum += pv.ScrollDepth

		if pv.EntityID == "" || !pv.ContentType.Valid() {
			continue
		}
		seen[pv.EntityID] = struct{}{}
		a := get(itemKey{pv.ContentType, pv.EntityID})
		if s := PageViewScore(pv.DwellTime, pv.ScrollDepth); s > a.bestPageView {
			a.bestPageView = s
		}
	}

	for i := range events[behavior.KindInteraction] {
		e := &events[behavior.KindInteraction][i]
		if e.Interaction == nil {
			continue
		}
		touch(e)
		p.Interactions++
		in := e.Interaction
		seen[in.ContentID] = struct{}{}
		get(itemKey{in.ContentType, in.ContentID}).interactions += InteractionWeights[in.Interaction]
	}

	p.SearchPatterns = searchPatterns(events[behavior.KindSearch], cfg.MaxSearchPatterns, seen)
	for i := range events[behavior.KindSearch] {
		e := &events[behavior.KindSearch][i]
		if e.Search == nil {
			continue
		}
		touch(e)
		p.Searches++
	}

	for k, a := range acc {
		score := math.Min(100, a.bestPageView+a.interactions)
		if score <= 0 {
			continue
		}
		p.Items = append(p.Items, ItemScore{ContentType: k.contentType, ContentID: k.contentID, Score: score})
	}
	sort.Slice(p.Items, func(i, j int) bool {
		a, b := p.Items[i], p.Items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ContentType != b.ContentType {
			return a.ContentType < b.ContentType
		}
		return a.ContentID < b.ContentID
	})
	// summed in item order so float rounding is the same on every build
	for _, it := range p.Items {
		p.Affinity[it.ContentType] += it.Score
		if it.Score >= cfg.LikedThreshold {
			p.Liked = append(p.Liked, it)
		}
	}

	maxAffinity := 0.0
	for _, v := range p.Affinity {
		maxAffinity = math.Max(maxAffinity, v)
	}
	for t, v := range p.Affinity {
		p.Affinity[t] = 100 * v / maxAffinity
	}

	p.Engagement = Engagement(p.PageViews, p.Interactions, dwellSum, scrollSum)

	p.Seen = make([]string, 0, len(seen))
	for id := range seen {
		p.Seen = append(p.Seen, id)
	}
	sort.Strings(p.Seen)
	return p
}

// PageViewScore is min(100, dwellSeconds + scrollDepth/10).
func PageViewScore(dwellMillis int64, scrollDepth float64) float64 {
	return math.Min(100, float64(dwellMillis)/1000+scrollDepth/10)
}

// Engagement blends average dwell (up to 50 points, full at two minutes),
// average scroll depth (up to 30) and interactions per page view (up to 20).
func Engagement(pageViews, interactions int, dwellSumMillis, scrollSum float64) float64 {
	var dwellPts, scrollPts, ratioPts float64
	if pageViews > 0 {
		avgDwellSec := dwellSumMillis / 1000 / float64(pageViews)
		dwellPts = math.Min(50, avgDwellSec*50/120)
		scrollPts = math.Min(30, scrollSum/float64(pageViews)*0.3)
		ratioPts = math.Min(20, float64(interactions)/float64(pageViews)*20)
	} else if interactions > 0 {
		ratioPts = 20
	}
	return math.Min(100, dwellPts+scrollPts+ratioPts)
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "in": {}, "on": {},
	"for": {}, "to": {}, "with": {}, "is": {}, "by": {}, "at": {}, "or": {},
}

// Tokenize splits a query into lowercase keywords, dropping stop words and
// single characters. Duplicates are removed; order follows the query.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	dup := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, ok := dup[f]; ok {
			continue
		}
		dup[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func searchPatterns(searches []behavior.Event, limit int, seen map[string]struct{}) []SearchPattern {
	type counts struct{ total, success int }
	byKeyword := make(map[string]*counts)
	for i := range searches {
		s := searches[i].Search
		if s == nil {
			continue
		}
		success := len(s.ClickedResults) > 0
		for _, id := range s.ClickedResults {
			seen[id] = struct{}{}
		}
		for _, kw := range Tokenize(s.Query) {
			c := byKeyword[kw]
			if c == nil {
				c = &counts{}
				byKeyword[kw] = c
			}
			c.total++
			if success {
				c.success++
			}
		}
	}

	patterns := make([]SearchPattern, 0, len(byKeyword))
	for kw, c := range byKeyword {
		patterns = append(patterns, SearchPattern{
			Keyword:     kw,
			Frequency:   c.total,
			SuccessRate: float64(c.success) / float64(c.total),
		})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Frequency != patterns[j].Frequency {
			return patterns[i].Frequency > patterns[j].Frequency
		}
		return patterns[i].Keyword < patterns[j].Keyword
	})
	if limit > 0 && len(patterns) > limit {
		patterns = patterns[:limit]
	}
	return patterns
}
