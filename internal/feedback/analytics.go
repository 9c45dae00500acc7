// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package feedback

import (
	"sort"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
)

// UnknownAlgorithm labels feedback that cannot be attributed to a strategy
// or algorithm.
const UnknownAlgorithm = "unknown"

// Counts are the raw tallies behind every rate.
type Counts struct {
	Impressions   int `json:"impressions"`
	Clicks        int `json:"clicks"`
	EngagedClicks int `json:"engagedClicks"`
	Dismissals    int `json:"dismissals"`
}

// CTR is clicks per impression, 0 without impressions.
func (c Counts) CTR() float64 {
	return ratio(c.Clicks, c.Impressions)
}

// RecommendationStats describes one served list.
type RecommendationStats struct {
	RecommendationID string  `json:"recommendationId"`
	Counts
	ClickThroughRate float64 `json:"ctr"`
}

// StrategyStats describes the items one generator strategy placed. The
// names match the weight vector components.
type StrategyStats struct {
	Strategy string `json:"strategy"`
	Counts
	ClickThroughRate float64 `json:"ctr"`
	// EngagementRate is engaged clicks per click.
	EngagementRate float64 `json:"engagementRate"`
	// Conversion = 0.7·CTR + 0.3·EngagementRate.
	Conversion float64 `json:"conversion"`
}

// AlgorithmStats describes items by the label clients were shown, where
// popularity and recency share "popular" and merged items are "hybrid".
type AlgorithmStats struct {
	Algorithm string `json:"algorithm"`
	Counts
	ClickThroughRate float64 `json:"ctr"`
}

// PositionStats describes one list slot.
type PositionStats struct {
	Position int `json:"position"`
	Counts
	ClickThroughRate float64 `json:"ctr"`
}

// ContentTypeStats describes one content type.
type ContentTypeStats struct {
	ContentType catalog.ContentType `json:"contentType"`
	Counts
	ClickThroughRate float64 `json:"ctr"`
	AvgDwellMs       float64 `json:"avgDwellMs"`
}

// Metrics summarizes recommendation effectiveness over a window.
type Metrics struct {
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`

	Counts
	ClickThroughRate float64 `json:"ctr"`
	// ViewThroughRate is engaged clicks per impression.
	ViewThroughRate float64 `json:"viewThroughRate"`

	// Diversity is unique items / total items served, falling back to
	// impressions when nothing was served. DiversitySample is the
	// denominator; 0 means there was nothing to measure.
	Diversity       float64 `json:"diversity"`
	DiversitySample int     `json:"diversitySample"`

	Recommendations []RecommendationStats `json:"recommendations"`
	Strategies      []StrategyStats       `json:"strategies"`
	Algorithms      []AlgorithmStats      `json:"algorithms"`
	Positions       []PositionStats       `json:"positions"`
	ContentTypes    []ContentTypeStats    `json:"contentTypes"`
}

// Strategy returns the stats for strategy, if any feedback was attributed
// to it.
func (m *Metrics) Strategy(strategy string) (StrategyStats, bool) {
	for _, s := range m.Strategies {
		if s.Strategy == strategy {
			return s, true
		}
	}
	return StrategyStats{}, false
}

// Algorithm returns the stats for a client-facing algorithm label.
func (m *Metrics) Algorithm(algorithm string) (AlgorithmStats, bool) {
	for _, a := range m.Algorithms {
		if a.Algorithm == algorithm {
			return a, true
		}
	}
	return AlgorithmStats{}, false
}

// Recommendation returns the stats for one recommendation id.
func (m *Metrics) Recommendation(id string) (RecommendationStats, bool) {
	for _, r := range m.Recommendations {
		if r.RecommendationID == id {
			return r, true
		}
	}
	return RecommendationStats{}, false
}

// labelStrategy resolves an algorithm label to a strategy when the served
// ledger has no entry. "popular" is shared by popularity and recency; the
// popularity generator is the one that fills it in practice. "hybrid" names
// no single strategy.
var labelStrategy = map[string]string{
	"content":       "content",
	"collaborative": "collaborative",
	"popular":       "popularity",
}

type attribution struct {
	strategy  string
	algorithm string
}

type slotKey struct {
	recommendationID string
	contentType      catalog.ContentType
	contentID        string
}

// Analyze computes Metrics from the records inside [now-window, now]. A
// window <= 0 includes everything up to now. It is a pure function of its
// arguments.
func Analyze(records []Feedback, served []Served, window time.Duration, now time.Time) Metrics {
	var start time.Time
	if window > 0 {
		start = now.Add(-window)
	}
	m := Metrics{WindowStart: start, WindowEnd: now}

	// served ledger: attribution and diversity
	ledger := make(map[slotKey]attribution)
	servedIDs := make(map[string]struct{})
	servedTotal := 0
	for i := range served {
		s := &served[i]
		if !inWindow(s.ServedAt, start, now) {
			continue
		}
		for _, it := range s.Items {
			ledger[slotKey{s.RecommendationID, it.ContentType, it.ContentID}] = attribution{
				strategy:  it.Strategy,
				algorithm: it.Algorithm,
			}
			servedIDs[string(it.ContentType)+"/"+it.ContentID] = struct{}{}
			servedTotal++
		}
	}

	byRec := make(map[string]*Counts)
	byStrategy := make(map[string]*Counts)
	byAlgo := make(map[string]*Counts)
	byPos := make(map[int]*Counts)
	byType := make(map[catalog.ContentType]*Counts)
	dwellSum := make(map[catalog.ContentType]int64)
	dwellN := make(map[catalog.ContentType]int)
	impressed := make(map[string]struct{})

	for i := range records {
		f := &records[i]
		if !inWindow(f.Timestamp, start, now) {
			continue
		}
		attr := ledger[slotKey{f.RecommendationID, f.ContentType, f.ContentID}]
		algo := f.Algorithm
		if algo == "" {
			algo = attr.algorithm
		}
		strategy := attr.strategy
		if strategy == "" {
			strategy = labelStrategy[algo]
		}
		if algo == "" {
			algo = UnknownAlgorithm
		}
		if strategy == "" {
			strategy = UnknownAlgorithm
		}

		for _, c := range []*Counts{
			&m.Counts,
			counter(byRec, f.RecommendationID),
			counter(byStrategy, strategy),
			counter(byAlgo, algo),
			counter(byPos, f.Position),
			counter(byType, f.ContentType),
		} {
			c.add(f)
		}
		if f.Action == ActionView {
			impressed[string(f.ContentType)+"/"+f.ContentID] = struct{}{}
		}
		if f.DwellTime > 0 {
			dwellSum[f.ContentType] += f.DwellTime
			dwellN[f.ContentType]++
		}
	}

	m.ClickThroughRate = m.CTR()
	m.ViewThroughRate = ratio(m.EngagedClicks, m.Impressions)

	if servedTotal > 0 {
		m.Diversity = ratio(len(servedIDs), servedTotal)
		m.DiversitySample = servedTotal
	} else if m.Impressions > 0 {
		m.Diversity = ratio(len(impressed), m.Impressions)
		m.DiversitySample = m.Impressions
	}

	for id, c := range byRec {
		m.Recommendations = append(m.Recommendations, RecommendationStats{
			RecommendationID: id, Counts: *c, ClickThroughRate: c.CTR(),
		})
	}
	sort.Slice(m.Recommendations, func(i, j int) bool {
		return m.Recommendations[i].RecommendationID < m.Recommendations[j].RecommendationID
	})

	for name, c := range byStrategy {
		ctr := c.CTR()
		engagement := ratio(c.EngagedClicks, c.Clicks)
		m.Strategies = append(m.Strategies, StrategyStats{
			Strategy:         name,
			Counts:           *c,
			ClickThroughRate: ctr,
			EngagementRate:   engagement,
			Conversion:       0.7*ctr + 0.3*engagement,
		})
	}
	sort.Slice(m.Strategies, func(i, j int) bool {
		return m.Strategies[i].Strategy < m.Strategies[j].Strategy
	})

	for algo, c := range byAlgo {
		m.Algorithms = append(m.Algorithms, AlgorithmStats{Algorithm: algo, Counts: *c, ClickThroughRate: c.CTR()})
	}
	sort.Slice(m.Algorithms, func(i, j int) bool { return m.Algorithms[i].Algorithm < m.Algorithms[j].Algorithm })

	for pos, c := range byPos {
		m.Positions = append(m.Positions, PositionStats{Position: pos, Counts: *c, ClickThroughRate: c.CTR()})
	}
	sort.Slice(m.Positions, func(i, j int) bool { return m.Positions[i].Position < m.Positions[j].Position })

	for ct, c := range byType {
		stats := ContentTypeStats{ContentType: ct, Counts: *c, ClickThroughRate: c.CTR()}
		if n := dwellN[ct]; n > 0 {
			stats.AvgDwellMs = float64(dwellSum[ct]) / float64(n)
		}
		m.ContentTypes = append(m.ContentTypes, stats)
	}
	sort.Slice(m.ContentTypes, func(i, j int) bool { return m.ContentTypes[i].ContentType < m.ContentTypes[j].ContentType })

	return m
}

func (c *Counts) add(f *Feedback) {
	switch f.Action {
	case ActionView:
		c.Impressions++
	case ActionClick:
		c.Clicks++
		if f.Engaged() {
			c.EngagedClicks++
		}
	case ActionDismiss:
		c.Dismissals++
	}
}

func counter[K comparable](m map[K]*Counts, k K) *Counts {
	c := m[k]
	if c == nil {
		c = &Counts{}
		m[k] = c
	}
	return c
}

func inWindow(ts, start, end time.Time) bool {
	if !start.IsZero() && ts.Before(start) {
		return false
	}
	return !ts.After(end)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
