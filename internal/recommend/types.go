// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

// Strategy identifies a candidate generator.
type Strategy string

const (
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
	StrategyPopularity    Strategy = "popularity"
	StrategyRecency       Strategy = "recency"
)

// Strategies lists every strategy in merge order.
var Strategies = []Strategy{StrategyContent, StrategyCollaborative, StrategyPopularity, StrategyRecency}

// Algorithm is the label shown to clients for a recommendation.
type Algorithm string

const (
	AlgorithmContent       Algorithm = "content"
	AlgorithmCollaborative Algorithm = "collaborative"
	AlgorithmPopular       Algorithm = "popular"
	AlgorithmHybrid        Algorithm = "hybrid"
)

// Algorithm returns the client-facing label for candidates from s.
// Popularity and recency both surface as "popular".
func (s Strategy) Algorithm() Algorithm {
	switch s {
	case StrategyContent:
		return AlgorithmContent
	case StrategyCollaborative:
		return AlgorithmCollaborative
	default:
		return AlgorithmPopular
	}
}

// ContextType describes where the recommendations will be shown.
type ContextType string

const (
	ContextGeneral      ContextType = "general"
	ContextItemDetail   ContextType = "item_detail"
	ContextSearchResult ContextType = "search_result"
)

// Valid reports whether c is a known context type.
func (c ContextType) Valid() bool {
	switch c {
	case ContextGeneral, ContextItemDetail, ContextSearchResult:
		return true
	}
	return false
}

// Reason explains one factor behind a candidate's score.
type Reason struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Candidate is one scored recommendation.
type Candidate struct {
	ContentID   string              `json:"id"`
	ContentType catalog.ContentType `json:"type"`

	// Score is in [0, 1].
	Score float64 `json:"score"`

	Reasons   []Reason  `json:"reasons"`
	Strategy  Strategy  `json:"-"`
	Algorithm Algorithm `json:"algorithm"`

	// Sources lists every strategy that produced the item, in merge order.
	Sources []Strategy `json:"-"`

	Metadata map[string]any `json:"metadata,omitempty"`

	// Item is the catalog entry used to render the candidate.
	Item *catalog.Item `json:"-"`
}

// Key identifies a candidate for deduplication.
func (c *Candidate) Key() string {
	return string(c.ContentType) + "/" + c.ContentID
}

// Status classifies a generator outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusEmpty   Status = "empty"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusSkipped Status = "skipped"
)

// Result is what a generator hands back. Generators never return a bare
// error: an empty-by-design result and a failure are told apart by Status.
type Result struct {
	Strategy   Strategy
	Candidates []Candidate
	Status     Status
	Err        error
}

// OK wraps candidates, reporting StatusEmpty when there are none.
func OK(s Strategy, candidates []Candidate) Result {
	if len(candidates) == 0 {
		return Empty(s)
	}
	return Result{Strategy: s, Candidates: candidates, Status: StatusOK}
}

// Empty reports that s had nothing to offer.
func Empty(s Strategy) Result {
	return Result{Strategy: s, Status: StatusEmpty}
}

// Failed reports that s could not produce candidates.
func Failed(s Strategy, err error) Result {
	return Result{Strategy: s, Status: StatusFailed, Err: err}
}

// Query is the input to one generator call.
type Query struct {
	ContextType ContextType
	ContextID   string
	SessionID   string

	// Profile is nil for sessions without enough signal.
	Profile *preference.Profile

	// Limit is how many candidates this generator should return.
	Limit int

	// Types restricts results; empty means every type.
	Types []catalog.ContentType

	// Exclude holds content ids that must not be returned.
	Exclude map[string]struct{}
}

// Allows reports whether item passes the type filter and exclusions.
func (q *Query) Allows(item *catalog.Item) bool {
	if _, ok := q.Exclude[item.ID]; ok {
		return false
	}
	return catalog.MatchesTypes(item.Type, q.Types)
}

// Generator produces candidates for one strategy. Implementations must
// honour ctx and must not panic, though the engine recovers if they do.
type Generator interface {
	Strategy() Strategy
	Generate(ctx context.Context, q Query) Result
}

// ProfileSource builds session profiles.
type ProfileSource interface {
	Analyze(ctx context.Context, sessionID string) (*preference.Profile, error)
}

// Request asks for recommendations.
type Request struct {
	Limit       int                   `json:"limit" validate:"gte=0,lte=50"`
	Types       []catalog.ContentType `json:"types" validate:"dive,oneof=movie character review guide"`
	ContextType ContextType           `json:"contextType" validate:"omitempty,oneof=general item_detail search_result"`
	ContextID   string                `json:"contextId,omitempty" validate:"max=128"`
	SessionID   string                `json:"sessionId,omitempty" validate:"max=64"`
}

// StrategyOutcome records how one generator did for a request.
type StrategyOutcome struct {
	Strategy  Strategy `json:"strategy"`
	Weight    float64  `json:"weight"`
	Requested int      `json:"requested"`
	Returned  int      `json:"returned"`
	Status    Status   `json:"status"`
	Error     string   `json:"error,omitempty"`
	LatencyMS int64    `json:"latencyMs"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RecommendationID string            `json:"recommendationId"`
	Strategies       []StrategyOutcome `json:"strategies"`
	ColdStart        bool              `json:"coldStart"`
	GeneratedAt      time.Time         `json:"generatedAt"`
	LatencyMS        int64             `json:"latencyMs"`
}

// Response is the ranked result of a request.
type Response struct {
	Candidates []Candidate `json:"recommendations"`
	Total      int         `json:"total"`

	SessionID   string       `json:"sessionId,omitempty"`
	ContextType ContextType  `json:"contextType"`
	ContextID   string       `json:"contextId,omitempty"`
	Weights     WeightVector `json:"weights"`

	Metadata ResponseMetadata `json:"metadata"`
}
