// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/metrics"
	"github.com/tomtom215/reelrank/internal/recommend/preference"
)

// Engine blends the registered generators into one ranked list.
// It is safe for concurrent use and keeps no per-request state.
type Engine struct {
	config     *Config
	profiles   ProfileSource
	adapter    *WeightAdapter
	generators map[Strategy]Generator
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEngine creates a new recommendation engine. profiles may be nil, in
// which case every request is treated as a cold start.
func NewEngine(cfg *Config, profiles ProfileSource, generators ...Generator) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:     cfg.Clone(),
		profiles:   profiles,
		adapter:    NewWeightAdapter(cfg.Weights, cfg.Adaptation),
		generators: make(map[Strategy]Generator, len(generators)),
		logger:     logging.WithComponent("recommend"),
		now:        time.Now,
	}
	for _, g := range generators {
		if _, dup := e.generators[g.Strategy()]; dup {
			return nil, fmt.Errorf("duplicate generator for strategy %s", g.Strategy())
		}
		e.generators[g.Strategy()] = g
		e.logger.Debug().Str("strategy", string(g.Strategy())).Msg("registered generator")
	}
	return e, nil
}

// SetClock overrides the time source used for response metadata.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Adapter returns the engine's weight adapter.
func (e *Engine) Adapter() *WeightAdapter {
	return e.adapter
}

// Recommend ranks candidates for req. Generator failures degrade the result
// but never produce an error. The only error is cancellation of ctx, in
// which case nothing was served and callers must not record it.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("session_id", req.SessionID).
		Str("context_type", string(req.ContextType)).
		Logger()

	profile := e.loadProfile(ctx, req.SessionID, logger)
	weights := e.adapter.Adapt(profile)

	base := Query{
		ContextType: req.ContextType,
		ContextID:   req.ContextID,
		SessionID:   req.SessionID,
		Profile:     profile,
		Types:       req.Types,
		Exclude:     make(map[string]struct{}),
	}
	if req.ContextType == ContextItemDetail && req.ContextID != "" {
		base.Exclude[req.ContextID] = struct{}{}
	}

	results, outcomes := e.fanOut(ctx, base, weights, req.Limit*e.config.Limits.ExpansionFactor)

	if err := ctx.Err(); err != nil {
		metrics.RecordRecommendation(string(req.ContextType), "cancelled", 0, time.Since(start))
		return nil, err
	}

	ranked := Merge(results, &base, req.Limit)

	resp := &Response{
		Candidates:  ranked,
		Total:       len(ranked),
		SessionID:   req.SessionID,
		ContextType: req.ContextType,
		ContextID:   req.ContextID,
		Weights:     weights,
		Metadata: ResponseMetadata{
			RecommendationID: uuid.New().String(),
			Strategies:       outcomes,
			ColdStart:        profile == nil,
			GeneratedAt:      e.now().UTC(),
			LatencyMS:        time.Since(start).Milliseconds(),
		},
	}

	outcome := "ok"
	if len(ranked) == 0 {
		outcome = "empty"
	}
	metrics.RecordRecommendation(string(req.ContextType), outcome, len(ranked), time.Since(start))

	logger.Debug().
		Str("recommendation_id", resp.Metadata.RecommendationID).
		Int("returned", len(ranked)).
		Bool("cold_start", profile == nil).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and limits.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.Limit <= 0 {
		req.Limit = e.config.Limits.DefaultLimit
	}
	if req.Limit > e.config.Limits.MaxLimit {
		req.Limit = e.config.Limits.MaxLimit
	}
	if !req.ContextType.Valid() {
		req.ContextType = ContextGeneral
	}

	types := make([]catalog.ContentType, 0, len(req.Types))
	for _, t := range req.Types {
		if t.Valid() {
			types = append(types, t)
		}
	}
	req.Types = types
	return req
}

func (e *Engine) loadProfile(ctx context.Context, sessionID string, logger zerolog.Logger) *preference.Profile {
	if e.profiles == nil || sessionID == "" {
		return nil
	}
	p, err := e.profiles.Analyze(ctx, sessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("profile unavailable, using cold-start weights")
		return nil
	}
	return p
}

// Wants splits expanded across strategies by weight. Strategies with zero
// weight get nothing.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func Wants(weights WeightVector, expanded int) map[Strategy]int {
	out := make(map[Strategy]int, len(Strategies))
	for _, s := range Strategies {
		if w := weights.Get(s); w > 0 {
			// the epsilon keeps float noise from rounding 6.0000000001 up to 7
			out[s] = int(math.Ceil(float64(expanded)*w - 1e-9))
		}
	}
	return out
}

// fanOut runs every weighted generator concurrently and collects results in
// strategy order.
//
//nolint:gocritic // hugeParam: base is copied per generator on purpose
func (e *Engine) fanOut(ctx context.Context, base Query, weights WeightVector, expanded int) ([]Result, []StrategyOutcome) {
	wants := Wants(weights, expanded)

	results := make([]Result, len(Strategies))
	outcomes := make([]StrategyOutcome, len(Strategies))
	var wg sync.WaitGroup

	for i, s := range Strategies {
		outcomes[i] = StrategyOutcome{Strategy: s, Weight: weights.Get(s), Requested: wants[s]}

		gen, ok := e.generators[s]
		if !ok || wants[s] == 0 {
			results[i] = Result{Strategy: s, Status: StatusSkipped}
			outcomes[i].Status = StatusSkipped
			continue
		}

		q := base
		q.Limit = wants[s]
		wg.Add(1)
		go func(idx int, g Generator, q Query) {
			defer wg.Done()
			began := time.Now()
			results[idx] = e.runGenerator(ctx, g, q)
			outcomes[idx].LatencyMS = time.Since(began).Milliseconds()
			metrics.RecordGenerator(string(g.Strategy()), string(results[idx].Status), time.Since(began))
		}(i, gen, q)
	}
	wg.Wait()

	for i := range results {
		r := &results[i]
		outcomes[i].Status = r.Status
		outcomes[i].Returned = len(r.Candidates)
		if r.Err != nil {
			outcomes[i].Error = r.Err.Error()
			e.logger.Warn().
				Str("strategy", string(r.Strategy)).
				Str("status", string(r.Status)).
				Err(r.Err).
				Msg("generator did not complete")
		}
	}
	return results, outcomes
}

// runGenerator calls g under its own deadline. A generator that ignores
// cancellation is abandoned when the deadline passes; its late result is
// discarded.
//
//nolint:gocritic // hugeParam: q passed by value so each generator owns its copy
func (e *Engine) runGenerator(ctx context.Context, g Generator, q Query) Result {
	genCtx, cancel := context.WithTimeout(ctx, e.config.Limits.GeneratorTimeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failed(g.Strategy(), fmt.Errorf("generator panic: %v", r))
			}
		}()
		done <- g.Generate(genCtx, q)
	}()

	select {
	case r := <-done:
		r.Strategy = g.Strategy()
		if r.Status == "" {
			r.Status = StatusOK
		}
		if r.Status == StatusOK && len(r.Candidates) == 0 {
			r.Status = StatusEmpty
		}
		if r.Status == StatusFailed && errors.Is(r.Err, context.DeadlineExceeded) {
			r.Status = StatusTimeout
		}
		if r.Status != StatusOK {
			r.Candidates = nil
		}
		return r
	case <-genCtx.Done():
		status := StatusTimeout
		if ctx.Err() != nil {
			status = StatusFailed
		}
		return Result{Strategy: g.Strategy(), Status: status, Err: genCtx.Err()}
	}
}

type mergeEntry struct {
	cand  Candidate
	order int
}

// Merge combines results in the order given, deduplicating by content type
// and id. A duplicate keeps the higher score together with that entry's
// reasons and item; ties keep the first. Items produced by more than one
// strategy are labelled hybrid. The output is sorted by score descending,
// stable on first encounter, and truncated to limit.
func Merge(results []Result, q *Query, limit int) []Candidate {
	byKey := make(map[string]*mergeEntry)
	var order []*mergeEntry

	for i := range results {
		for j := range results[i].Candidates {
			c := results[i].Candidates[j]
			if c.Item != nil && !q.Allows(c.Item) {
				continue
			}
			if _, excluded := q.Exclude[c.ContentID]; excluded {
				continue
			}
			if !catalog.MatchesTypes(c.ContentType, q.Types) {
				continue
			}
			c.Score = clamp01(c.Score)
			if c.Strategy == "" {
				c.Strategy = results[i].Strategy
			}

			existing, ok := byKey[c.Key()]
			if !ok {
				c.Sources = []Strategy{c.Strategy}
				c.Algorithm = c.Strategy.Algorithm()
				entry := &mergeEntry{cand: c, order: len(order)}
				byKey[c.Key()] = entry
				order = append(order, entry)
				continue
			}

			sources := existing.cand.Sources
			if !containsStrategy(sources, c.Strategy) {
				sources = append(sources, c.Strategy)
			}
			if c.Score > existing.cand.Score {
				existing.cand = c
			}
			existing.cand.Sources = sources
			existing.cand.Algorithm = existing.cand.Strategy.Algorithm()
			if len(sources) > 1 {
				existing.cand.Algorithm = AlgorithmHybrid
			}
		}
	}

	out := make([]Candidate, len(order))
	for i, entry := range order {
		out[i] = entry.cand
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsStrategy(list []Strategy, s Strategy) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
