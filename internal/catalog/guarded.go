// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelrank/internal/cache"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/metrics"
)

// ErrUnavailable wraps lookups rejected by an open circuit breaker.
var ErrUnavailable = errors.New("catalog: temporarily unavailable")

// GuardConfig tunes GuardedStore.
type GuardConfig struct {
	// Timeout bounds every call to the backing store.
	Timeout time.Duration

	CacheSize int
	CacheTTL  time.Duration

	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// DefaultGuardConfig returns conservative defaults.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Timeout:          500 * time.Millisecond,
		CacheSize:        5000,
		CacheTTL:         2 * time.Minute,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// GuardedStore decorates a Store with a per-call timeout, a circuit breaker
// and TTL caches. ErrNotFound counts as a successful call.
type GuardedStore struct {
	inner   Store
	cfg     GuardConfig
	breaker *gobreaker.CircuitBreaker[interface{}]
	items   *cache.LRU[Item]
	lists   *cache.LRU[[]Item]
	logger  zerolog.Logger
}

var _ Store = (*GuardedStore)(nil)

// NewGuardedStore wraps inner.
func NewGuardedStore(inner Store, cfg GuardConfig) *GuardedStore {
	g := &GuardedStore{
		inner:  inner,
		cfg:    cfg,
		items:  cache.NewLRU[Item](cfg.CacheSize, cfg.CacheTTL),
		lists:  cache.NewLRU[[]Item](64, cfg.CacheTTL),
		logger: logging.WithComponent("catalog"),
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	g.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CatalogBreakerState.Set(float64(to))
			g.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Catalog circuit breaker state changed")
		},
	})
	return g
}

// State returns the breaker state name.
func (g *GuardedStore) State() string {
	return g.breaker.State().String()
}

// Get implements Store.
func (g *GuardedStore) Get(ctx context.Context, id string) (Item, error) {
	if it, ok := g.items.Get(id); ok {
		metrics.CatalogCacheHits.Inc()
		return cloneItem(it), nil
	}
	metrics.CatalogCacheMisses.Inc()

	res, err := g.execute(ctx, func(callCtx context.Context) (interface{}, error) {
		return g.inner.Get(callCtx, id)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			metrics.CatalogErrors.WithLabelValues("get").Inc()
		}
		return Item{}, err
	}

	it, ok := res.(Item)
	if !ok {
		return Item{}, fmt.Errorf("catalog get %s: unexpected result %T", id, res)
	}
	g.items.Add(id, cloneItem(it))
	return it, nil
}

// List implements Store.
func (g *GuardedStore) List(ctx context.Context, types []ContentType) ([]Item, error) {
	key := listKey(types)
	if items, ok := g.lists.Get(key); ok {
		metrics.CatalogCacheHits.Inc()
		return cloneItems(items), nil
	}
	metrics.CatalogCacheMisses.Inc()

	res, err := g.execute(ctx, func(callCtx context.Context) (interface{}, error) {
		return g.inner.List(callCtx, types)
	})
	if err != nil {
		metrics.CatalogErrors.WithLabelValues("list").Inc()
		return nil, err
	}

	items, ok := res.([]Item)
	if !ok {
		return nil, fmt.Errorf("catalog list: unexpected result %T", res)
	}
	g.lists.Add(key, cloneItems(items))
	return items, nil
}

// Invalidate drops every cached entry, e.g. after a catalog reload.
func (g *GuardedStore) Invalidate() {
	g.items.Clear()
	g.lists.Clear()
}

func (g *GuardedStore) execute(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	res, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return res, err
}

func listKey(types []ContentType) string {
	if len(types) == 0 {
		return "*"
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = cloneItem(items[i])
	}
	return out
}
