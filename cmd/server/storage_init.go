// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/catalog"
	"github.com/tomtom215/reelrank/internal/config"
	"github.com/tomtom215/reelrank/internal/database"
	"github.com/tomtom215/reelrank/internal/feedback"
	"github.com/tomtom215/reelrank/internal/logging"
)

// storage holds every backing store so main can close them in order.
type storage struct {
	db     *database.DB // nil unless catalog or feedback use duckdb
	badger *badger.DB   // nil for the memory behavior store

	behavior behavior.Store
	lister   behavior.SessionLister
	catalog  *catalog.GuardedStore
	feedback feedback.Store
}

func (s *storage) Close() {
	if s.badger != nil {
		if err := s.badger.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing behavior store")
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}

func behaviorRetention(cfg *config.BehaviorConfig) behavior.Retention {
	return behavior.Retention{
		behavior.KindPageView:    cfg.PageViewRetention,
		behavior.KindSearch:      cfg.SearchRetention,
		behavior.KindInteraction: cfg.InteractionRetention,
	}
}

// initStorage opens the configured stores. On error, whatever was already
// opened is closed.
func initStorage(ctx context.Context, cfg *config.Config) (st *storage, err error) {
	st = &storage{}
	defer func() {
		if err != nil {
			st.Close()
		}
	}()

	retention := behaviorRetention(&cfg.Behavior)
	switch cfg.Behavior.Store {
	case "badger":
		st.badger, err = behavior.OpenBadger(cfg.Behavior.Path, cfg.Server.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("open behavior store: %w", err)
		}
		bs := behavior.NewBadgerStore(st.badger, retention)
		st.behavior, st.lister = bs, bs
		logging.Info().Str("path", cfg.Behavior.Path).Msg("Behavior store: badger")
	default:
		ms := behavior.NewMemoryStore()
		st.behavior, st.lister = ms, ms
		logging.Info().Msg("Behavior store: memory")
	}

	if cfg.Catalog.Source == "duckdb" || cfg.Feedback.Store == "duckdb" {
		st.db, err = database.New(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}

	inner, err := initCatalog(ctx, cfg, st.db)
	if err != nil {
		return nil, err
	}
	st.catalog = catalog.NewGuardedStore(inner, catalog.GuardConfig{
		Timeout:          cfg.Catalog.CallTimeout,
		CacheSize:        cfg.Catalog.CacheSize,
		CacheTTL:         cfg.Catalog.CacheTTL,
		FailureThreshold: cfg.Catalog.BreakerMaxFailures,
		OpenTimeout:      cfg.Catalog.BreakerTimeout,
		HalfOpenRequests: 1,
	})

	switch cfg.Feedback.Store {
	case "duckdb":
		fs := feedback.NewDuckDBStore(st.db.Conn())
		if err = fs.CreateTables(ctx); err != nil {
			return nil, fmt.Errorf("create feedback tables: %w", err)
		}
		st.feedback = fs
		logging.Info().Msg("Feedback store: duckdb")
	default:
		st.feedback = feedback.NewMemoryStore()
		logging.Info().Msg("Feedback store: memory")
	}
	return st, nil
}

func initCatalog(ctx context.Context, cfg *config.Config, db *database.DB) (catalog.Store, error) {
	var seed *catalog.MemoryStore
	if cfg.Catalog.SeedFile != "" {
		var err error
		if seed, err = catalog.LoadFile(cfg.Catalog.SeedFile); err != nil {
			return nil, fmt.Errorf("load catalog seed: %w", err)
		}
	}

	if cfg.Catalog.Source != "duckdb" {
		if seed == nil {
			logging.Warn().Msg("No catalog seed file configured, catalog is empty")
			seed = catalog.NewMemoryStore()
		}
		logging.Info().Int("items", seed.Len()).Msg("Catalog: file")
		return seed, nil
	}

	store := catalog.NewDuckDBStore(db.Conn())
	if err := store.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("create catalog table: %w", err)
	}
	if seed != nil {
		items, err := seed.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		loadCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := store.Upsert(loadCtx, items...); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		logging.Info().Int("items", len(items)).Msg("Catalog seeded into duckdb")
	}
	logging.Info().Str("path", db.Path()).Msg("Catalog: duckdb")
	return store, nil
}
