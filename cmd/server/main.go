// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reelrank/internal/api"
	"github.com/tomtom215/reelrank/internal/behavior"
	"github.com/tomtom215/reelrank/internal/config"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/supervisor"
	"github.com/tomtom215/reelrank/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("ReelRank stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential startup wiring
func run(cfg *config.Config) error {
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("behavior_store", cfg.Behavior.Store).
		Str("catalog_source", cfg.Catalog.Source).
		Str("feedback_store", cfg.Feedback.Store).
		Msg("Starting ReelRank")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rc, err := initRecommend(cfg, st)
	if err != nil {
		return err
	}

	recorder := behavior.NewRecorder(st.behavior, behaviorRetention(&cfg.Behavior))
	sessions := behavior.NewSessionTracker(cfg.Behavior.MaxTrackedSessions, cfg.Behavior.SessionTimeout)

	fb := initFeedback(&cfg.Feedback, st.feedback)
	defer func() {
		if err := fb.PubSub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feedback pubsub")
		}
	}()

	checks := map[string]api.ReadinessCheck{
		"catalog": func(context.Context) error {
			if state := st.catalog.State(); state == "open" {
				return errors.New("catalog circuit breaker open")
			}
			return nil
		},
		"feedback": func(context.Context) error {
			if !fb.Consumer.IsRunning() {
				return errors.New("feedback consumer not running")
			}
			return nil
		},
	}
	if st.db != nil {
		checks["database"] = st.db.Ping
	}

	handler, err := api.NewHandler(api.Dependencies{
		Recommender:     rc.Engine,
		Profiles:        rc.Analyzer,
		Weights:         rc.Engine.Adapter(),
		Sessions:        sessions,
		Recorder:        recorder,
		Publisher:       fb.Publisher,
		Feedback:        st.feedback,
		Thresholds:      feedbackThresholds(&cfg.Feedback),
		AnalyticsWindow: cfg.Feedback.AnalyticsWindow,
		RequestTimeout:  cfg.Server.RequestTimeout,
		MaxBodyBytes:    cfg.Security.MaxBodyBytes,
		ReadinessChecks: checks,
	})
	if err != nil {
		return fmt.Errorf("create api handler: %w", err)
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (security.rate_limit_disabled=true)")
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	svcLogger := logging.WithComponent("supervisor")
	add := func(layer supervisor.Layer, svc suture.Service) error {
		if _, err := tree.Add(layer, svc); err != nil {
			return err
		}
		logging.Info().Str("layer", layer.String()).Str("service", fmt.Sprint(svc)).Msg("Service added to supervisor tree")
		return nil
	}

	if err := add(supervisor.LayerData, services.NewBehaviorRetentionService(recorder, sessions, cfg.Behavior.SweepInterval, svcLogger)); err != nil {
		return err
	}
	if err := add(supervisor.LayerData, services.NewFeedbackRetentionService(st.feedback, cfg.Feedback.Retention, cfg.Feedback.SweepInterval, nil, svcLogger)); err != nil {
		return err
	}
	if rc.Index != nil {
		if err := add(supervisor.LayerData, services.NewIndexRebuildService(rc.Index, cfg.Similarity.RebuildInterval, svcLogger)); err != nil {
			return err
		}
	}
	if err := add(supervisor.LayerMessaging, fb.Consumer); err != nil {
		return err
	}
	if err := add(supervisor.LayerAPI, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)); err != nil {
		return err
	}

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, rerr := tree.UnstoppedServiceReport(); rerr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}
