// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/sillage/internal/api"
	"github.com/tomtom215/sillage/internal/breaker"
	"github.com/tomtom215/sillage/internal/config"
	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/recommend"
	"github.com/tomtom215/sillage/internal/supervisor"
	"github.com/tomtom215/sillage/internal/supervisor/services"
	"github.com/tomtom215/sillage/internal/tracking"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("similarity_backend", cfg.Similarity.Backend).
		Str("session_backend", cfg.Sessions.Backend).
		Str("events_backend", cfg.Events.Backend).
		Msg("Starting Sillage")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer stores.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		stores.Close()
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	transport, err := initEvents(ctx, cfg, stores.db)
	if err != nil {
		stores.Close()
		logging.Fatal().Err(err).Msg("Failed to initialize view event transport")
	}
	defer transport.Close()
	if transport.router != nil {
		tree.AddMessagingService(transport.router)
	}

	tracker := tracking.NewTracker(trackerConfig(cfg), stores.sessions, transport.sink, logging.WithComponent("tracker"))
	tree.AddMessagingService(tracker)

	engine, err := recommend.NewEngine(engineConfig(cfg), recommend.Dependencies{
		Catalog:      stores.db,
		Orders:       stores.db,
		Similarities: stores.similarities,
		Views:        stores.db,
		Tracker:      tracker,
	}, logging.WithComponent("recommend"))
	if err != nil {
		transport.Close()
		stores.Close()
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	tree.AddDataService(services.NewCacheSweeperService(engine.Cache(), cfg.Recommend.SweepInterval, logging.WithComponent("cache")))

	rebuilds := services.NewRebuildService(engine, stores.db, services.RebuildConfig{
		RatePerSecond: cfg.Rebuild.RatePerSecond,
		Burst:         cfg.Rebuild.Burst,
		QueueSize:     cfg.Rebuild.QueueSize,
	}, logging.WithComponent("rebuild"))
	tree.AddDataService(rebuilds)

	handler, err := api.NewHandler(api.Dependencies{
		Engine:       engine,
		Similarities: stores.similarities,
		Rebuilds:     rebuilds,
		Database:     stores.db,
		Cache:        engine.Cache(),
		CookieName:   cfg.Sessions.CookieName,
	})
	if err != nil {
		transport.Close()
		stores.Close()
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}
	router := api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(&cfg.Security))

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", srv.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	stop()

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	stats := rebuilds.Stats()
	logging.Info().
		Int64("rebuilds_completed", stats.Completed).
		Int64("rebuilds_failed", stats.Failed).
		Int("tracker_pending", tracker.Pending()).
		Msg("Application stopped gracefully")
}

// engineConfig maps the recommend config section onto the engine config.
func engineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	ec.StageTimeout = cfg.Recommend.StageTimeout
	ec.RecentViews = cfg.Recommend.RecentViews
	ec.Breaker = breaker.DefaultSettings()
	if cfg.Recommend.BreakerFailureRatio > 0 {
		ec.Breaker.FailureRatio = cfg.Recommend.BreakerFailureRatio
	}
	if cfg.Recommend.BreakerMinRequests > 0 {
		ec.Breaker.MinRequests = cfg.Recommend.BreakerMinRequests
	}
	if cfg.Recommend.BreakerOpenTimeout > 0 {
		ec.Breaker.Timeout = cfg.Recommend.BreakerOpenTimeout
	}
	return ec
}

func trackerConfig(cfg *config.Config) tracking.Config {
	return tracking.Config{
		Workers:      cfg.Tracker.Workers,
		QueueSize:    cfg.Tracker.QueueSize,
		WriteTimeout: cfg.Tracker.WriteTimeout,
	}
}

// describe is used in error messages for a backend choice.
func describe(kind, backend string) string {
	return fmt.Sprintf("%s backend %q", kind, backend)
}
