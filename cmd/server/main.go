// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/saifi/internal/api"
	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/database"
	"github.com/tomtom215/saifi/internal/logging"
	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend/storage"
	"github.com/tomtom215/saifi/internal/supervisor"
	"github.com/tomtom215/saifi/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, so this goes through the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("db_driver", cfg.Database.Driver).
		Str("model_path", cfg.Recommend.ModelPath).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Saifi recommender")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := database.Open(ctx, &cfg.Database, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open data store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing data store")
		}
	}()

	opener := storage.NewOpener()
	defer func() {
		if err := opener.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing artifact storage")
		}
	}()

	engine, err := initEngine(ctx, cfg, store, opener, logging.WithComponent("recommend"))
	if err != nil {
		// Close explicitly: Fatal exits without running defers.
		_ = store.Close()  //nolint:errcheck // exiting anyway
		_ = opener.Close() //nolint:errcheck // exiting anyway
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	metrics.SetAppInfo(version)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ENGINE LAYER ===
	tree.AddEngineService(services.NewUptimeService(startedAt, 15*time.Second))
	if ttl := cfg.Recommend.RefreshTTL(); ttl > 0 {
		tree.AddEngineService(services.NewRefreshService(engine, services.RefreshServiceConfig{
			Interval: ttl,
		}, logging.WithComponent("refresh")))
	} else {
		logging.Info().Msg("Periodic refresh disabled (refresh TTL is 0)")
	}

	// === MESSAGING LAYER ===
	natsComponents, err := InitNATS(cfg, engine, logging.WithComponent("nats"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS")
	}
	if natsComponents != nil {
		tree.AddMessagingService(services.NewTriggerService(natsComponents.Trigger()))
	}

	// === API LAYER ===
	handler := api.NewHandler(engine, store, api.HandlerConfig{
		DefaultLimit:    cfg.Recommend.DefaultLimit,
		MaxLimit:        cfg.Recommend.MaxLimit,
		RequestTimeout:  cfg.Server.Timeout,
		RefreshInterval: cfg.Recommend.ForceRefreshInterval,
	}, logging.WithComponent("api"))
	middleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, middleware),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	// === START SUPERVISOR TREE ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report is best effort
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	natsComponents.Shutdown(shutdownCtx)
	shutdownCancel()

	logging.Info().Msg("Saifi recommender stopped")
}
