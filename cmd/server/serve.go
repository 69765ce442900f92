// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/matchreporter/internal/api"
	"github.com/tomtom215/matchreporter/internal/logging"
	"github.com/tomtom215/matchreporter/internal/supervisor"
	"github.com/tomtom215/matchreporter/internal/supervisor/services"
)

var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// runServe builds the supervisor tree and blocks until SIGINT or SIGTERM.
func runServe(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Match Reporter with supervisor tree")

	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	handlerCfg := api.HandlerConfig{
		Version:     version,
		Environment: cfg.Server.Environment,
	}
	if c.coordinator != nil {
		handlerCfg.Sync = c.coordinator
	}
	if c.fogis != nil {
		handlerCfg.FOGIS = c.fogis
	}
	handler := api.NewHandler(c.db, handlerCfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewCheckpointService(c.db, cfg.Database.CheckpointInterval))
		logging.Info().Dur("interval", cfg.Database.CheckpointInterval).Msg("Checkpoint service added")
	}

	if c.coordinator != nil && cfg.Sync.Enabled {
		tree.AddMessagingService(services.NewSyncService(c.coordinator))
		logging.Info().Msg("Sync coordinator added to supervisor tree")
	} else {
		logging.Info().Msg("Background sync disabled")
	}
	if c.bus != nil {
		tree.AddMessagingService(services.NewOutcomeLoggerService(c.bus))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	errCh := tree.ServeBackground(ctx)

	// The channel delivers exactly one value and is never closed.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}
