// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

// Package main is the entry point for the Runetrics server.
//
// Runetrics scrapes the public RuneScape player counters on a fixed
// interval, appends the observations to DuckDB, and serves time-bucketed
// population analytics over a JSON API.
//
// Startup order:
//
//  1. Configuration: defaults → optional config.yaml → environment (Koanf v2)
//  2. Logging: zerolog, level/format from configuration
//  3. Database: DuckDB with the append-only observation schema
//  4. Scraper: HTTP client with circuit breaker + interval poller (optional)
//  5. HTTP server: chi router with the query API and /metrics
//  6. Supervisor: suture tree running the poller and the server
//
// Shutdown is graceful on SIGINT/SIGTERM: the poller finishes its cycle,
// the HTTP server drains in-flight requests, and the database checkpoints
// on close.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runetrics/runetrics/internal/api"
	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/database"
	"github.com/runetrics/runetrics/internal/logging"
	"github.com/runetrics/runetrics/internal/scraper"
	"github.com/runetrics/runetrics/internal/supervisor"
)

// version is stamped by the build via -ldflags "-X main.version=...".
var version = "dev"

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

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("scraper_enabled", cfg.Scraper.Enabled).
		Dur("scrape_interval", cfg.Scraper.Interval).
		Msg("Starting Runetrics")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})

	handler := api.NewHandler(db, &cfg.API, version)

	if cfg.Scraper.Enabled {
		client := scraper.NewClient(&cfg.Scraper)
		if err := client.Ping(ctx); err != nil {
			logging.Warn().Err(err).Msg("Player counter endpoint unreachable (will retry)")
		}

		poller := scraper.NewPoller(client, db, cfg.Scraper.Interval)
		handler.SetLastScrapeFunc(func() time.Time {
			return poller.Stats().LastSuccess
		})
		tree.AddIngestService(poller)
		logging.Info().Msg("Scrape poller added to supervisor tree")
	} else {
		logging.Info().Msg("Scraper disabled - serving stored observations only")
	}

	router := api.NewRouter(handler, &cfg.API)
	server := api.NewServer(&cfg.Server, router.Setup())
	tree.AddAPIService(server)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
