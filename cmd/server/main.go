// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package main is the entry point for the Ludostats server.
//
// Ludostats computes retention, activation-funnel, and concurrency analytics
// for a game server's player population from its request logs. One run makes
// a batch pass over the historical window and produces a chart-ready report.
//
// # Pipeline
//
//  1. Configuration: defaults, config.yaml, then environment (Koanf v2)
//  2. Event source: rotated request logs replayed oldest-first
//  3. Visitor analytics: per-day counts from the OWA-compatible service
//  4. Engines: cohort retention, weekly activity, concurrency, funnel
//  5. Output: report JSON written to disk (export mode) or served over
//     HTTP with Prometheus metrics (serve mode)
//
// # Configuration
//
// Environment overrides use the LUDOSTATS_ prefix with a double underscore
// between section and key:
//
//	export LUDOSTATS_SERVER__MODE=export
//	export LUDOSTATS_LOGS__PATH=/var/log/game/server.log
//	export LUDOSTATS_LOGS__START_DATE=2011-10-10
//	export LUDOSTATS_OWA__URL=https://owa.example.org
//	export LUDOSTATS_OWA__API_KEY=secret
//	export LUDOSTATS_OWA__SITE_ID=site1
//	./ludostats
//
// A failure to reach the visitor-analytics service aborts the run with no
// partial output: funnel percentages are meaningless without the visitor
// baseline.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/ludostats/ludostats/internal/analytics"
	"github.com/ludostats/ludostats/internal/api"
	"github.com/ludostats/ludostats/internal/config"
	"github.com/ludostats/ludostats/internal/logging"
	"github.com/ludostats/ludostats/internal/models"
	"github.com/ludostats/ludostats/internal/source"
	"github.com/ludostats/ludostats/internal/visitors"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := computeReport(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.Server.Mode == "export" {
		return writeReport(cfg.Server.OutputPath, report)
	}
	return serve(ctx, cfg, report)
}

// computeReport runs the full batch pipeline: open the log source, fetch
// the visitor baseline, and run the four engines over the window.
func computeReport(ctx context.Context, cfg *config.Config) (*models.StatsReport, error) {
	start, err := cfg.Logs.Start()
	if err != nil {
		return nil, err
	}

	src, err := source.Open(source.Config{
		Path:           cfg.Logs.Path,
		Start:          start,
		EmailIndexPath: cfg.Logs.EmailIndexPath,
		NameIndexPath:  cfg.Logs.NameIndexPath,
	})
	if err != nil {
		return nil, fmt.Errorf("open event source: %w", err)
	}

	windowStart, windowEnd := src.Bounds()
	window := analytics.TimeWindow{Start: windowStart, End: windowEnd}

	visitorClient := visitors.NewClient(visitors.Config{
		URL:     cfg.OWA.URL,
		APIKey:  cfg.OWA.APIKey,
		SiteID:  cfg.OWA.SiteID,
		Timeout: cfg.OWA.Timeout,
	})
	days, err := visitorClient.Daily(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("fetch visitor analytics: %w", err)
	}

	report, err := analytics.BuildReport(ctx, src, window, days, analytics.ReportConfig{
		Concurrency: analytics.ConcurrencyConfig{
			TrailingDays:    cfg.Analytics.TrailingDays,
			EnoughThreshold: cfg.Analytics.EnoughThreshold,
		},
		Funnel: analytics.FunnelConfig{
			SecondDayHours: cfg.Analytics.SecondDayHours,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return report, nil
}

// writeReport writes the chart payload to disk for the dashboard to pick up.
func writeReport(path string, report *models.StatsReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logging.Info().Str("path", path).Int("bytes", len(data)).Msg("report written")
	return nil
}

// serve exposes the computed report over HTTP until interrupted.
func serve(ctx context.Context, cfg *config.Config, report *models.StatsReport) error {
	router := api.NewRouter(api.NewHandler(report))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
