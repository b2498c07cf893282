// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package analytics provides the in-memory analytics engines.
// This file assembles the chart-ready report: it runs each engine over the
// event stream once and collects their outputs into the aggregate payload
// the dashboard consumes.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ludostats/ludostats/internal/logging"
	"github.com/ludostats/ludostats/internal/metrics"
	"github.com/ludostats/ludostats/internal/models"
)

// ReportConfig configures a full analytics run.
type ReportConfig struct {
	Concurrency ConcurrencyConfig
	Funnel      FunnelConfig
}

// DefaultReportConfig returns sensible default configuration.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Concurrency: DefaultConcurrencyConfig(),
		Funnel:      DefaultFunnelConfig(),
	}
}

// WithAverage appends an "Average" series to a set of like-shaped series:
// for every X present in any series, the mean of the Y values across the
// series carrying that X, rounded to one decimal.
func WithAverage(set []models.Series) []models.Series {
	type total struct {
		sum     float64
		nbAvail int
	}
	totals := make(map[int64]*total)

	for _, series := range set {
		for _, point := range series.Data {
			if t, ok := totals[point.X]; ok {
				t.sum += point.Y
				t.nbAvail++
			} else {
				totals[point.X] = &total{sum: point.Y, nbAvail: 1}
			}
		}
	}

	averages := make([]models.Point, 0, len(totals))
	for x, t := range totals {
		averages = append(averages, models.Point{
			X: x,
			Y: round1(t.sum / float64(t.nbAvail)),
		})
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].X < averages[j].X })

	return append(set, models.Series{Label: "Average", Data: averages})
}

// BuildReport runs the cohort, activity, concurrency, and funnel engines
// over the event source once each and assembles the chart payload. The
// engines own independent accumulators and never share mutable state, so
// traversal order between them does not matter; within each traversal the
// source's chronological ordering is the one guarantee relied upon.
func BuildReport(ctx context.Context, src EventSource, window TimeWindow, visitors []models.DailyVisitors, config ReportConfig) (*models.StatsReport, error) {
	started := time.Now()

	cohorts := NewCohortEngine(window)
	if err := runStage("cohort", func() error { return cohorts.Ingest(ctx, src) }); err != nil {
		return nil, fmt.Errorf("cohort ingestion: %w", err)
	}
	metrics.AddEventsProcessed(cohorts.EventCount())

	activity := NewActivityAggregator(cohorts)

	concurrency := NewConcurrencyEstimator(window.End, config.Concurrency)
	if err := runStage("concurrency", func() error { return concurrency.Ingest(ctx, src) }); err != nil {
		return nil, fmt.Errorf("concurrency ingestion: %w", err)
	}

	funnel := NewFunnelEngine(window, config.Funnel)
	funnel.MergeVisitors(visitors)
	if err := runStage("funnel", func() error { return funnel.Ingest(ctx, src) }); err != nil {
		return nil, fmt.Errorf("funnel ingestion: %w", err)
	}

	report := &models.StatsReport{
		WeeklyActives:        WithAverage(cohorts.WeeklyActives()),
		WeeklyActivesPercent: WithAverage(cohorts.WeeklyActivesPercent()),
		ActivePlayersPerWeek: activity.ActivePlayersPerWeek(),
		ConcurrentPlayers:    []models.Series{concurrency.ConcurrentSeriesTrimmed()},
		EnoughPlayersPercent: concurrency.TimeShareByHour(),
		Funnel:               WithAverage(funnel.WeeklyStepConversion()),
		Metadata: models.ReportMetadata{
			WindowStart: window.Start,
			WindowEnd:   window.End,
			EventCount:  cohorts.EventCount(),
			GeneratedAt: time.Now(),
			RunTimeMs:   time.Since(started).Milliseconds(),
		},
	}

	logging.Info().
		Int64("events", report.Metadata.EventCount).
		Int64("run_time_ms", report.Metadata.RunTimeMs).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Msg("analytics report computed")

	return report, nil
}

// runStage times one engine pass and records its duration.
func runStage(stage string, fn func() error) error {
	started := time.Now()
	err := fn()
	metrics.ObserveAnalyticsStage(stage, time.Since(started))
	if err == nil {
		logging.Debug().
			Str("stage", stage).
			Dur("elapsed", time.Since(started)).
			Msg("analytics stage finished")
	}
	return err
}
