// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package analytics provides the in-memory analytics engines.
// This file contains the concurrency estimator: events are bucketed into
// one-minute slices over a trailing window and reduced to distinct-player
// time series and per-hour time-share metrics.
package analytics

import (
	"context"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// ConcurrencyConfig configures the concurrency estimator.
type ConcurrencyConfig struct {
	// TrailingDays is the length of the trailing window ending at the
	// stream's last known event time (default: 30).
	TrailingDays int

	// EnoughThreshold is the minimum distinct concurrent players for a
	// minute to count as "enough" in the time-share metric (default: 3).
	EnoughThreshold int
}

// DefaultConcurrencyConfig returns sensible default configuration.
func DefaultConcurrencyConfig() ConcurrencyConfig {
	return ConcurrencyConfig{
		TrailingDays:    30,
		EnoughThreshold: 3,
	}
}

// ConcurrencyEstimator buckets events by minute offset over a trailing
// window; each bucket holds the distinct players seen in that minute.
type ConcurrencyEstimator struct {
	window  TimeWindow
	enough  int
	minutes []map[int64]struct{}
}

// NewConcurrencyEstimator creates an estimator over the trailing window
// ending at end, with one bucket per minute.
func NewConcurrencyEstimator(end time.Time, config ConcurrencyConfig) *ConcurrencyEstimator {
	if config.TrailingDays == 0 {
		config.TrailingDays = 30
	}
	if config.EnoughThreshold == 0 {
		config.EnoughThreshold = 3
	}

	window := TimeWindow{Start: end.AddDate(0, 0, -config.TrailingDays), End: end}
	return &ConcurrencyEstimator{
		window:  window,
		enough:  config.EnoughThreshold,
		minutes: make([]map[int64]struct{}, window.MinuteIndex(end)+1),
	}
}

// Window returns the trailing window the estimator covers.
func (c *ConcurrencyEstimator) Window() TimeWindow {
	return c.window
}

// Ingest consumes the event stream from the trailing window start onward,
// recording each player into the bucket of the event's minute offset.
func (c *ConcurrencyEstimator) Ingest(ctx context.Context, src EventSource) error {
	return src.Scan(ctx, c.window.Start, time.Time{}, func(ev models.Event) error {
		minuteNb := c.window.MinuteIndex(ev.Timestamp)
		if minuteNb < 0 || minuteNb >= len(c.minutes) {
			return nil
		}
		if c.minutes[minuteNb] == nil {
			c.minutes[minuteNb] = make(map[int64]struct{})
		}
		c.minutes[minuteNb][ev.PlayerID] = struct{}{}
		return nil
	})
}

// ConcurrentSeries returns one point per minute of the trailing window,
// (minute millisecond timestamp, distinct player count), ascending and
// strictly increasing in X.
func (c *ConcurrencyEstimator) ConcurrentSeries() []models.Point {
	data := make([]models.Point, len(c.minutes))
	for minuteNb, players := range c.minutes {
		minuteStart := c.window.Start.Add(time.Duration(minuteNb) * time.Minute)
		data[minuteNb] = models.Point{
			X: models.MillisTimestamp(minuteStart),
			Y: float64(len(players)),
		}
	}
	return data
}

// ConcurrentSeriesTrimmed removes interior points inside flat runs of three
// or more equal consecutive values, keeping only points adjacent to a value
// change. The first and last minute are never emitted since only interior
// indices are evaluated. This halves the chart payload without losing shape.
func (c *ConcurrencyEstimator) ConcurrentSeriesTrimmed() models.Series {
	full := c.ConcurrentSeries()

	trimmed := make([]models.Point, 0, len(full))
	for i := 1; i+1 < len(full); i++ {
		if full[i-1].Y != full[i].Y || full[i].Y != full[i+1].Y {
			trimmed = append(trimmed, full[i])
		}
	}

	return models.Series{Label: "Concurrent players", Data: trimmed}
}

// TimeShareByHour returns, for each full hour of the trailing window, the
// percentage of its 60 one-minute samples at or above the enough-players
// threshold, and the complementary percentage. Trailing partial-hour samples
// are ignored, not zero-padded.
func (c *ConcurrencyEstimator) TimeShareByHour() []models.Series {
	enoughShare := []models.Point{}
	notEnoughShare := []models.Point{}

	hours := HoursBetween(c.window.Start, c.window.End)
	minuteNb := 0
	for i := 0; i < hours; i++ {
		timesEnough := 0
		for j := 0; j < 60; j++ {
			if len(c.minutes[minuteNb]) >= c.enough {
				timesEnough++
			}
			minuteNb++
		}

		// The enough share keeps the historical truncating integer
		// division; the complement was always float-rounded.
		percentEnough := float64(timesEnough * 100 / 60)
		percentNotEnough := round1(float64(60-timesEnough) * 100.0 / 60.0)

		hourStart := c.window.Start.Add(time.Duration(i) * time.Hour)
		ts := models.MillisTimestamp(hourStart)
		enoughShare = append(enoughShare, models.Point{X: ts, Y: percentEnough})
		notEnoughShare = append(notEnoughShare, models.Point{X: ts, Y: percentNotEnough})
	}

	return []models.Series{
		{Label: "Percentage of time with enough players", Data: enoughShare},
		{Label: "Percentage of time with NOT enough players", Data: notEnoughShare},
	}
}
