// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package models provides data structures for the Ludostats application.
// This file contains the chart-ready series types shared by every analytics
// output. A Point serializes as a two-element [x, y] array so the payload can
// be handed to the charting layer without reshaping.
package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Point is one chart sample. X is either a millisecond Unix timestamp or a
// small integer offset (week number, funnel step number); Y is a count or a
// percentage.
type Point struct {
	X int64
	Y float64
}

// MarshalJSON encodes the point as the [x, y] pair expected by the charting
// layer.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.X), p.Y})
}

// UnmarshalJSON decodes a [x, y] pair.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode chart point: %w", err)
	}
	p.X = int64(pair[0])
	p.Y = pair[1]
	return nil
}

// Series is a labeled sequence of chart points. Data is ordered ascending by
// X; series ordering is part of the output contract, not an implementation
// detail.
type Series struct {
	Label string  `json:"label"`
	Data  []Point `json:"data"`
}

// MillisTimestamp converts a time to the millisecond Unix timestamp used as
// the X coordinate of time-keyed chart points.
func MillisTimestamp(t time.Time) int64 {
	return t.UnixMilli()
}

// StatsReport is the aggregate chart payload produced by one analytics run.
// Field names match the keys the dashboard reads.
type StatsReport struct {
	// WeeklyActives holds one retention series per weekly cohort plus an
	// appended average series, X = week offset since cohort start.
	WeeklyActives []Series `json:"weekly_actives"`

	// WeeklyActivesPercent is the same shape with values as percentages
	// of each cohort's starting week, week 0 omitted.
	WeeklyActivesPercent []Series `json:"weekly_actives_percent"`

	// ActivePlayersPerWeek holds the new/recurring/total player series,
	// X = week-start millisecond timestamp.
	ActivePlayersPerWeek []Series `json:"active_players_per_week"`

	// ConcurrentPlayers holds the flat-run-trimmed distinct-player
	// concurrency series, X = minute millisecond timestamp.
	ConcurrentPlayers []Series `json:"concurrent_players"`

	// EnoughPlayersPercent holds the per-hour time-share series for
	// minutes at or above the enough-players threshold.
	EnoughPlayersPercent []Series `json:"enough_players_percent"`

	// Funnel holds one conversion series per week plus an appended
	// average series, X = funnel step number.
	Funnel []Series `json:"funnel"`

	// Metadata provides run provenance information.
	Metadata ReportMetadata `json:"metadata"`
}

// ReportMetadata records provenance for a computed report.
type ReportMetadata struct {
	// WindowStart is the first day of the analyzed window.
	WindowStart time.Time `json:"window_start"`

	// WindowEnd is the last known event time in the analyzed window.
	WindowEnd time.Time `json:"window_end"`

	// EventCount is the number of events consumed by the cohort pass.
	EventCount int64 `json:"event_count"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at"`

	// RunTimeMs is the wall-clock duration of the full run.
	RunTimeMs int64 `json:"run_time_ms"`
}
