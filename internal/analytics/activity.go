// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package analytics provides the in-memory analytics engines.
// This file contains the weekly activity aggregator, which splits each
// calendar week's active players into new (first active this week) and
// recurring (members of an older cohort).
package analytics

import (
	"sort"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// weekActivity holds the per-week counters before emission.
type weekActivity struct {
	newPlayers       int
	recurringPlayers int
}

// ActivityAggregator derives new-vs-recurring weekly active-player counts
// from a populated cohort engine.
type ActivityAggregator struct {
	window TimeWindow
	weeks  map[time.Time]*weekActivity
}

// NewActivityAggregator computes per-week counters from the cohort engine's
// state. For each calendar week, the cohort starting that week contributes
// the new players and every older cohort contributes recurring players.
func NewActivityAggregator(cohorts *CohortEngine) *ActivityAggregator {
	agg := &ActivityAggregator{
		window: cohorts.Window(),
		weeks:  make(map[time.Time]*weekActivity),
	}

	agg.window.EachWeek(func(_ int, weekStart time.Time) {
		counters := &weekActivity{}
		for _, cohort := range cohorts.Cohorts() {
			if weekStart.Before(cohort.StartDate()) {
				continue
			}
			active := cohort.ActiveCount(cohort.window.WeekIndex(weekStart))
			if cohort.StartDate().Equal(weekStart) {
				counters.newPlayers = active
			} else {
				counters.recurringPlayers += active
			}
		}
		agg.weeks[weekStart] = counters
	})

	return agg
}

// ActivePlayersPerWeek returns the new, recurring, and total player series,
// X = week-start millisecond timestamp. Aggregation order is not guaranteed
// to be chronological internally, so each series is sorted ascending by
// timestamp before emission; that sort is a postcondition of the output
// contract.
func (a *ActivityAggregator) ActivePlayersPerWeek() []models.Series {
	newPlayers := make([]models.Point, 0, len(a.weeks))
	recurringPlayers := make([]models.Point, 0, len(a.weeks))
	totalPlayers := make([]models.Point, 0, len(a.weeks))

	for weekStart, counters := range a.weeks {
		ts := models.MillisTimestamp(weekStart)
		newPlayers = append(newPlayers, models.Point{X: ts, Y: float64(counters.newPlayers)})
		recurringPlayers = append(recurringPlayers, models.Point{X: ts, Y: float64(counters.recurringPlayers)})
		totalPlayers = append(totalPlayers, models.Point{X: ts, Y: float64(counters.newPlayers + counters.recurringPlayers)})
	}

	for _, data := range [][]models.Point{newPlayers, recurringPlayers, totalPlayers} {
		sort.Slice(data, func(i, j int) bool { return data[i].X < data[j].X })
	}

	return []models.Series{
		{Label: "New players", Data: newPlayers},
		{Label: "Recurring players", Data: recurringPlayers},
		{Label: "Total players", Data: totalPlayers},
	}
}
