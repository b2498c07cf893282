// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package analytics provides the in-memory analytics engines.
// This file contains weekly cohort retention: players are partitioned into
// cohorts by the week of their first recorded activity, and each cohort
// tracks which of its members were active in every subsequent week.
package analytics

import (
	"context"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// Cohort is the set of players whose first recorded activity fell in a given
// calendar week. Its identity is its start week; the week-0 active set is the
// authoritative membership. Created empty, mutated only by recordAction,
// never removed.
type Cohort struct {
	// window spans from the cohort's own start week to the overall
	// window end, so week offsets are relative to this cohort.
	window TimeWindow

	// weeklyActives maps week offset to the distinct players from this
	// cohort active in that week. Offset 0 is the membership set.
	weeklyActives map[int]map[int64]struct{}
}

// StartDate returns the first day of the cohort's start week.
func (c *Cohort) StartDate() time.Time {
	return c.window.Start
}

// recordAction claims the event for this cohort if it belongs here: either
// the event falls in the cohort's own starting week, or the player is already
// a week-0 member (their first activity was in this cohort's starting week).
// Returns false when the event belongs to a different cohort.
func (c *Cohort) recordAction(ev models.Event) bool {
	if ev.Timestamp.Before(c.window.Start) {
		return false
	}

	weekNb := c.window.WeekIndex(ev.Timestamp)
	if weekNb != 0 && !c.isMember(ev.PlayerID) {
		return false
	}

	c.recordWeeklyActive(weekNb, ev.PlayerID)
	return true
}

// isMember reports whether the player belongs to this cohort's week-0 set.
func (c *Cohort) isMember(playerID int64) bool {
	_, ok := c.weeklyActives[0][playerID]
	return ok
}

func (c *Cohort) recordWeeklyActive(weekNb int, playerID int64) {
	actives, ok := c.weeklyActives[weekNb]
	if !ok {
		actives = make(map[int64]struct{})
		c.weeklyActives[weekNb] = actives
	}
	actives[playerID] = struct{}{}
}

// ActiveCount returns the number of distinct cohort members active in the
// given week offset, zero for weeks with no recorded activity.
func (c *Cohort) ActiveCount(weekNb int) int {
	return len(c.weeklyActives[weekNb])
}

// WeeklyActives returns the cohort's active-player counts for every week
// from its start week to the end of the overall window, zero-filled. X is
// the week offset since cohort start.
func (c *Cohort) WeeklyActives() models.Series {
	series := models.Series{
		Label: c.window.Start.Format("2006-01-02"),
		Data:  make([]models.Point, 0, c.window.Weeks()),
	}
	c.window.EachWeek(func(weekNb int, _ time.Time) {
		series.Data = append(series.Data, models.Point{
			X: int64(weekNb),
			Y: float64(c.ActiveCount(weekNb)),
		})
	})
	return series
}

// WeeklyActivesPercent returns the cohort's retention series: each week's
// active count as a percentage of the week-0 membership, rounded to one
// decimal. Week 0 is omitted (definitionally 100%). An empty week-0 set
// yields 0% for every week.
func (c *Cohort) WeeklyActivesPercent() models.Series {
	series := models.Series{
		Label: c.window.Start.Format("2006-01-02"),
	}
	base := c.ActiveCount(0)
	c.window.EachWeek(func(weekNb int, _ time.Time) {
		if weekNb == 0 {
			return
		}
		percent := 0.0
		if base > 0 {
			percent = round1(float64(c.ActiveCount(weekNb)) * 100.0 / float64(base))
		}
		series.Data = append(series.Data, models.Point{X: int64(weekNb), Y: percent})
	})
	return series
}

// CohortEngine partitions players into weekly first-activity cohorts across
// an overall window. Exactly one cohort exists per calendar week of the
// window, ordered by ascending start date.
type CohortEngine struct {
	window  TimeWindow
	cohorts []*Cohort
	events  int64
}

// NewCohortEngine creates one empty cohort per week of the overall window.
func NewCohortEngine(window TimeWindow) *CohortEngine {
	engine := &CohortEngine{
		window:  window,
		cohorts: make([]*Cohort, 0, window.Weeks()),
	}
	window.EachWeek(func(_ int, weekStart time.Time) {
		engine.cohorts = append(engine.cohorts, &Cohort{
			window:        TimeWindow{Start: weekStart, End: window.End},
			weeklyActives: make(map[int]map[int64]struct{}),
		})
	})
	return engine
}

// Ingest consumes the full event stream once, assigning every event to the
// oldest cohort that claims it. Trying cohorts oldest-first pins a returning
// player's activity to the cohort of their first active week, never the
// current week: a player belongs to exactly one cohort for the lifetime of
// the run.
func (e *CohortEngine) Ingest(ctx context.Context, src EventSource) error {
	return src.Scan(ctx, time.Time{}, time.Time{}, func(ev models.Event) error {
		e.record(ev)
		return nil
	})
}

func (e *CohortEngine) record(ev models.Event) {
	e.events++
	for _, cohort := range e.cohorts {
		if cohort.recordAction(ev) {
			return
		}
	}
	// Unclaimed events are dropped; cannot happen for events inside the
	// overall window since a cohort exists for every week.
}

// Cohorts returns the cohorts in ascending start-date order.
func (e *CohortEngine) Cohorts() []*Cohort {
	return e.cohorts
}

// Window returns the overall window the engine was built over.
func (e *CohortEngine) Window() TimeWindow {
	return e.window
}

// EventCount returns the number of events consumed so far.
func (e *CohortEngine) EventCount() int64 {
	return e.events
}

// WeeklyActives returns one retention series per cohort, ascending by cohort
// start date.
func (e *CohortEngine) WeeklyActives() []models.Series {
	out := make([]models.Series, 0, len(e.cohorts))
	for _, cohort := range e.cohorts {
		out = append(out, cohort.WeeklyActives())
	}
	return out
}

// WeeklyActivesPercent returns one retention-percentage series per cohort,
// ascending by cohort start date.
func (e *CohortEngine) WeeklyActivesPercent() []models.Series {
	out := make([]models.Series, 0, len(e.cohorts))
	for _, cohort := range e.cohorts {
		out = append(out, cohort.WeeklyActivesPercent())
	}
	return out
}
