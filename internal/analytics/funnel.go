// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package analytics provides the in-memory analytics engines.
// This file contains the activation funnel: an ordered sequence of
// milestones from first visit to a retained second-day player. The first two
// steps are fed by the external visitor-analytics provider; the rest are
// driven by a per-player forward-only state machine over the event stream.
package analytics

import (
	"context"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// FunnelStep is one milestone of the activation funnel, in strict order.
type FunnelStep int

const (
	StepFirstVisit FunnelStep = iota
	StepRegistration
	StepGameLoaded
	StepFirstGameCreated
	StepGameVoting
	StepGameComplete
	StepSecondGame
	StepSecondDay

	numFunnelSteps
)

var funnelStepNames = [numFunnelSteps]string{
	"first_visit",
	"registration",
	"game_loaded",
	"first_game_created",
	"game_voting",
	"game_complete",
	"second_game",
	"second_day",
}

// String returns the step's wire name.
func (s FunnelStep) String() string {
	if s < 0 || s >= numFunnelSteps {
		return "unknown"
	}
	return funnelStepNames[s]
}

// FunnelConfig configures the funnel engine.
type FunnelConfig struct {
	// SecondDayHours is how many whole hours must have elapsed since a
	// player's first event before a subsequent event promotes them from
	// second_game to second_day (default: 15).
	SecondDayHours int
}

// DefaultFunnelConfig returns sensible default configuration.
func DefaultFunnelConfig() FunnelConfig {
	return FunnelConfig{SecondDayHours: 15}
}

// playerFunnelState is the per-player state machine record. The step only
// ever moves forward, one step per event at most.
type playerFunnelState struct {
	step          FunnelStep
	firstActionAt time.Time
	weekNb        int
}

// stepCounts holds one week's per-step counters, indexed by FunnelStep.
// Counters are monotonically accumulated, never decremented.
type stepCounts [numFunnelSteps]int

// FunnelEngine runs the per-player funnel state machine over the event
// stream, merged with externally supplied visitor counts, producing weekly
// step counts and conversion percentages.
type FunnelEngine struct {
	window         TimeWindow
	secondDayHours int
	steps          []stepCounts
	players        map[int64]*playerFunnelState
}

// NewFunnelEngine creates a funnel engine with zero-filled step counters for
// every week of the window.
func NewFunnelEngine(window TimeWindow, config FunnelConfig) *FunnelEngine {
	if config.SecondDayHours == 0 {
		config.SecondDayHours = 15
	}
	return &FunnelEngine{
		window:         window,
		secondDayHours: config.SecondDayHours,
		steps:          make([]stepCounts, window.Weeks()),
		players:        make(map[int64]*playerFunnelState),
	}
}

// MergeVisitors folds per-day visitor counts into the first two funnel
// steps, aggregated into the week of each visit day: first_visit gains the
// day's new visitors, registration the new visitors that did not bounce.
// Days outside the window are ignored.
func (e *FunnelEngine) MergeVisitors(days []models.DailyVisitors) {
	for _, day := range days {
		if day.Date.Before(e.window.Start) {
			continue
		}
		weekNb := e.window.WeekIndex(day.Date)
		if weekNb >= len(e.steps) {
			continue
		}
		e.steps[weekNb][StepFirstVisit] += day.NewVisitors
		e.steps[weekNb][StepRegistration] += day.NewVisitors - day.Bounces
	}
}

// Ingest consumes the full event stream once, advancing each player's state
// machine.
func (e *FunnelEngine) Ingest(ctx context.Context, src EventSource) error {
	return src.Scan(ctx, time.Time{}, time.Time{}, func(ev models.Event) error {
		e.processEvent(ev)
		return nil
	})
}

// processEvent advances a player by at most one step. A player's first
// qualifying event creates their state at game_loaded, counted into the
// event's own week; every later transition is counted into the player's
// entry week. Transitions are strictly gated on the current step, so the
// step never regresses and never skips.
func (e *FunnelEngine) processEvent(ev models.Event) {
	if ev.Timestamp.Before(e.window.Start) {
		return
	}
	actionWeekNb := e.window.WeekIndex(ev.Timestamp)
	if actionWeekNb >= len(e.steps) {
		return
	}

	state, ok := e.players[ev.PlayerID]
	if !ok {
		state = &playerFunnelState{
			step:          StepGameLoaded,
			firstActionAt: ev.Timestamp,
			weekNb:        actionWeekNb,
		}
		e.players[ev.PlayerID] = state
		e.steps[actionWeekNb][StepGameLoaded]++
	}

	switch {
	case ev.Action == "create" && state.step == StepGameLoaded:
		e.advance(state, StepFirstGameCreated)

	case ev.Action == "voting" && state.step == StepFirstGameCreated:
		e.advance(state, StepGameVoting)

	case ev.Action == "complete" && state.step == StepGameVoting:
		e.advance(state, StepGameComplete)

	case (ev.Action == "create" || ev.Action == "join") && state.step == StepGameComplete:
		e.advance(state, StepSecondGame)

	case state.step == StepSecondGame &&
		HoursBetween(state.firstActionAt, ev.Timestamp) > e.secondDayHours:
		// Time-based rather than action-triggered. A player who never
		// sends another event after second_game never advances.
		e.advance(state, StepSecondDay)
	}
}

func (e *FunnelEngine) advance(state *playerFunnelState, to FunnelStep) {
	state.step = to
	e.steps[state.weekNb][to]++
}

// StepCount returns the counter for a step in a given week.
func (e *FunnelEngine) StepCount(weekNb int, step FunnelStep) int {
	if weekNb < 0 || weekNb >= len(e.steps) {
		return 0
	}
	return e.steps[weekNb][step]
}

// PlayerStep returns the current funnel step for a player, and whether the
// player has entered the funnel at all.
func (e *FunnelEngine) PlayerStep(playerID int64) (FunnelStep, bool) {
	state, ok := e.players[playerID]
	if !ok {
		return 0, false
	}
	return state.step, true
}

// WeeklyStepConversion returns one series per week, X = funnel step number,
// Y = that step's count as a percentage of the previous step's count.
// Percentages keep the historical truncating integer division: the
// clamp-at-50 rule below depends on it. A zero previous-step count yields 0.
// A raw ratio above 100 is an upstream visitor-data artifact and is clamped
// to 50 rather than reported as-is. A final overall-conversion value (last
// step over first step, rounded to two decimals) is appended after the
// per-step percentages.
func (e *FunnelEngine) WeeklyStepConversion() []models.Series {
	out := make([]models.Series, 0, len(e.steps))

	e.window.EachWeek(func(weekNb int, weekStart time.Time) {
		series := models.Series{
			Label: weekStart.Format("2006-01-02"),
			Data:  make([]models.Point, 0, numFunnelSteps),
		}

		counts := e.steps[weekNb]
		for step := StepRegistration; step < numFunnelSteps; step++ {
			current := counts[step]
			previous := counts[step-1]

			percent := 0
			if previous != 0 {
				percent = current * 100 / previous
				if percent > 100 {
					percent = 50
				}
			}
			series.Data = append(series.Data, models.Point{X: int64(step), Y: float64(percent)})
		}

		overall := 0.0
		if counts[StepFirstVisit] != 0 {
			overall = round2(float64(counts[numFunnelSteps-1]) * 100.0 / float64(counts[StepFirstVisit]))
		}
		series.Data = append(series.Data, models.Point{X: int64(numFunnelSteps), Y: overall})

		out = append(out, series)
	})

	return out
}
