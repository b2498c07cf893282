// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package analytics provides the in-memory analytics engines: weekly cohort
// retention, weekly activity aggregation, minute-level concurrency
// estimation, and the activation funnel. Each engine makes one full pass over
// the normalized event stream and accumulates its own state; no engine
// mutates another's.
//
// All engines share TimeWindow for week/hour/minute arithmetic. Every engine
// depends on a single ordering guarantee: the event stream is chronologically
// non-decreasing.
package analytics

import (
	"context"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// EventSource supplies a finite, restartable, lazily-produced sequence of
// normalized events in non-decreasing timestamp order. Scan replays events
// with timestamps in [start, end), calling fn for each; a zero start or end
// leaves that bound open. Scan returns the first error from fn, aborting the
// traversal.
type EventSource interface {
	Scan(ctx context.Context, start, end time.Time, fn func(models.Event) error) error
}

// TimeWindow is a half-open date range with week/hour/minute arithmetic.
// Start must not be after End; the caller guarantees the invariant and all
// index methods assume their argument is not before Start. Immutable once
// constructed.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

const week = 7 * 24 * time.Hour

// WeekIndex returns the number of whole weeks between Start and t.
func (w TimeWindow) WeekIndex(t time.Time) int {
	return int(t.Sub(w.Start) / week)
}

// HourIndex returns the number of whole hours between Start and t.
func (w TimeWindow) HourIndex(t time.Time) int {
	return int(t.Sub(w.Start) / time.Hour)
}

// MinuteIndex returns the number of whole minutes between Start and t.
func (w TimeWindow) MinuteIndex(t time.Time) int {
	return int(t.Sub(w.Start) / time.Minute)
}

// DateOfWeek returns the start date of the given week offset.
func (w TimeWindow) DateOfWeek(weekNb int) time.Time {
	return w.Start.AddDate(0, 0, 7*weekNb)
}

// Weeks returns the number of weekly buckets in the window, including the
// week containing End.
func (w TimeWindow) Weeks() int {
	return w.WeekIndex(w.End) + 1
}

// EachWeek calls fn for every week in the window in ascending order, passing
// the week offset and its start date. The enumeration covers week 0 through
// the week containing End, inclusive.
func (w TimeWindow) EachWeek(fn func(weekNb int, weekStart time.Time)) {
	total := w.WeekIndex(w.End)
	for weekNb := 0; weekNb <= total; weekNb++ {
		fn(weekNb, w.DateOfWeek(weekNb))
	}
}

// HoursBetween returns the number of whole hours from a to b.
func HoursBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Hour)
}
