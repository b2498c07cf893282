// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// dayEstimator builds an estimator over a one-day trailing window and feeds
// it the given events.
func dayEstimator(t *testing.T, end time.Time, events []models.Event) *ConcurrencyEstimator {
	t.Helper()
	estimator := NewConcurrencyEstimator(end, ConcurrencyConfig{TrailingDays: 1, EnoughThreshold: 3})
	if err := estimator.Ingest(context.Background(), &sliceSource{events: events}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	return estimator
}

func TestConcurrencyEstimatorDefaults(t *testing.T) {

	end := testWindowStart.Add(days(60))
	estimator := NewConcurrencyEstimator(end, ConcurrencyConfig{})

	window := estimator.Window()
	if want := end.AddDate(0, 0, -30); !window.Start.Equal(want) {
		t.Errorf("window start = %v, want %v", window.Start, want)
	}
	if got, want := len(estimator.minutes), 30*24*60+1; got != want {
		t.Errorf("bucket count = %d, want %d", got, want)
	}
}

func TestConcurrentSeries(t *testing.T) {

	end := testWindowStart.Add(days(1))
	start := end.AddDate(0, 0, -1)

	// 5 events in minute 0 from 3 distinct players, 2 events in minute 1
	// from 2 of those same players.
	estimator := dayEstimator(t, end, []models.Event{
		event(start, 1, "create"),
		event(start.Add(10*time.Second), 2, "join"),
		event(start.Add(20*time.Second), 3, "join"),
		event(start.Add(30*time.Second), 1, "complete"),
		event(start.Add(40*time.Second), 2, "complete"),
		event(start.Add(time.Minute), 1, "create"),
		event(start.Add(time.Minute+10*time.Second), 2, "join"),
	})

	series := estimator.ConcurrentSeries()

	t.Run("one point per minute of the window", func(t *testing.T) {
		if want := estimator.Window().MinuteIndex(end) + 1; len(series) != want {
			t.Fatalf("series length = %d, want %d", len(series), want)
		}
	})

	t.Run("distinct players per minute", func(t *testing.T) {
		if series[0].Y != 3 {
			t.Errorf("minute 0 = %v, want 3 distinct players", series[0].Y)
		}
		if series[1].Y != 2 {
			t.Errorf("minute 1 = %v, want 2 distinct players", series[1].Y)
		}
		if series[2].Y != 0 {
			t.Errorf("minute 2 = %v, want 0", series[2].Y)
		}
	})

	t.Run("timestamps strictly increasing", func(t *testing.T) {
		for i := 1; i < len(series); i++ {
			if series[i-1].X >= series[i].X {
				t.Fatalf("timestamps not strictly increasing at %d", i)
			}
		}
	})
}

func TestConcurrentSeriesTrimmed(t *testing.T) {

	end := testWindowStart.Add(days(1))
	start := end.AddDate(0, 0, -1)

	// Minutes 0-2 hold one player, minute 3 holds two, everything after
	// is empty: a flat run, a step, then a long flat tail.
	estimator := dayEstimator(t, end, []models.Event{
		event(start, 1, "create"),
		event(start.Add(time.Minute), 1, "join"),
		event(start.Add(2*time.Minute), 1, "join"),
		event(start.Add(3*time.Minute), 1, "join"),
		event(start.Add(3*time.Minute+time.Second), 2, "join"),
	})

	full := estimator.ConcurrentSeries()
	trimmed := estimator.ConcurrentSeriesTrimmed()

	t.Run("keeps only points adjacent to a change", func(t *testing.T) {
		// Expected survivors: minute 2 (last of the 1-run), minute 3
		// (the step), minute 4 (first of the 0-tail).
		want := []models.Point{full[2], full[3], full[4]}
		if len(trimmed.Data) != len(want) {
			t.Fatalf("trimmed length = %d, want %d (%+v)", len(trimmed.Data), len(want), trimmed.Data)
		}
		for i, point := range trimmed.Data {
			if point != want[i] {
				t.Errorf("trimmed[%d] = %+v, want %+v", i, point, want[i])
			}
		}
	})

	t.Run("never includes the boundary minutes", func(t *testing.T) {
		for _, point := range trimmed.Data {
			if point.X == full[0].X || point.X == full[len(full)-1].X {
				t.Error("trimmed series must not contain the first or last minute")
			}
		}
	})

	t.Run("no flat run of three survives", func(t *testing.T) {
		data := trimmed.Data
		for i := 2; i < len(data); i++ {
			if data[i-2].Y == data[i-1].Y && data[i-1].Y == data[i].Y {
				t.Errorf("three consecutive equal values remain at %d", i)
			}
		}
	})
}

func TestTimeShareByHour(t *testing.T) {

	end := testWindowStart.Add(days(1))
	start := end.AddDate(0, 0, -1)

	// First 30 minutes of hour 0 have 3 concurrent players, the rest of
	// the day is quiet.
	var events []models.Event
	for minute := 0; minute < 30; minute++ {
		at := start.Add(time.Duration(minute) * time.Minute)
		for id := int64(1); id <= 3; id++ {
			events = append(events, event(at, id, "join"))
		}
	}
	estimator := dayEstimator(t, end, events)

	series := estimator.TimeShareByHour()
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	enough, notEnough := series[0], series[1]

	t.Run("one point per full hour", func(t *testing.T) {
		if len(enough.Data) != 24 {
			t.Errorf("enough series has %d points, want 24 full hours", len(enough.Data))
		}
		if len(notEnough.Data) != 24 {
			t.Errorf("not-enough series has %d points, want 24 full hours", len(notEnough.Data))
		}
	})

	t.Run("busy half hour splits fifty fifty", func(t *testing.T) {
		if enough.Data[0].Y != 50 {
			t.Errorf("hour 0 enough = %v, want 50", enough.Data[0].Y)
		}
		if notEnough.Data[0].Y != 50 {
			t.Errorf("hour 0 not-enough = %v, want 50", notEnough.Data[0].Y)
		}
	})

	t.Run("quiet hours are fully not enough", func(t *testing.T) {
		if enough.Data[1].Y != 0 {
			t.Errorf("hour 1 enough = %v, want 0", enough.Data[1].Y)
		}
		if notEnough.Data[1].Y != 100 {
			t.Errorf("hour 1 not-enough = %v, want 100", notEnough.Data[1].Y)
		}
	})

	t.Run("hour timestamps ascend by one hour", func(t *testing.T) {
		for i := 1; i < len(enough.Data); i++ {
			if enough.Data[i].X-enough.Data[i-1].X != time.Hour.Milliseconds() {
				t.Fatalf("hour spacing broken at %d", i)
			}
		}
	})
}

func TestTimeShareThresholdBoundary(t *testing.T) {

	end := testWindowStart.Add(days(1))
	start := end.AddDate(0, 0, -1)

	// Two players is below the default threshold of three.
	estimator := dayEstimator(t, end, []models.Event{
		event(start, 1, "join"),
		event(start.Add(time.Second), 2, "join"),
	})

	series := estimator.TimeShareByHour()
	if got := series[0].Data[0].Y; got != 0 {
		t.Errorf("two players counted as enough, hour 0 = %v, want 0", got)
	}
}
