// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package analytics

import (
	"testing"
	"time"
)

func TestTimeWindowIndexes(t *testing.T) {

	window := TimeWindow{
		Start: testWindowStart,
		End:   testWindowStart.Add(days(20)),
	}

	tests := []struct {
		name       string
		at         time.Time
		wantWeek   int
		wantHour   int
		wantMinute int
	}{
		{
			name:       "window start is index zero everywhere",
			at:         testWindowStart,
			wantWeek:   0,
			wantHour:   0,
			wantMinute: 0,
		},
		{
			name:       "one minute in",
			at:         testWindowStart.Add(time.Minute),
			wantWeek:   0,
			wantHour:   0,
			wantMinute: 1,
		},
		{
			name:       "just under one hour stays hour zero",
			at:         testWindowStart.Add(59*time.Minute + 59*time.Second),
			wantWeek:   0,
			wantHour:   0,
			wantMinute: 59,
		},
		{
			name:       "six days is still week zero",
			at:         testWindowStart.Add(days(6) + 23*time.Hour),
			wantWeek:   0,
			wantHour:   167,
			wantMinute: 167 * 60,
		},
		{
			name:       "seventh day starts week one",
			at:         testWindowStart.Add(days(7)),
			wantWeek:   1,
			wantHour:   168,
			wantMinute: 168 * 60,
		},
		{
			name:       "thirteen days is week one",
			at:         testWindowStart.Add(days(13)),
			wantWeek:   1,
			wantHour:   13 * 24,
			wantMinute: 13 * 24 * 60,
		},
		{
			name:       "two weeks in",
			at:         testWindowStart.Add(days(14) + time.Hour),
			wantWeek:   2,
			wantHour:   14*24 + 1,
			wantMinute: (14*24 + 1) * 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.WeekIndex(tt.at); got != tt.wantWeek {
				t.Errorf("WeekIndex() = %d, want %d", got, tt.wantWeek)
			}
			if got := window.HourIndex(tt.at); got != tt.wantHour {
				t.Errorf("HourIndex() = %d, want %d", got, tt.wantHour)
			}
			if got := window.MinuteIndex(tt.at); got != tt.wantMinute {
				t.Errorf("MinuteIndex() = %d, want %d", got, tt.wantMinute)
			}
		})
	}
}

func TestTimeWindowDateOfWeek(t *testing.T) {

	window := TimeWindow{Start: testWindowStart, End: testWindowStart.Add(days(30))}

	if got := window.DateOfWeek(0); !got.Equal(testWindowStart) {
		t.Errorf("DateOfWeek(0) = %v, want %v", got, testWindowStart)
	}
	if got, want := window.DateOfWeek(3), testWindowStart.Add(days(21)); !got.Equal(want) {
		t.Errorf("DateOfWeek(3) = %v, want %v", got, want)
	}
}

func TestTimeWindowEachWeek(t *testing.T) {

	tests := []struct {
		name      string
		length    time.Duration
		wantWeeks int
	}{
		{name: "same day window has one week", length: 0, wantWeeks: 1},
		{name: "six day window has one week", length: days(6), wantWeeks: 1},
		{name: "twenty day window has three weeks", length: days(20), wantWeeks: 3},
		{name: "exact four weeks has five buckets", length: days(28), wantWeeks: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := TimeWindow{Start: testWindowStart, End: testWindowStart.Add(tt.length)}

			if got := window.Weeks(); got != tt.wantWeeks {
				t.Errorf("Weeks() = %d, want %d", got, tt.wantWeeks)
			}

			var indexes []int
			window.EachWeek(func(weekNb int, weekStart time.Time) {
				indexes = append(indexes, weekNb)
				if want := window.DateOfWeek(weekNb); !weekStart.Equal(want) {
					t.Errorf("week %d start = %v, want %v", weekNb, weekStart, want)
				}
			})

			if len(indexes) != tt.wantWeeks {
				t.Fatalf("EachWeek yielded %d weeks, want %d", len(indexes), tt.wantWeeks)
			}
			for i, idx := range indexes {
				if idx != i {
					t.Errorf("week index %d at position %d, want ascending from 0", idx, i)
				}
			}
		})
	}
}

func TestTimeWindowEachWeekRestartable(t *testing.T) {

	window := TimeWindow{Start: testWindowStart, End: testWindowStart.Add(days(14))}

	first, second := 0, 0
	window.EachWeek(func(int, time.Time) { first++ })
	window.EachWeek(func(int, time.Time) { second++ })

	if first != second || first != 3 {
		t.Errorf("enumeration not restartable: first=%d second=%d", first, second)
	}
}

func TestHoursBetween(t *testing.T) {

	base := testWindowStart
	tests := []struct {
		name string
		b    time.Time
		want int
	}{
		{name: "same instant", b: base, want: 0},
		{name: "under an hour floors to zero", b: base.Add(59 * time.Minute), want: 0},
		{name: "fifteen and a half hours floors to fifteen", b: base.Add(15*time.Hour + 30*time.Minute), want: 15},
		{name: "sixteen hours", b: base.Add(16 * time.Hour), want: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoursBetween(base, tt.b); got != tt.want {
				t.Errorf("HoursBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}
