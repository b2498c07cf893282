// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestPointMarshalsAsPair(t *testing.T) {

	series := Series{
		Label: "2011-10-10",
		Data:  []Point{{X: 1318204800000, Y: 12}, {X: 1, Y: 41.7}},
	}

	data, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"label":"2011-10-10","data":[[1318204800000,12],[1,41.7]]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestPointUnmarshal(t *testing.T) {

	var p Point
	if err := json.Unmarshal([]byte(`[1318204800000, 41.7]`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.X != 1318204800000 || p.Y != 41.7 {
		t.Errorf("Unmarshal() = %+v, want {1318204800000 41.7}", p)
	}

	if err := json.Unmarshal([]byte(`{"x": 1}`), &p); err == nil {
		t.Error("expected error for non-array point")
	}
}

func TestMillisTimestamp(t *testing.T) {

	at := time.Date(2011, 10, 10, 0, 0, 0, 0, time.UTC)
	if got := MillisTimestamp(at); got != 1318204800000 {
		t.Errorf("MillisTimestamp() = %d, want 1318204800000", got)
	}
}
