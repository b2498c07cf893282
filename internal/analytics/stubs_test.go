// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package analytics

import (
	"context"
	"time"

	"github.com/ludostats/ludostats/internal/models"
)

// testWindowStart is a Monday, matching how real windows align on week
// boundaries.
var testWindowStart = time.Date(2011, 10, 10, 0, 0, 0, 0, time.UTC)

// sliceSource replays an in-memory event slice, honoring the range bounds
// the way the log-file source does.
type sliceSource struct {
	events []models.Event
}

func (s *sliceSource) Scan(ctx context.Context, start, end time.Time, fn func(models.Event) error) error {
	for _, ev := range s.events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !start.IsZero() && ev.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !ev.Timestamp.Before(end) {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

func event(ts time.Time, playerID int64, action string) models.Event {
	return models.Event{
		Timestamp: ts,
		Role:      models.RoleOwner,
		PlayerID:  playerID,
		Action:    action,
	}
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
