// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package models provides data structures for the Ludostats application.
// This file contains the normalized game event consumed by every analytics
// engine. Events are produced by the event-source layer, which owns parsing
// and legacy-identifier resolution; engines treat events as immutable and
// rely on the stream being ordered by non-decreasing timestamp.
package models

import "time"

// Role identifies which side of a game request produced an event.
type Role string

const (
	// RoleOwner marks requests carrying an owner_id parameter.
	RoleOwner Role = "owner"

	// RolePlayer marks requests carrying a player_id parameter.
	RolePlayer Role = "player"
)

// Event is a single normalized game action.
type Event struct {
	// Timestamp is the server-side time of the request, UTC.
	Timestamp time.Time `json:"timestamp"`

	// Role is the request side, owner or player.
	Role Role `json:"role"`

	// PlayerID is the resolved integer player identifier. Legacy
	// string identifiers are resolved before an Event is emitted.
	PlayerID int64 `json:"player_id"`

	// Action is the action query parameter, empty when the request
	// carried none.
	Action string `json:"action,omitempty"`
}

// DailyVisitors holds one day of visitor-analytics counts from the external
// visitor provider. Days absent from the provider response are zero-valued.
type DailyVisitors struct {
	// Date is the calendar day, truncated to midnight UTC.
	Date time.Time `json:"date"`

	// NewVisitors is the count of first-time visitors that day.
	NewVisitors int `json:"new_visitors"`

	// Bounces is the count of single-page visits that day.
	Bounces int `json:"bounces"`
}
