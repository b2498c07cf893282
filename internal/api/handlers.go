// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package api provides the HTTP surface of Ludostats.
// This file contains the chart endpoints. The report is computed once per
// process over the historical window; every endpoint serves a slice of that
// immutable payload, so no handler holds locks or recomputes anything.
package api

import (
	"net/http"

	"github.com/ludostats/ludostats/internal/models"
)

// Handler serves the computed analytics report.
type Handler struct {
	report *models.StatsReport
}

// NewHandler creates a handler over a computed report.
func NewHandler(report *models.StatsReport) *Handler {
	return &Handler{report: report}
}

// Health reports process liveness and when the served report was computed.
//
// Method: GET
// Path: /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"generated_at": h.report.Metadata.GeneratedAt,
		"event_count":  h.report.Metadata.EventCount,
	})
}

// Retention returns the per-cohort weekly active-player series plus the
// average overlay, X = week offset since cohort start.
//
// Method: GET
// Path: /api/v1/analytics/retention
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report.WeeklyActives)
}

// RetentionPercent returns the per-cohort retention percentages relative to
// each cohort's starting week, week 0 omitted.
//
// Method: GET
// Path: /api/v1/analytics/retention-percent
func (h *Handler) RetentionPercent(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report.WeeklyActivesPercent)
}

// Activity returns the new/recurring/total weekly active-player series,
// X = week-start millisecond timestamp.
//
// Method: GET
// Path: /api/v1/analytics/activity
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report.ActivePlayersPerWeek)
}

// Concurrent returns the trimmed distinct-concurrent-player series over the
// trailing window, X = minute millisecond timestamp.
//
// Method: GET
// Path: /api/v1/analytics/concurrent
func (h *Handler) Concurrent(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report.ConcurrentPlayers)
}

// TimeShare returns the per-hour share of minutes at or above the
// enough-players threshold, and the complement.
//
// Method: GET
// Path: /api/v1/analytics/time-share
func (h *Handler) TimeShare(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report.EnoughPlayersPercent)
}

// Funnel returns the weekly activation-funnel conversion series plus the
// average overlay, X = funnel step number.
//
// Method: GET
// Path: /api/v1/analytics/funnel
func (h *Handler) Funnel(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report.Funnel)
}

// Report returns the full chart payload in one response.
//
// Method: GET
// Path: /api/v1/analytics/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.report)
}
