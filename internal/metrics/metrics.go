// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package metrics provides Prometheus instrumentation for the Ludostats
// application: API request metrics recorded by the HTTP middleware and
// analytics-run metrics recorded by the report builder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ludostats_api_requests_total",
			Help: "Total number of API requests by method, path, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ludostats_api_request_duration_seconds",
			Help:    "API request duration in seconds by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ludostats_api_active_requests",
			Help: "Number of API requests currently being served.",
		},
	)

	analyticsStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ludostats_analytics_stage_duration_seconds",
			Help:    "Duration of one analytics engine pass over the event stream.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	eventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ludostats_events_processed_total",
			Help: "Total number of normalized events consumed by analytics runs.",
		},
	)
)

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, path, status).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		activeRequests.Inc()
	} else {
		activeRequests.Dec()
	}
}

// ObserveAnalyticsStage records the duration of one engine pass.
func ObserveAnalyticsStage(stage string, duration time.Duration) {
	analyticsStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// AddEventsProcessed adds to the processed-event counter.
func AddEventsProcessed(n int64) {
	eventsProcessed.Add(float64(n))
}
