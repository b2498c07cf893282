// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ludostats/ludostats/internal/middleware"
)

// NewRouter configures all HTTP routes with Chi.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Permissive rate limiting for health checks.
		r.With(httprate.LimitByIP(1000, time.Minute)).
			Get("/health", handler.Health)

		// Read-only cached chart endpoints: permissive enough for
		// smooth dashboard exploration.
		r.Route("/analytics", func(r chi.Router) {
			r.Use(httprate.LimitByIP(300, time.Minute))
			r.Use(middleware.PrometheusMetrics)

			r.Get("/retention", handler.Retention)
			r.Get("/retention-percent", handler.RetentionPercent)
			r.Get("/activity", handler.Activity)
			r.Get("/concurrent", handler.Concurrent)
			r.Get("/time-share", handler.TimeShare)
			r.Get("/funnel", handler.Funnel)
			r.Get("/report", handler.Report)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	})

	return r
}
