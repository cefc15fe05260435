// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/saifi/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter wires the HTTP surface:
//
//	GET  /ai/recommend  recommendations for one child
//	GET  /ai/health     engine and datastore health
//	POST /ai/refresh    forced snapshot rebuild
//	GET  /healthz       liveness
//	GET  /readyz        readiness
//	GET  /metrics       Prometheus exposition
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	// Applied to all routes in order
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Get("/healthz", h.Live)
		r.Get("/readyz", h.Ready)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	r.Route("/ai", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.With(mw.RateLimitHealth()).Get("/health", h.Health)
		r.With(mw.RateLimit()).Get("/recommend", h.Recommend)
		r.With(mw.RateLimitRefresh()).Post("/refresh", h.Refresh)
	})

	return r
}
