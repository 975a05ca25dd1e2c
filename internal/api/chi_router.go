// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/odyssey/internal/middleware"
)

// RouterConfig holds the pieces NewRouter mounts besides the handler.
type RouterConfig struct {
	Middleware *ChiMiddleware
	Perf       *middleware.PerformanceMonitor
	// WebSocket, when set, is mounted at /ws.
	WebSocket http.Handler
}

// NewRouter builds the preview server's chi router.
//
// Global middleware (all routes):
//  1. RequestID - X-Request-ID and logging context
//  2. RealIP - client IP behind proxies
//  3. Recoverer - panic to 500
//  4. CORS
//
// /api/v1 routes add security headers, Prometheus metrics, gzip and the
// per-IP rate limit; mutating routes get a tighter budget.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mw := cfg.Middleware
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	if cfg.Perf != nil {
		r.Use(cfg.Perf.Middleware)
	}

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.WebSocket != nil {
		r.With(mw.RateLimitWebSocket()).Handle("/ws", cfg.WebSocket)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json", "application/geo+json"))
		r.Use(mw.RateLimit())

		r.Get("/map", h.Map)
		r.Get("/view.geojson", h.GeoJSON)
		r.Get("/perf", h.Perf)
		r.Get("/points", h.Points)
		r.Get("/forms/point", h.PointFormState)
		r.Get("/forms/route", h.RouteFormState)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitWrite())
			r.Put("/filter", h.Filter)
			r.Post("/click", h.Click)
			r.Post("/backend", h.Backend)
			r.Post("/reload", h.Reload)

			r.Put("/forms/point", h.UpdatePointForm)
			r.Delete("/forms/point", h.ClosePointForm)
			r.Post("/forms/point/open", h.OpenPointForm)
			r.Post("/forms/point/submit", h.SubmitPointForm)
			r.Put("/forms/route", h.UpdateRouteForm)
			r.Delete("/forms/route", h.CloseRouteForm)
			r.Post("/forms/route/open", h.OpenRouteForm)
			r.Post("/forms/route/submit", h.SubmitRouteForm)

			r.Delete("/points/{pointID}", h.DeletePoint)
			r.Delete("/routes/{routeID}", h.DeleteRoute)
			r.Post("/participants", h.InviteParticipant)
			r.Delete("/participants/{userID}", h.RemoveParticipant)
			r.Put("/participants/{userID}/color", h.ParticipantColor)
			r.Post("/leave", h.LeaveMap)
		})
	})

	return r
}
