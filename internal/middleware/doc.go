// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package middleware holds the net/http middleware used by the preview server.

  - RequestID: assigns X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - PerformanceMonitor: sliding window of recent requests with per-route
    percentiles, served at /api/v1/perf

All middleware take and return http.Handler so they compose with chi:

	r.Use(middleware.RequestID)
	r.With(middleware.PrometheusMetrics).Get("/api/v1/map", h.Map)
*/
package middleware
