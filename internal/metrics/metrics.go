// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Backend gateway calls, retries and the geocode cache
// - Map snapshot loads
// - Debounced city search
// - Canvas renders and interaction dispatch
// - Preview server and WebSocket push

var (
	// Gateway Metrics
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_gateway_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "odyssey_gateway_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	GatewayRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_gateway_retries_total",
			Help: "Total number of backend API retries after 429 or 5xx",
		},
		[]string{"endpoint"},
	)

	GeocodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "odyssey_geocode_cache_hits_total",
			Help: "Total number of city search cache hits",
		},
	)

	GeocodeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "odyssey_geocode_cache_misses_total",
			Help: "Total number of city search cache misses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Orchestrator Metrics
	SnapshotLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_snapshot_loads_total",
			Help: "Total number of map snapshot loads",
		},
		[]string{"trigger", "result"}, // result: "committed", "failed", "stale"
	)

	SnapshotLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "odyssey_snapshot_load_duration_seconds",
			Help:    "Duration of the five-way snapshot fan-out in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "odyssey_snapshot_entities",
			Help: "Entities in the last committed snapshot",
		},
		[]string{"kind"}, // "points", "routes", "participants"
	)

	// Search Metrics
	SearchCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_search_calls_total",
			Help: "Total number of remote city searches issued",
		},
		[]string{"result"}, // "applied", "discarded", "error"
	)

	SearchSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_search_suppressed_total",
			Help: "Search inputs that never produced a remote call",
		},
		[]string{"reason"}, // "superseded", "too_short"
	)

	// Canvas Metrics
	CanvasRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_canvas_renders_total",
			Help: "Total number of view model renders",
		},
		[]string{"backend"},
	)

	CanvasLiveResources = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "odyssey_canvas_live_resources",
			Help: "Markers and lines currently held by a canvas backend",
		},
		[]string{"backend"},
	)

	CanvasClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_canvas_clicks_total",
			Help: "Canvas clicks by dispatch outcome",
		},
		[]string{"backend", "outcome"}, // "entity", "canvas", "ignored"
	)

	// Workflow Metrics
	WorkflowSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odyssey_workflow_submissions_total",
			Help: "Point and route form submissions by outcome",
		},
		[]string{"form", "outcome"}, // "success", "invalid", "failed"
	)

	// Preview Server Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of preview API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Preview API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active preview API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)
)

// RecordGatewayRequest records a backend API call. statusCode is 0 for
// transport errors.
func RecordGatewayRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	GatewayRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	GatewayRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAPIRequest records a preview API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSnapshotLoad records one orchestrator fan-out.
func RecordSnapshotLoad(trigger, result string, duration time.Duration) {
	SnapshotLoadsTotal.WithLabelValues(trigger, result).Inc()
	SnapshotLoadDuration.Observe(duration.Seconds())
}

// SetSnapshotEntities publishes the committed snapshot sizes.
func SetSnapshotEntities(points, routes, participants int) {
	SnapshotEntities.WithLabelValues("points").Set(float64(points))
	SnapshotEntities.WithLabelValues("routes").Set(float64(routes))
	SnapshotEntities.WithLabelValues("participants").Set(float64(participants))
}

// RecordCanvasRender records a render and the resulting resource count.
func RecordCanvasRender(backend string, liveResources int) {
	CanvasRendersTotal.WithLabelValues(backend).Inc()
	CanvasLiveResources.WithLabelValues(backend).Set(float64(liveResources))
}

// StateToFloat maps gobreaker state names to the circuit_breaker_state gauge.
func StateToFloat(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
