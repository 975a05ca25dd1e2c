// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package metrics provides Prometheus metrics for the map client.

All collectors are registered on the default registry through promauto and
are served by the preview server at /metrics.

# Available Metrics

Gateway:
  - odyssey_gateway_requests_total (method, endpoint, status_code)
  - odyssey_gateway_request_duration_seconds (method, endpoint)
  - odyssey_gateway_retries_total (endpoint)
  - odyssey_geocode_cache_hits_total / odyssey_geocode_cache_misses_total

Circuit breaker:
  - circuit_breaker_state (name): 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total (name, result)
  - circuit_breaker_consecutive_failures (name)
  - circuit_breaker_state_transitions_total (name, from_state, to_state)

Orchestrator:
  - odyssey_snapshot_loads_total (trigger, result)
  - odyssey_snapshot_load_duration_seconds
  - odyssey_snapshot_entities (kind)

Search and workflow:
  - odyssey_search_calls_total (result)
  - odyssey_search_suppressed_total (reason)
  - odyssey_workflow_submissions_total (form, outcome)

Canvas:
  - odyssey_canvas_renders_total (backend)
  - odyssey_canvas_live_resources (backend)
  - odyssey_canvas_clicks_total (backend, outcome)

Preview server:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total

# Example

	curl http://127.0.0.1:5181/metrics | grep odyssey_snapshot
*/
package metrics
