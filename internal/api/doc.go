// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package api is the local preview server for a headless map view.

It exposes the orchestrator's state over HTTP so the canvas can be
inspected and driven without a browser UI:

	GET  /healthz              view phase, breaker state, push clients
	GET  /metrics              Prometheus exposition
	GET  /ws                   websocket push of status, snapshot and view
	GET  /api/v1/map           summary, capabilities, leaderboard, selection
	GET  /api/v1/view.geojson  filtered view as a FeatureCollection
	GET  /api/v1/perf          per-route latency percentiles
	PUT  /api/v1/filter        ?category=Nature, empty clears
	POST /api/v1/click         {"latitude":..,"longitude":..}
	POST /api/v1/backend       {"kind":"2d"|"3d"}
	POST /api/v1/reload        refetch the snapshot

	GET    /api/v1/points                  ?page=&search=&sort_by=&sort_order=&country=&city=&category=
	DELETE /api/v1/points/{id}             delete a point
	DELETE /api/v1/routes/{id}             delete a route

	GET    /api/v1/forms/point             form state and city suggestions
	POST   /api/v1/forms/point/open        {"edit_selected":true} edits the selection
	PUT    /api/v1/forms/point             {"mode","query","suggestion","latitude",...}
	POST   /api/v1/forms/point/submit
	DELETE /api/v1/forms/point             close
	GET    /api/v1/forms/route             form state and endpoint choices
	POST   /api/v1/forms/route/open        {"route_id":5} edits that route
	PUT    /api/v1/forms/route             {"start_point_id","end_point_id","color","swap"}
	POST   /api/v1/forms/route/submit
	DELETE /api/v1/forms/route             close

	POST   /api/v1/participants            {"username":"ana"}
	DELETE /api/v1/participants/{id}
	PUT    /api/v1/participants/{id}/color {"color":"#3B82F6"}
	POST   /api/v1/leave                   leave the map; the view closes

JSON responses use the models.APIResponse envelope. The GeoJSON endpoint
returns a bare document with Content-Type application/geo+json.

Orchestrator errors map to statuses: no active map, no canvas or a
closed or busy form is 409, a permission failure is 403, an id missing
from the snapshot is 404, a form validation error or unknown backend
kind is 400, and a backend failure is 502.
*/
package api
