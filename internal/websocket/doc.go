// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package websocket pushes map view changes to preview clients.

A Hub owns the set of connected clients and fans messages out to them in
registration order. Hub.Follow subscribes the hub to a map view and turns
state changes into messages:

  - status: phase changes (loading, ready, abandoned), as a summary
  - snapshot: every committed load, as a summary
  - view: the filtered view as GeoJSON, after a load, a category filter
    change or a backend switch

The latest status, snapshot and view messages are replayed to each newly
registered client, so a browser that connects mid-session renders the
current map immediately.

Each client runs a read goroutine that answers {"type":"ping"} with a pong
and a write goroutine that sends hub messages and keepalive pings. A client
whose send buffer fills is dropped.

Usage:

	hub := websocket.NewHub()
	stop := hub.Follow(detail, cfg.Canvas.DefaultColor)
	defer stop()

	r.Get("/ws", websocket.Handler(hub, websocket.AllowOrigins(cfg.Server.CORSOrigins)))
	go hub.RunWithContext(ctx)
*/
package websocket
