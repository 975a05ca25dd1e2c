// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Command odyssey opens one collaborative travel map headlessly.
//
// It signs in with the configured session token, loads the map's snapshot,
// mounts the configured canvas backend and keeps the view alive under a
// supervisor tree:
//
//   - messaging layer: websocket hub pushing status, snapshot and view
//     updates, plus an optional periodic reload
//   - api layer: the local preview server (internal/api)
//
// Configuration is read from an optional .env file, an optional config.yaml
// (CONFIG_PATH) and the environment, highest priority last:
//
//	export ODYSSEY_API_URL=http://localhost:8000
//	export ODYSSEY_TOKEN=eyJ...
//	export ENABLE_PREVIEW_SERVER=true
//	export REFRESH_INTERVAL=30s
//	odyssey -map 12
//
// SIGINT and SIGTERM stop the tree; the HTTP server drains in-flight
// requests for SHUTDOWN_TIMEOUT. A map view that is abandoned
// because a load failed also stops the process.
package main
