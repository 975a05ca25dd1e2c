// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package services adapts preview server components to suture.Service.
//
//   - HTTPServerService: ListenAndServe/Shutdown
//   - WebSocketHubService: websocket.Hub.RunWithContext
//   - RefreshService: periodic orchestrator reloads
package services
