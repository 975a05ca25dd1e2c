// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package supervisor runs the preview server's long-lived goroutines under
suture v4.

# Overview

	RootSupervisor ("odyssey")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── RefreshService (if REFRESH_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A hub crash restarts the hub without dropping the HTTP listener, and a
failing refresher backs off on its own.

Lifecycle events go through sutureslog to the slog adapter in
internal/logging, so restarts appear in the same zerolog stream as the
rest of the client.

# Usage

	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	if _, err := tree.Add(supervisor.LayerMessaging, services.NewWebSocketHubService(hub)); err != nil {
	    return err
	}
	if _, err := tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout)); err != nil {
	    return err
	}
	return tree.Serve(ctx)

# Service return values

  - nil: stopped cleanly, not restarted
  - error: crashed, restarted with backoff
  - ctx.Err(): shutdown requested

The map view itself is not supervised: it is owned by main and closed on
exit.
*/
package supervisor
