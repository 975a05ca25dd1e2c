// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/odyssey/internal/logging"
)

// ContextHub is implemented by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService keeps the push hub's broadcast loop alive. Each run
// is logged so hub restarts are visible next to the supervisor events.
type WebSocketHubService struct {
	hub ContextHub
}

func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{hub: hub}
}

func (w *WebSocketHubService) Serve(ctx context.Context) error {
	started := time.Now()
	logging.Debug().Str("service", w.String()).Msg("Hub loop starting")

	err := w.hub.RunWithContext(ctx)

	ev := logging.Debug()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		ev = logging.Warn().Err(err)
	}
	ev.Str("service", w.String()).Dur("ran", time.Since(started)).Msg("Hub loop exited")
	return err
}

func (w *WebSocketHubService) String() string { return "websocket-hub" }
