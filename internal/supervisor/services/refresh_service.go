// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package services

import (
	"context"
	"errors"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/orchestrator"
)

// Reloader is implemented by *orchestrator.MapDetail.
type Reloader interface {
	Reload(ctx context.Context) error
}

// RefreshService reloads the active map on a fixed interval so changes
// made by other participants reach the preview.
type RefreshService struct {
	reloader Reloader
	interval time.Duration
	name     string
}

// NewRefreshService wraps reloader.
func NewRefreshService(reloader Reloader, interval time.Duration) *RefreshService {
	return &RefreshService{
		reloader: reloader,
		interval: interval,
		name:     "map-refresher",
	}
}

// Serve implements suture.Service. A failed reload has already abandoned
// the map, so it is logged and the next tick tries again. Once no map is
// active the service stops for good.
func (r *RefreshService) Serve(ctx context.Context) error {
	if r.interval <= 0 {
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := r.reloader.Reload(ctx)
			switch {
			case err == nil:
			case errors.Is(err, orchestrator.ErrNotActive):
				logging.Info().Msg("No active map, stopping periodic refresh")
				return suture.ErrDoNotRestart
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				logging.Warn().Err(err).Msg("Periodic map refresh failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (r *RefreshService) String() string {
	return r.name
}
