// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package gateway

import (
	"context"
	"net/http"

	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/validation"
)

// ListMaps returns the maps the signed-in user participates in.
func (c *Client) ListMaps(ctx context.Context) ([]models.Map, error) {
	var out []models.Map
	err := c.do(ctx, request{method: http.MethodGet, path: "/maps", endpoint: "/maps"}, &out)
	return out, err
}

// GetMap returns one map's metadata.
func (c *Client) GetMap(ctx context.Context, mapID int64) (*models.Map, error) {
	var out models.Map
	if err := c.do(ctx, request{method: http.MethodGet, path: mapPath(mapID, ""), endpoint: "/maps/{id}"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMap creates a map owned by the signed-in user.
func (c *Client) CreateMap(ctx context.Context, in models.CreateMapRequest) (*models.Map, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}
	req, err := jsonRequest(http.MethodPost, "/maps", "/maps", in)
	if err != nil {
		return nil, err
	}
	var out models.Map
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMap deletes a map. Only its owner may do this.
func (c *Client) DeleteMap(ctx context.Context, mapID int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: mapPath(mapID, ""), endpoint: "/maps/{id}"}, nil)
}

// JoinMap adds the signed-in user to a non-personal map.
func (c *Client) JoinMap(ctx context.Context, mapID int64) error {
	return c.do(ctx, request{method: http.MethodPost, path: mapPath(mapID, "/join"), endpoint: "/maps/{id}/join"}, nil)
}

// LeaveMap removes the signed-in user from a map. Owners cannot leave.
func (c *Client) LeaveMap(ctx context.Context, mapID int64) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     mapPath(mapID, "/participants/leave"),
		endpoint: "/maps/{id}/participants/leave",
	}, nil)
}
