// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/validation"
)

// ListRoutes returns every route of a map, dangling ones included.
func (c *Client) ListRoutes(ctx context.Context, mapID int64) ([]models.Route, error) {
	var out []models.Route
	err := c.do(ctx, request{method: http.MethodGet, path: mapPath(mapID, "/routes"), endpoint: "/maps/{id}/routes"}, &out)
	return out, err
}

// CreateRoute connects two points.
func (c *Client) CreateRoute(ctx context.Context, mapID int64, in models.RouteRequest) (*models.Route, error) {
	return c.sendRoute(ctx, http.MethodPost, mapPath(mapID, "/routes"), "/maps/{id}/routes", in)
}

// UpdateRoute replaces a route's endpoints.
func (c *Client) UpdateRoute(ctx context.Context, mapID, routeID int64, in models.RouteRequest) (*models.Route, error) {
	path := mapPath(mapID, "/routes/"+strconv.FormatInt(routeID, 10))
	return c.sendRoute(ctx, http.MethodPut, path, "/maps/{id}/routes/{route_id}", in)
}

func (c *Client) sendRoute(ctx context.Context, method, path, endpoint string, in models.RouteRequest) (*models.Route, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}
	req, err := jsonRequest(method, path, endpoint, in)
	if err != nil {
		return nil, err
	}
	var out models.Route
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRoute deletes a route.
func (c *Client) DeleteRoute(ctx context.Context, mapID, routeID int64) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     mapPath(mapID, "/routes/"+strconv.FormatInt(routeID, 10)),
		endpoint: "/maps/{id}/routes/{route_id}",
	}, nil)
}
