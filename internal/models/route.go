// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

// Route connects two points of the same map.
type Route struct {
	ID           int64  `json:"id"`
	MapID        int64  `json:"map_id"`
	UserID       int64  `json:"user_id"`
	StartPointID int64  `json:"start_point_id"`
	EndPointID   int64  `json:"end_point_id"`
	Color        string `json:"color,omitempty"`
}

// RouteRequest is the body of route create and update calls.
type RouteRequest struct {
	StartPointID int64  `json:"start_point_id" validate:"required,gt=0"`
	EndPointID   int64  `json:"end_point_id" validate:"required,gt=0,nefield=StartPointID"`
	Color        string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}
