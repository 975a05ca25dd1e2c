// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

// ClickRequest simulates a click on the mounted canvas.
type ClickRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// BackendRequest selects the canvas backend.
type BackendRequest struct {
	Kind string `json:"kind" validate:"required,oneof=2d 3d"`
}

// OpenPointRequest opens the point form. EditSelected edits the selected
// point instead of starting a blank one.
type OpenPointRequest struct {
	EditSelected bool `json:"edit_selected"`
}

// PointFormPatch edits the open point form. Absent fields are left alone.
// Fields apply in declaration order, so a mode switch lands before the
// query it affects.
type PointFormPatch struct {
	Mode           *string `json:"mode" validate:"omitempty,oneof=coordinate city"`
	ClearSelection bool    `json:"clear_selection"`
	Query          *string `json:"query" validate:"omitempty,max=200"`
	// Suggestion picks an index from the current suggestions.
	Suggestion  *int    `json:"suggestion" validate:"omitempty,min=0"`
	Latitude    *string `json:"latitude" validate:"omitempty,max=32"`
	Longitude   *string `json:"longitude" validate:"omitempty,max=32"`
	Category    *string `json:"category" validate:"omitempty,category"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DetachPhoto bool    `json:"detach_photo"`
}

// OpenRouteRequest opens the route form. A RouteID edits that route.
type OpenRouteRequest struct {
	RouteID int64 `json:"route_id" validate:"omitempty,min=1"`
}

// RouteFormPatch edits the open route form. Swap runs after the endpoints
// are set.
type RouteFormPatch struct {
	Start *int64  `json:"start_point_id" validate:"omitempty,min=1"`
	End   *int64  `json:"end_point_id" validate:"omitempty,min=1"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
	Swap  bool    `json:"swap"`
}

// InviteRequest invites a user to the map by name.
type InviteRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
}

// ColorRequest changes a participant's marker color.
type ColorRequest struct {
	Color string `json:"color" validate:"required,hexcolor"`
}
