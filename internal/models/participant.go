// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

import "github.com/goccy/go-json"

// Role is a participant's membership role.
type Role string

// Participant roles.
const (
	RoleOwner  Role = "Owner"
	RoleMember Role = "Member"
)

// UnmarshalJSON maps the backend's "Collaborator" role onto RoleMember.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == string(RoleOwner) {
		*r = RoleOwner
	} else {
		*r = RoleMember
	}
	return nil
}

// Participant is a user's membership in one map.
type Participant struct {
	UserID        int64   `json:"user_id"`
	Username      string  `json:"username"`
	Role          Role    `json:"role"`
	AssignedColor *string `json:"assigned_color,omitempty"`
}

// Color returns the assigned color or fallback when none is set.
func (p *Participant) Color(fallback string) string {
	if p.AssignedColor == nil || *p.AssignedColor == "" {
		return fallback
	}
	return *p.AssignedColor
}

// InviteRequest is the body of POST /maps/{id}/participants.
type InviteRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
}

// ColorRequest is the body of PUT /maps/{id}/participants/{userId}/color.
type ColorRequest struct {
	Color string `json:"color" validate:"required,hexcolor"`
}
