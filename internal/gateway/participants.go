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

// ListParticipants returns a map's members with their display colors.
func (c *Client) ListParticipants(ctx context.Context, mapID int64) ([]models.Participant, error) {
	var out []models.Participant
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     mapPath(mapID, "/participants"),
		endpoint: "/maps/{id}/participants",
	}, &out)
	return out, err
}

// InviteParticipant sends an invitation by username. The invitee becomes a
// participant only after accepting, so nothing is returned.
func (c *Client) InviteParticipant(ctx context.Context, mapID int64, username string) error {
	in := models.InviteRequest{Username: username}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return verr
	}
	req, err := jsonRequest(http.MethodPost, mapPath(mapID, "/participants"), "/maps/{id}/participants", in)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// RemoveParticipant removes a member. The backend cascades their points.
func (c *Client) RemoveParticipant(ctx context.Context, mapID, userID int64) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     mapPath(mapID, "/participants/"+strconv.FormatInt(userID, 10)),
		endpoint: "/maps/{id}/participants/{user_id}",
	}, nil)
}

// UpdateParticipantColor changes a member's display color.
func (c *Client) UpdateParticipantColor(ctx context.Context, mapID, userID int64, color string) error {
	in := models.ColorRequest{Color: color}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return verr
	}
	path := mapPath(mapID, "/participants/"+strconv.FormatInt(userID, 10)+"/color")
	req, err := jsonRequest(http.MethodPut, path, "/maps/{id}/participants/{user_id}/color", in)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
