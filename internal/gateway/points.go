// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/tomtom215/odyssey/internal/models"
)

// Photo is an image attached to a point submission.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PointInput is the multipart payload for creating or updating a point.
// Empty Category and Description are omitted from the form.
type PointInput struct {
	Latitude    float64
	Longitude   float64
	Category    models.Category
	Description string
	Photo       *Photo
}

// encode builds the multipart body. Coordinates are written as the shortest
// decimal string that round-trips.
func (in PointInput) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"latitude", strconv.FormatFloat(in.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(in.Longitude, 'f', -1, 64)},
	}
	if in.Category != "" {
		fields = append(fields, [2]string{"category", string(in.Category)})
	}
	if in.Description != "" {
		fields = append(fields, [2]string{"description", in.Description})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if in.Photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, in.Photo.Filename))
		ct := in.Photo.ContentType
		if ct == "" {
			ct = http.DetectContentType(in.Photo.Data)
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Photo.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ListPoints returns every point of a map.
func (c *Client) ListPoints(ctx context.Context, mapID int64) ([]models.Point, error) {
	var out []models.Point
	err := c.do(ctx, request{method: http.MethodGet, path: mapPath(mapID, "/points"), endpoint: "/maps/{id}/points"}, &out)
	return out, err
}

// PointsPage returns one server-side page of a map's points. params come
// from filter.ListQuery.Params.
func (c *Client) PointsPage(ctx context.Context, mapID int64, params url.Values) (*models.PointsPage, error) {
	var out models.PointsPage
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     mapPath(mapID, "/points/paginated"),
		endpoint: "/maps/{id}/points/paginated",
		query:    params,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePoint uploads a new point.
func (c *Client) CreatePoint(ctx context.Context, mapID int64, in PointInput) (*models.Point, error) {
	return c.sendPoint(ctx, http.MethodPost, mapPath(mapID, "/points"), "/maps/{id}/points", in)
}

// UpdatePoint replaces the submitted fields of an existing point.
func (c *Client) UpdatePoint(ctx context.Context, mapID, pointID int64, in PointInput) (*models.Point, error) {
	path := mapPath(mapID, "/points/"+strconv.FormatInt(pointID, 10))
	return c.sendPoint(ctx, http.MethodPut, path, "/maps/{id}/points/{point_id}", in)
}

func (c *Client) sendPoint(ctx context.Context, method, path, endpoint string, in PointInput) (*models.Point, error) {
	body, contentType, err := in.encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode point form: %w", err)
	}
	var out models.Point
	err = c.do(ctx, request{method: method, path: path, endpoint: endpoint, body: body, contentType: contentType}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePoint deletes a point owned by the signed-in user.
func (c *Client) DeletePoint(ctx context.Context, mapID, pointID int64) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     mapPath(mapID, "/points/"+strconv.FormatInt(pointID, 10)),
		endpoint: "/maps/{id}/points/{point_id}",
	}, nil)
}
