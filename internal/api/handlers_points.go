// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/orchestrator"
)

// PointsList is the server-side paginated points list.
// *orchestrator.PointsPage implements it.
type PointsList interface {
	State() orchestrator.PageState
	Apply(ctx context.Context, q filter.ListQuery) error
	Load(ctx context.Context) error
}

var _ PointsList = (*orchestrator.PointsPage)(nil)

// PointsListResponse is one page of the points list and the query that
// produced it.
type PointsListResponse struct {
	Items     []models.Point `json:"items"`
	Total     int            `json:"total"`
	Page      int            `json:"page"`
	Pages     int            `json:"pages"`
	Limit     int            `json:"limit"`
	Search    string         `json:"search,omitempty"`
	SortBy    string         `json:"sort_by"`
	SortOrder string         `json:"sort_order"`
	Country   string         `json:"country,omitempty"`
	City      string         `json:"city,omitempty"`
	Category  string         `json:"category,omitempty"`
}

// listQuery folds the request parameters into the list's current query.
// Parameters that are absent keep their value; changing anything but the
// page returns to page 1 unless a page is given.
func listQuery(cur filter.ListQuery, r *http.Request) (filter.ListQuery, error) {
	params := r.URL.Query()
	q := cur
	set := func(name string, dst *string) {
		if params.Has(name) {
			*dst = params.Get(name)
		}
	}
	set("search", &q.Search)
	set("sort_by", &q.SortBy)
	set("sort_order", &q.Order)
	set("country", &q.Country)
	set("city", &q.City)
	set("category", &q.Category)

	if raw := params.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cur, err
		}
		q.Page = n
	} else if q != cur {
		q.Page = 1
	}
	return q, nil
}

// Points serves one page of the map's points,
// ?page=&search=&sort_by=date|city|country&sort_order=asc|desc&country=&city=&category=.
func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	if h.points == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "points list disabled", nil)
		return
	}

	q, err := listQuery(h.points.State().Query, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "invalid page: "+sanitizeLogValue(r.URL.Query().Get("page")), nil)
		return
	}
	if err := h.points.Apply(r.Context(), q); err != nil {
		respondFailure(w, r, err)
		return
	}

	s := h.points.State()
	items := s.Items
	if items == nil {
		items = []models.Point{}
	}
	respondData(w, PointsListResponse{
		Items:     items,
		Total:     s.Total,
		Page:      s.Pager.Page,
		Pages:     s.Pager.TotalPages,
		Limit:     s.Query.Limit,
		Search:    s.Query.Search,
		SortBy:    s.Query.SortBy,
		SortOrder: s.Query.Order,
		Country:   s.Query.Country,
		City:      s.Query.City,
		Category:  s.Query.Category,
	}, 0)
}
