// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/odyssey/internal/validation"
)

// Sort keys and orders accepted by ListQuery.
const (
	SortDate    = "date"
	SortCity    = "city"
	SortCountry = "country"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// sortColumns maps list sort keys to backend column names.
var sortColumns = map[string]string{
	SortDate:    "timestamp",
	SortCity:    "city",
	SortCountry: "country",
}

// ListQuery is one request for the paginated points list.
type ListQuery struct {
	Page     int    `validate:"min=1"`
	Limit    int    `validate:"min=1,max=100"`
	Search   string `validate:"max=100"`
	SortBy   string `validate:"sortkey"`
	Order    string `validate:"sortorder"`
	Country  string `validate:"max=100"`
	City     string `validate:"max=100"`
	Category string `validate:"category"`
}

// NewListQuery returns the first page, newest first.
func NewListQuery(pageSize int) ListQuery {
	return ListQuery{Page: 1, Limit: pageSize, SortBy: SortDate, Order: OrderDesc}
}

// Validate checks the query before it is sent.
func (q ListQuery) Validate() error {
	if verr := validation.ValidateStruct(&q); verr != nil {
		return verr
	}
	return nil
}

// Params encodes the query for the backend. Empty optional filters are
// omitted.
func (q ListQuery) Params() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("sort_by", sortColumns[q.SortBy])
	v.Set("sort_order", q.Order)

	optional := map[string]string{
		"search":   q.Search,
		"country":  q.Country,
		"city":     q.City,
		"category": q.Category,
	}
	for k, val := range optional {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Pager bounds page navigation to [1, TotalPages].
type Pager struct {
	Page       int
	TotalPages int
}

// total treats an empty result as a single page.
func (p Pager) total() int {
	if p.TotalPages < 1 {
		return 1
	}
	return p.TotalPages
}

// GoTo clamps page into range and reports whether the current page changed.
// Callers skip the request when it did not.
func (p *Pager) GoTo(page int) bool {
	page = min(max(page, 1), p.total())
	if page == p.Page {
		return false
	}
	p.Page = page
	return true
}

// Next advances one page unless already on the last.
func (p *Pager) Next() bool {
	return p.GoTo(p.Page + 1)
}

// Prev goes back one page unless already on the first.
func (p *Pager) Prev() bool {
	return p.GoTo(p.Page - 1)
}

// SetTotal records the page count reported by the backend and pulls the
// current page back into range. It reports whether the page changed.
func (p *Pager) SetTotal(totalPages int) bool {
	p.TotalPages = totalPages
	return p.GoTo(p.Page)
}
