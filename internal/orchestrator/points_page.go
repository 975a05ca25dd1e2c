// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package orchestrator

import (
	"context"
	"net/url"
	"sync"

	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/store"
)

// PageGateway is the remote side of the points list. *gateway.Client
// implements it.
type PageGateway interface {
	PointsPage(ctx context.Context, mapID int64, params url.Values) (*models.PointsPage, error)
	DeletePoint(ctx context.Context, mapID, pointID int64) error
}

// PageState is the observable list state.
type PageState struct {
	Query   filter.ListQuery
	Pager   filter.Pager
	Items   []models.Point
	Total   int
	Loading bool
	Err     error
}

// PointsPage drives the server-side paginated, searchable, sortable list
// of a map's points.
type PointsPage struct {
	gw    PageGateway
	mapID int64

	mu    sync.Mutex
	gen   uint64
	state *store.Store[PageState]
}

// NewPointsPage creates a list at page 1, newest first.
func NewPointsPage(gw PageGateway, mapID int64, pageSize int) *PointsPage {
	q := filter.NewListQuery(pageSize)
	return &PointsPage{
		gw:    gw,
		mapID: mapID,
		state: store.New(PageState{Query: q, Pager: filter.Pager{Page: 1, TotalPages: 1}}),
	}
}

// State returns the current state.
func (p *PointsPage) State() PageState {
	return p.state.Get()
}

// Subscribe registers fn for state changes.
func (p *PointsPage) Subscribe(fn func(PageState)) (unsubscribe func()) {
	return p.state.Subscribe(fn)
}

// Load fetches the page described by the current query. A response for a
// superseded query is dropped.
func (p *PointsPage) Load(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	q := p.state.Get().Query
	if err := q.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}
	_ = p.state.Update(func(s PageState) PageState {
		s.Loading = true
		return s
	})
	p.mu.Unlock()

	page, err := p.gw.PointsPage(ctx, p.mapID, q.Params())

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		_ = p.state.Update(func(s PageState) PageState {
			s.Loading, s.Err = false, err
			return s
		})
		p.mu.Unlock()
		logging.Ctx(ctx).Warn().Err(err).Int64("map_id", p.mapID).Int("page", q.Page).Msg("Failed to load points page")
		return err
	}

	var refetch bool
	_ = p.state.Update(func(s PageState) PageState {
		s.Items, s.Total = page.Items, page.Total
		s.Loading, s.Err = false, nil
		s.Pager.Page = q.Page
		// The list may have shrunk below the current page.
		if s.Pager.SetTotal(page.Pages) {
			s.Query.Page = s.Pager.Page
			refetch = true
		}
		return s
	})
	p.mu.Unlock()

	if refetch {
		return p.Load(ctx)
	}
	return nil
}

// goTo moves the pager and loads only when the page changed.
func (p *PointsPage) goTo(ctx context.Context, move func(*filter.Pager) bool) error {
	p.mu.Lock()
	var changed bool
	_ = p.state.Update(func(s PageState) PageState {
		changed = move(&s.Pager)
		s.Query.Page = s.Pager.Page
		return s
	})
	p.mu.Unlock()
	if !changed {
		return nil
	}
	return p.Load(ctx)
}

// Next loads the following page unless on the last one.
func (p *PointsPage) Next(ctx context.Context) error {
	return p.goTo(ctx, (*filter.Pager).Next)
}

// Prev loads the previous page unless on the first one.
func (p *PointsPage) Prev(ctx context.Context) error {
	return p.goTo(ctx, (*filter.Pager).Prev)
}

// GoTo loads page n, clamped to the known page range.
func (p *PointsPage) GoTo(ctx context.Context, n int) error {
	return p.goTo(ctx, func(pg *filter.Pager) bool { return pg.GoTo(n) })
}

// requery edits the query, resets to page 1 and loads. An invalid edit is
// rejected without changing the state.
func (p *PointsPage) requery(ctx context.Context, edit func(*filter.ListQuery)) error {
	p.mu.Lock()
	q := p.state.Get().Query
	edit(&q)
	q.Page = 1
	if err := q.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}
	_ = p.state.Update(func(s PageState) PageState {
		s.Query = q
		s.Pager.Page = 1
		return s
	})
	p.mu.Unlock()
	return p.Load(ctx)
}

// Apply replaces the whole query, as a request with explicit paging and
// sorting does, and loads it. An invalid query is rejected without
// changing the state.
func (p *PointsPage) Apply(ctx context.Context, q filter.ListQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	_ = p.state.Update(func(s PageState) PageState {
		s.Query = q
		s.Pager.Page = q.Page
		return s
	})
	p.mu.Unlock()
	return p.Load(ctx)
}

// Search filters by free text and returns to page 1.
func (p *PointsPage) Search(ctx context.Context, text string) error {
	return p.requery(ctx, func(q *filter.ListQuery) { q.Search = text })
}

// SortBy changes the sort key and returns to page 1.
func (p *PointsPage) SortBy(ctx context.Context, key string) error {
	return p.requery(ctx, func(q *filter.ListQuery) { q.SortBy = key })
}

// ToggleOrder flips between ascending and descending.
func (p *PointsPage) ToggleOrder(ctx context.Context) error {
	return p.requery(ctx, func(q *filter.ListQuery) {
		if q.Order == filter.OrderDesc {
			q.Order = filter.OrderAsc
		} else {
			q.Order = filter.OrderDesc
		}
	})
}

// Filter sets the exact-match country, city and category filters.
func (p *PointsPage) Filter(ctx context.Context, country, city string, category models.Category) error {
	return p.requery(ctx, func(q *filter.ListQuery) {
		q.Country, q.City, q.Category = country, city, string(category)
	})
}

// Delete removes a point and reloads the current page.
func (p *PointsPage) Delete(ctx context.Context, pointID int64) error {
	if err := p.gw.DeletePoint(ctx, p.mapID, pointID); err != nil {
		return err
	}
	return p.Load(ctx)
}
