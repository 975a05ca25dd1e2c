// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/tomtom215/odyssey/internal/canvas"
	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/models"
)

// fakeGateway serves an in-memory map and records every call.
type fakeGateway struct {
	mu           sync.Mutex
	m            models.Map
	points       []models.Point
	participants []models.Participant
	routes       []models.Route

	fail  map[string]error
	calls map[string]int

	// pointsHook runs before ListPoints returns, with the 1-based call
	// number. Tests use it to hold a load in flight.
	pointsHook func(call int)

	// pages is keyed by the requested page parameter.
	pages       map[string]models.PointsPage
	pageQueries []url.Values
}

func newFakeGateway() *fakeGateway {
	cat := models.CategoryMonument
	return &fakeGateway{
		m: models.Map{ID: 1, Name: "Europe", Type: models.MapTypeCompetitive, CreatorID: 10},
		points: []models.Point{
			{ID: 1, MapID: 1, UserID: 10, Latitude: 48.8566, Longitude: 2.3522, City: models.StringPtr("Paris"), Category: &cat},
			{ID: 2, MapID: 1, UserID: 20, Latitude: 41.9028, Longitude: 12.4964, City: models.StringPtr("Rome")},
			{ID: 3, MapID: 1, UserID: 20, Latitude: 52.52, Longitude: 13.405, City: models.StringPtr("Berlin")},
		},
		participants: []models.Participant{
			{UserID: 10, Username: "owner", Role: models.RoleOwner, AssignedColor: models.StringPtr("#EF4444")},
			{UserID: 20, Username: "member", Role: models.RoleMember},
		},
		routes: []models.Route{{ID: 5, MapID: 1, StartPointID: 1, EndPointID: 2}},
		fail:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (g *fakeGateway) record(op string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	return g.calls[op], g.fail[op]
}

func (g *fakeGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) setFail(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[op] = err
}

func (g *fakeGateway) GetMap(context.Context, int64) (*models.Map, error) {
	if _, err := g.record("map"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.m
	return &m, nil
}

func (g *fakeGateway) ListPoints(ctx context.Context, _ int64) ([]models.Point, error) {
	n, err := g.record("points")
	if g.pointsHook != nil {
		g.pointsHook(n)
	}
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Point(nil), g.points...), nil
}

func (g *fakeGateway) ListParticipants(context.Context, int64) ([]models.Participant, error) {
	if _, err := g.record("participants"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Participant(nil), g.participants...), nil
}

func (g *fakeGateway) ListRoutes(context.Context, int64) ([]models.Route, error) {
	if _, err := g.record("routes"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Route(nil), g.routes...), nil
}

func (g *fakeGateway) MyStats(context.Context) (*models.UserStats, error) {
	if _, err := g.record("stats"); err != nil {
		return nil, err
	}
	return &models.UserStats{TotalPoints: 1}, nil
}

func (g *fakeGateway) DeletePoint(_ context.Context, _, pointID int64) error {
	if _, err := g.record("delete_point"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.points[:0]
	for _, p := range g.points {
		if p.ID != pointID {
			kept = append(kept, p)
		}
	}
	g.points = kept
	return nil
}

func (g *fakeGateway) DeleteRoute(context.Context, int64, int64) error {
	_, err := g.record("delete_route")
	return err
}

func (g *fakeGateway) InviteParticipant(context.Context, int64, string) error {
	_, err := g.record("invite")
	return err
}

func (g *fakeGateway) RemoveParticipant(context.Context, int64, int64) error {
	_, err := g.record("remove")
	return err
}

func (g *fakeGateway) UpdateParticipantColor(context.Context, int64, int64, string) error {
	_, err := g.record("color")
	return err
}

func (g *fakeGateway) LeaveMap(context.Context, int64) error {
	_, err := g.record("leave")
	return err
}

func (g *fakeGateway) CreatePoint(_ context.Context, mapID int64, in gateway.PointInput) (*models.Point, error) {
	if _, err := g.record("create_point"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	p := models.Point{ID: int64(100 + len(g.points)), MapID: mapID, UserID: 10, Latitude: in.Latitude, Longitude: in.Longitude}
	g.points = append(g.points, p)
	return &p, nil
}

func (g *fakeGateway) UpdatePoint(_ context.Context, _, pointID int64, _ gateway.PointInput) (*models.Point, error) {
	if _, err := g.record("update_point"); err != nil {
		return nil, err
	}
	return &models.Point{ID: pointID}, nil
}

func (g *fakeGateway) PhotoURL(path string) string { return "http://backend/uploads/" + path }

func (g *fakeGateway) CreateRoute(context.Context, int64, models.RouteRequest) (*models.Route, error) {
	if _, err := g.record("create_route"); err != nil {
		return nil, err
	}
	return &models.Route{ID: 99}, nil
}

func (g *fakeGateway) UpdateRoute(_ context.Context, _, routeID int64, _ models.RouteRequest) (*models.Route, error) {
	if _, err := g.record("update_route"); err != nil {
		return nil, err
	}
	return &models.Route{ID: routeID}, nil
}

func (g *fakeGateway) SearchCities(context.Context, string) ([]models.CityResult, error) {
	_, err := g.record("search")
	return nil, err
}

func (g *fakeGateway) PointsPage(_ context.Context, _ int64, params url.Values) (*models.PointsPage, error) {
	if _, err := g.record("page"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pageQueries = append(g.pageQueries, params)
	if p, ok := g.pages[params.Get("page")]; ok {
		return &p, nil
	}
	return &models.PointsPage{Page: 1, Pages: 0}, nil
}

func (g *fakeGateway) lastQuery() url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.pageQueries) == 0 {
		return nil
	}
	return g.pageQueries[len(g.pageQueries)-1]
}

type homeCounter struct {
	mu sync.Mutex
	n  int
}

func (h *homeCounter) Home() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
}

func (h *homeCounter) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

var errUnavailable = errors.New("backend unavailable")

func newDetail(g *fakeGateway, home *homeCounter, viewer int64) *MapDetail {
	return NewMapDetail(Deps{
		Gateway:   g,
		Navigator: home,
		ViewerID:  viewer,
		Canvas:    canvas.Options{FrameInterval: time.Millisecond},
		Search:    config.SearchConfig{QuietWindow: time.Millisecond, MinQueryLength: 2},
	})
}
