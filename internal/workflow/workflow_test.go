// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/search"
)

// fakeWriter records every remote call made by the forms.
type fakeWriter struct {
	mu      sync.Mutex
	points  []gateway.PointInput
	updates []int64
	routes  []models.RouteRequest
	err     error
}

func (w *fakeWriter) CreatePoint(_ context.Context, _ int64, in gateway.PointInput) (*models.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, in)
	if w.err != nil {
		return nil, w.err
	}
	return &models.Point{ID: 100, Latitude: in.Latitude, Longitude: in.Longitude}, nil
}

func (w *fakeWriter) UpdatePoint(_ context.Context, _ int64, pointID int64, in gateway.PointInput) (*models.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, in)
	w.updates = append(w.updates, pointID)
	if w.err != nil {
		return nil, w.err
	}
	return &models.Point{ID: pointID}, nil
}

func (w *fakeWriter) PhotoURL(path string) string {
	return "http://backend/uploads/" + path
}

func (w *fakeWriter) CreateRoute(_ context.Context, _ int64, in models.RouteRequest) (*models.Route, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.routes = append(w.routes, in)
	if w.err != nil {
		return nil, w.err
	}
	return &models.Route{ID: 50}, nil
}

func (w *fakeWriter) UpdateRoute(_ context.Context, _ int64, routeID int64, in models.RouteRequest) (*models.Route, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.routes = append(w.routes, in)
	if w.err != nil {
		return nil, w.err
	}
	return &models.Route{ID: routeID}, nil
}

func (w *fakeWriter) calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.points) + len(w.routes)
}

type countingReloader struct {
	mu sync.Mutex
	n  int
}

func (r *countingReloader) Reload(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return nil
}

func (r *countingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

type staticSnapshot struct {
	m      *models.Map
	points []models.Point
}

func (s staticSnapshot) CurrentMap() *models.Map       { return s.m }
func (s staticSnapshot) CurrentPoints() []models.Point { return s.points }

type cityStub struct{}

func (cityStub) SearchCities(_ context.Context, q string) ([]models.CityResult, error) {
	return []models.CityResult{{DisplayName: q + ", Somewhere", Latitude: 1, Longitude: 2}}, nil
}

// manualTimer fires only when the test says so.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) schedule(_ time.Duration, fn func()) search.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fireLive() {
	s.mu.Lock()
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.stopped {
			t.stopped = true
			live = append(live, t)
		}
	}
	s.mu.Unlock()
	for _, t := range live {
		t.fn()
	}
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{QuietWindow: 300 * time.Millisecond, MinQueryLength: 2}
}

var errBackend = &gateway.APIError{Method: "POST", Endpoint: "/maps/{id}/points", Status: 400, Detail: "Point outside map bounds"}

var errNetwork = errors.New("connection reset")
