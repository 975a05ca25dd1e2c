// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/orchestrator"
	"github.com/tomtom215/odyssey/internal/search"
	"github.com/tomtom215/odyssey/internal/workflow"
)

// formWriter records what the forms send to the backend.
type formWriter struct {
	mu     sync.Mutex
	points []gateway.PointInput
	routes []models.RouteRequest
	err    error
}

func (w *formWriter) CreatePoint(_ context.Context, _ int64, in gateway.PointInput) (*models.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, in)
	if w.err != nil {
		return nil, w.err
	}
	return &models.Point{ID: 100}, nil
}

func (w *formWriter) UpdatePoint(_ context.Context, _, pointID int64, in gateway.PointInput) (*models.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, in)
	return &models.Point{ID: pointID}, w.err
}

func (w *formWriter) PhotoURL(path string) string { return "http://backend/uploads/" + path }

func (w *formWriter) CreateRoute(_ context.Context, _ int64, in models.RouteRequest) (*models.Route, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.routes = append(w.routes, in)
	return &models.Route{ID: 50}, w.err
}

func (w *formWriter) UpdateRoute(_ context.Context, _, routeID int64, in models.RouteRequest) (*models.Route, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.routes = append(w.routes, in)
	return &models.Route{ID: routeID}, w.err
}

func (w *formWriter) sent() ([]gateway.PointInput, []models.RouteRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]gateway.PointInput(nil), w.points...), append([]models.RouteRequest(nil), w.routes...)
}

type citySearcher struct{}

func (citySearcher) SearchCities(_ context.Context, q string) ([]models.CityResult, error) {
	return []models.CityResult{
		{DisplayName: q + ", France", Latitude: 48.8566, Longitude: 2.3522},
		{DisplayName: q + ", Texas", Latitude: 33.6609, Longitude: -95.5555},
	}, nil
}

// heldTimers keeps debounced lookups until the test releases them.
type heldTimers struct {
	mu  sync.Mutex
	fns []func()
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return false }

func (h *heldTimers) schedule(_ time.Duration, fn func()) search.Timer {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
	return heldTimer{}
}

func (h *heldTimers) release() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type snapshotPoints struct {
	m      models.Map
	points []models.Point
}

func (s *snapshotPoints) CurrentMap() *models.Map       { return &s.m }
func (s *snapshotPoints) CurrentPoints() []models.Point { return s.points }

type nopReloader struct{}

func (nopReloader) Reload(context.Context) error { return nil }

// fakeEditor drives real workflow forms over in-memory fakes.
type fakeEditor struct {
	writer *formWriter
	timers *heldTimers
	pf     *workflow.PointForm
	rf     *workflow.RouteForm

	selected *models.Point
	routes   []models.Route

	mu    sync.Mutex
	calls []string
	err   error
}

func newFakeEditor() *fakeEditor {
	e := &fakeEditor{
		writer: &formWriter{},
		timers: &heldTimers{},
		routes: []models.Route{{ID: 5, StartPointID: 1, EndPointID: 2, Color: "#3B82F6"}},
	}
	e.pf = workflow.NewPointForm(workflow.PointDeps{
		MapID:         3,
		Writer:        e.writer,
		Searcher:      citySearcher{},
		Reloader:      nopReloader{},
		Search:        config.SearchConfig{QuietWindow: time.Millisecond, MinQueryLength: 2},
		SearchOptions: []search.Option{search.WithScheduler(e.timers.schedule)},
	})
	e.rf = workflow.NewRouteForm(workflow.RouteDeps{
		MapID:  3,
		Writer: e.writer,
		Snapshot: &snapshotPoints{
			m: models.Map{ID: 3, Type: models.MapTypeCollaborative, CreatorID: 7},
			points: []models.Point{
				{ID: 1, City: models.StringPtr("Paris")},
				{ID: 2, City: models.StringPtr("Rome")},
				{ID: 3, City: models.StringPtr("Berlin")},
			},
		},
		Reloader: nopReloader{},
	})
	return e
}

func (e *fakeEditor) PointForm() *workflow.PointForm { return e.pf }
func (e *fakeEditor) RouteForm() *workflow.RouteForm { return e.rf }

func (e *fakeEditor) AddPoint() error {
	e.pf.OpenCreateBlank()
	return nil
}

func (e *fakeEditor) EditSelected() error {
	if e.selected == nil {
		return orchestrator.ErrNotAllowed
	}
	e.pf.OpenEdit(*e.selected)
	return nil
}

func (e *fakeEditor) AddRoute() error {
	e.rf.OpenCreate()
	return nil
}

func (e *fakeEditor) EditRoute(routeID int64) error {
	for _, r := range e.routes {
		if r.ID == routeID {
			e.rf.OpenEdit(r)
			return nil
		}
	}
	return fmt.Errorf("%w: route %d", orchestrator.ErrNotFound, routeID)
}

func (e *fakeEditor) record(call string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	return e.err
}

func (e *fakeEditor) recorded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEditor) DeletePoint(_ context.Context, id int64) error {
	return e.record(fmt.Sprintf("delete_point %d", id))
}

func (e *fakeEditor) DeleteRoute(_ context.Context, id int64) error {
	return e.record(fmt.Sprintf("delete_route %d", id))
}

func (e *fakeEditor) InviteParticipant(_ context.Context, username string) error {
	return e.record("invite " + username)
}

func (e *fakeEditor) RemoveParticipant(_ context.Context, userID int64) error {
	return e.record(fmt.Sprintf("remove %d", userID))
}

func (e *fakeEditor) ChangeParticipantColor(_ context.Context, userID int64, color string) error {
	return e.record(fmt.Sprintf("color %d %s", userID, color))
}

func (e *fakeEditor) LeaveMap(context.Context) error {
	return e.record("leave")
}

func pointFormData(t *testing.T, env envelope) PointFormView {
	t.Helper()
	var v PointFormView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func routeFormData(t *testing.T, env envelope) RouteFormView {
	t.Helper()
	var v RouteFormView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestPointFormRoutes_CityWorkflow(t *testing.T) {
	e := newFakeEditor()
	h := newTestRouter(readyView(), WithEditor(e))

	rec, env := do(t, h, http.MethodGet, "/api/v1/forms/point", "")
	if rec.Code != http.StatusOK || pointFormData(t, env).Phase != "closed" {
		t.Fatalf("initial form: code = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, env = do(t, h, http.MethodPost, "/api/v1/forms/point/open", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("open: code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := pointFormData(t, env); v.Phase != "idle" || v.Mode != workflow.ModeCity {
		t.Errorf("opened form = %+v", v)
	}

	do(t, h, http.MethodPut, "/api/v1/forms/point", `{"query":"Paris"}`)
	e.timers.release()
	_, env = do(t, h, http.MethodGet, "/api/v1/forms/point", "")
	if v := pointFormData(t, env); len(v.Suggestions) != 2 || v.Suggestions[0].DisplayName != "Paris, France" {
		t.Fatalf("suggestions = %+v", v.Suggestions)
	}

	rec, env = do(t, h, http.MethodPut, "/api/v1/forms/point", `{"suggestion":0,"category":"Monument","description":"Tower"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select: code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := pointFormData(t, env); !v.Locked || v.Selected == nil || v.Category != models.CategoryMonument {
		t.Errorf("after select = %+v", v)
	}

	rec, env = do(t, h, http.MethodPut, "/api/v1/forms/point", `{"latitude":"1"}`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != ErrCodeValidation {
		t.Errorf("manual edit while locked: code = %d, env = %+v", rec.Code, env.Error)
	}

	rec, env = do(t, h, http.MethodPost, "/api/v1/forms/point/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := pointFormData(t, env); v.Phase != "closed" {
		t.Errorf("phase after submit = %q, want closed", v.Phase)
	}
	sent, _ := e.writer.sent()
	if len(sent) != 1 || sent[0].Latitude != 48.8566 || sent[0].Description != "Tower" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestPointFormRoutes_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		patch    string
		wantCode int
		wantMsg  string
	}{
		{"unknown mode", `{"mode":"globe"}`, http.StatusBadRequest, ""},
		{"unknown category", `{"category":"Spaceport"}`, http.StatusBadRequest, ""},
		{"no suggestions yet", `{"suggestion":0}`, http.StatusBadRequest, "No such suggestion"},
		{"malformed json", `{"query":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFakeEditor()
			h := newTestRouter(readyView(), WithEditor(e))
			do(t, h, http.MethodPost, "/api/v1/forms/point/open", `{}`)

			rec, env := do(t, h, http.MethodPut, "/api/v1/forms/point", tt.patch)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantMsg != "" && env.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestPointFormRoutes_SubmitInvalidCoordinatesStaysOpen(t *testing.T) {
	e := newFakeEditor()
	h := newTestRouter(readyView(), WithEditor(e))
	do(t, h, http.MethodPost, "/api/v1/forms/point/open", `{}`)
	do(t, h, http.MethodPut, "/api/v1/forms/point", `{"mode":"coordinate","latitude":"95","longitude":"0"}`)

	rec, env := do(t, h, http.MethodPost, "/api/v1/forms/point/submit", "")
	if rec.Code != http.StatusBadRequest || env.Error.Message != "Latitude must be between -90 and 90" {
		t.Fatalf("code = %d, env = %+v", rec.Code, env.Error)
	}
	if sent, _ := e.writer.sent(); len(sent) != 0 {
		t.Errorf("invalid point reached the backend: %+v", sent)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/forms/point", "")
	if v := pointFormData(t, env); v.Phase != "error" || v.Latitude != "95" {
		t.Errorf("form after rejection = %+v", v)
	}
}

func TestPointFormRoutes_BackendFailure(t *testing.T) {
	e := newFakeEditor()
	e.writer.err = &gateway.APIError{Method: "POST", Endpoint: "/maps/{id}/points", Status: 400, Detail: "Point outside map bounds"}
	h := newTestRouter(readyView(), WithEditor(e))
	do(t, h, http.MethodPost, "/api/v1/forms/point/open", `{}`)
	do(t, h, http.MethodPut, "/api/v1/forms/point", `{"mode":"coordinate","latitude":"10","longitude":"10"}`)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/forms/point/submit", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code = %d, want 502", rec.Code)
	}
	_, env := do(t, h, http.MethodGet, "/api/v1/forms/point", "")
	if v := pointFormData(t, env); v.Phase != "error" || v.Error != "Point outside map bounds" {
		t.Errorf("form after failure = %+v", v)
	}
}

func TestPointFormRoutes_EditSelectedAndClose(t *testing.T) {
	e := newFakeEditor()
	h := newTestRouter(readyView(), WithEditor(e))

	rec, _ := do(t, h, http.MethodPost, "/api/v1/forms/point/open", `{"edit_selected":true}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("edit without an editable selection: code = %d, want 403", rec.Code)
	}

	e.selected = &models.Point{ID: 9, UserID: 7, Latitude: 1.5, Longitude: 2.5}
	rec, env := do(t, h, http.MethodPost, "/api/v1/forms/point/open", `{"edit_selected":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := pointFormData(t, env); v.EditingID != 9 || v.Mode != workflow.ModeCoordinate || v.Latitude != "1.5" {
		t.Errorf("edit form = %+v", v)
	}

	_, env = do(t, h, http.MethodDelete, "/api/v1/forms/point", "")
	if v := pointFormData(t, env); v.Phase != "closed" {
		t.Errorf("phase after close = %q", v.Phase)
	}
	rec, env = do(t, h, http.MethodPut, "/api/v1/forms/point", `{"description":"late"}`)
	if rec.Code != http.StatusConflict || env.Error.Code != ErrCodeConflict {
		t.Errorf("edit after close: code = %d, env = %+v", rec.Code, env.Error)
	}
}

func TestRouteFormRoutes_Workflow(t *testing.T) {
	e := newFakeEditor()
	h := newTestRouter(readyView(), WithEditor(e))

	rec, env := do(t, h, http.MethodPost, "/api/v1/forms/route/open", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("open: code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := routeFormData(t, env); v.Phase != "idle" || len(v.Choices) != 3 || v.Choices[0].ID != 3 {
		t.Errorf("opened route form = %+v", v)
	}

	do(t, h, http.MethodPut, "/api/v1/forms/route", `{"start_point_id":2,"end_point_id":2}`)
	rec, env = do(t, h, http.MethodPost, "/api/v1/forms/route/submit", "")
	if rec.Code != http.StatusBadRequest || env.Error.Message != "Start and end points must be different" {
		t.Fatalf("same endpoints: code = %d, env = %+v", rec.Code, env.Error)
	}
	if _, sent := e.writer.sent(); len(sent) != 0 {
		t.Errorf("rejected route reached the backend: %+v", sent)
	}

	rec, env = do(t, h, http.MethodPut, "/api/v1/forms/route", `{"end_point_id":3,"color":"#10B981","swap":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := routeFormData(t, env); v.Start != 3 || v.End != 2 || v.Color != "#10B981" {
		t.Errorf("after swap = %+v", v)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/forms/route/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: code = %d, body %s", rec.Code, rec.Body.String())
	}
	_, sent := e.writer.sent()
	if len(sent) != 1 || sent[0].StartPointID != 3 || sent[0].EndPointID != 2 || sent[0].Color != "#10B981" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestRouteFormRoutes_OpenEdit(t *testing.T) {
	e := newFakeEditor()
	h := newTestRouter(readyView(), WithEditor(e))

	rec, env := do(t, h, http.MethodPost, "/api/v1/forms/route/open", `{"route_id":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if v := routeFormData(t, env); v.EditingID != 5 || v.Start != 1 || v.End != 2 {
		t.Errorf("edit form = %+v", v)
	}

	rec, env = do(t, h, http.MethodPost, "/api/v1/forms/route/open", `{"route_id":99}`)
	if rec.Code != http.StatusNotFound || env.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route: code = %d, env = %+v", rec.Code, env.Error)
	}

	rec, _ = do(t, h, http.MethodPut, "/api/v1/forms/route", `{"color":"blue"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-hex color: code = %d, want 400", rec.Code)
	}
}

func TestMutationRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantCall string
	}{
		{"delete point", http.MethodDelete, "/api/v1/points/4", "", http.StatusOK, "delete_point 4"},
		{"delete route", http.MethodDelete, "/api/v1/routes/5", "", http.StatusOK, "delete_route 5"},
		{"invite", http.MethodPost, "/api/v1/participants", `{"username":"bo"}`, http.StatusOK, "invite bo"},
		{"remove", http.MethodDelete, "/api/v1/participants/20", "", http.StatusOK, "remove 20"},
		{"recolor", http.MethodPut, "/api/v1/participants/20/color", `{"color":"#EF4444"}`, http.StatusOK, "color 20 #EF4444"},
		{"leave", http.MethodPost, "/api/v1/leave", "", http.StatusOK, "leave"},
		{"bad point id", http.MethodDelete, "/api/v1/points/abc", "", http.StatusBadRequest, ""},
		{"zero route id", http.MethodDelete, "/api/v1/routes/0", "", http.StatusBadRequest, ""},
		{"empty username", http.MethodPost, "/api/v1/participants", `{"username":""}`, http.StatusBadRequest, ""},
		{"bad color", http.MethodPut, "/api/v1/participants/20/color", `{"color":"red"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFakeEditor()
			rec, _ := do(t, newTestRouter(readyView(), WithEditor(e)), tt.method, tt.target, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			calls := e.recorded()
			if tt.wantCall == "" {
				if len(calls) != 0 {
					t.Errorf("rejected request reached the view: %v", calls)
				}
				return
			}
			if len(calls) != 1 || calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", calls, tt.wantCall)
			}
		})
	}
}

func TestMutationRoutes_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not owner", fmt.Errorf("%w: only the owner can invite participants", orchestrator.ErrNotAllowed), http.StatusForbidden},
		{"not active", orchestrator.ErrNotActive, http.StatusConflict},
		{"backend", errors.New("gateway: 500"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFakeEditor()
			e.err = tt.err
			rec, _ := do(t, newTestRouter(readyView(), WithEditor(e)), http.MethodPost, "/api/v1/participants", `{"username":"bo"}`)
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestEditRoutesWithoutEditor(t *testing.T) {
	h := newTestRouter(readyView())
	for _, target := range []string{"/api/v1/forms/point", "/api/v1/forms/route"} {
		rec, _ := do(t, h, http.MethodGet, target, "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", target, rec.Code)
		}
	}
	rec, _ := do(t, h, http.MethodDelete, "/api/v1/points/1", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("DELETE point = %d, want 503", rec.Code)
	}
}
