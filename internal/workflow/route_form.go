// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package workflow

import (
	"context"
	"sync"

	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/store"
)

const routeFormName = "route"

// RouteWriter is the remote side of the route form. *gateway.Client
// implements it.
type RouteWriter interface {
	CreateRoute(ctx context.Context, mapID int64, in models.RouteRequest) (*models.Route, error)
	UpdateRoute(ctx context.Context, mapID, routeID int64, in models.RouteRequest) (*models.Route, error)
}

// Snapshot exposes the current canonical map and points.
type Snapshot interface {
	CurrentMap() *models.Map
	CurrentPoints() []models.Point
}

// RouteDeps wires a RouteForm.
type RouteDeps struct {
	MapID    int64
	Writer   RouteWriter
	Snapshot Snapshot
	Reloader Reloader
}

// RouteState is the observable form state.
type RouteState struct {
	Phase Phase
	// EditingID is the route being edited, 0 when creating.
	EditingID int64
	Start     int64
	End       int64
	Color     string
	Error     string
}

// RouteForm creates a route between two points or re-points an existing
// one.
type RouteForm struct {
	deps RouteDeps

	mu    sync.Mutex
	state *store.Store[RouteState]
}

// NewRouteForm returns a closed form.
func NewRouteForm(deps RouteDeps) *RouteForm {
	return &RouteForm{
		deps:  deps,
		state: store.New(RouteState{Phase: PhaseClosed}),
	}
}

// State returns the current state.
func (f *RouteForm) State() RouteState {
	return f.state.Get()
}

// Subscribe registers fn for state changes.
func (f *RouteForm) Subscribe(fn func(RouteState)) (unsubscribe func()) {
	return f.state.Subscribe(fn)
}

// Choices lists the points that can be picked as endpoints, by city.
func (f *RouteForm) Choices() []models.Point {
	return filter.ByCity(f.deps.Snapshot.CurrentPoints())
}

// OpenCreate opens an empty form.
func (f *RouteForm) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.state.Set(RouteState{Phase: PhaseIdle})
}

// OpenEdit opens the form for r.
func (f *RouteForm) OpenEdit(r models.Route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.state.Set(RouteState{
		Phase:     PhaseIdle,
		EditingID: r.ID,
		Start:     r.StartPointID,
		End:       r.EndPointID,
		Color:     r.Color,
	})
}

func (f *RouteForm) edit(fn func(*RouteState)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state.Get()
	switch s.Phase {
	case PhaseClosed:
		return ErrClosed
	case PhaseValidating, PhaseSubmitting:
		return ErrBusy
	}
	fn(&s)
	return f.state.Set(s)
}

// SetStart picks the start point.
func (f *RouteForm) SetStart(pointID int64) error {
	return f.edit(func(s *RouteState) { s.Start = pointID })
}

// SetEnd picks the end point.
func (f *RouteForm) SetEnd(pointID int64) error {
	return f.edit(func(s *RouteState) { s.End = pointID })
}

// SetColor sets the line color used when creating.
func (f *RouteForm) SetColor(color string) error {
	return f.edit(func(s *RouteState) { s.Color = color })
}

// Swap exchanges the endpoints.
func (f *RouteForm) Swap() error {
	return f.edit(func(s *RouteState) { s.Start, s.End = s.End, s.Start })
}

// validate checks the endpoints against the current snapshot.
func (f *RouteForm) validate(s RouteState) error {
	if f.deps.Snapshot.CurrentMap().IsPersonal() {
		return invalid("Routes are disabled on personal maps")
	}
	if s.Start == 0 || s.End == 0 {
		return invalid("Select start and end points")
	}
	if s.Start == s.End {
		return invalid("Start and end points must be different")
	}

	var startOK, endOK bool
	for _, p := range f.deps.Snapshot.CurrentPoints() {
		startOK = startOK || p.ID == s.Start
		endOK = endOK || p.ID == s.End
	}
	if !startOK || !endOK {
		return invalid("Start and end points must exist on this map")
	}
	return nil
}

// Submit validates and sends the route. Edits send only the endpoints.
func (f *RouteForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	s := f.state.Get()
	switch s.Phase {
	case PhaseClosed:
		f.mu.Unlock()
		return ErrClosed
	case PhaseValidating, PhaseSubmitting:
		f.mu.Unlock()
		return ErrBusy
	}

	s.Phase, s.Error = PhaseValidating, ""
	_ = f.state.Set(s)

	if err := f.validate(s); err != nil {
		s.Phase, s.Error = PhaseError, err.Error()
		_ = f.state.Set(s)
		f.mu.Unlock()
		recordSubmission(routeFormName, "invalid")
		return err
	}

	s.Phase = PhaseSubmitting
	_ = f.state.Set(s)
	f.mu.Unlock()

	req := models.RouteRequest{StartPointID: s.Start, EndPointID: s.End}
	fallback := "Failed to create route"
	var err error
	if s.EditingID != 0 {
		fallback = "Failed to update route"
		_, err = f.deps.Writer.UpdateRoute(ctx, f.deps.MapID, s.EditingID, req)
	} else {
		req.Color = s.Color
		_, err = f.deps.Writer.CreateRoute(ctx, f.deps.MapID, req)
	}

	if err != nil {
		recordSubmission(routeFormName, "failed")
		f.mu.Lock()
		_ = f.state.Update(func(cur RouteState) RouteState {
			if cur.Phase == PhaseSubmitting {
				cur.Phase = PhaseError
				cur.Error = gateway.DetailOr(err, fallback)
			}
			return cur
		})
		f.mu.Unlock()
		return err
	}

	recordSubmission(routeFormName, "success")
	reloadAfter(ctx, f.deps.Reloader, routeFormName)
	f.Close()
	return nil
}

// Close dismisses the form.
func (f *RouteForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.state.Set(RouteState{Phase: PhaseClosed})
}
