// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/odyssey/internal/canvas"
	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/metrics"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/search"
	"github.com/tomtom215/odyssey/internal/store"
	"github.com/tomtom215/odyssey/internal/workflow"
)

// Phase is the lifecycle of a map view.
type Phase int

// Map view phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Sentinel errors.
var (
	ErrNotActive  = errors.New("orchestrator: no map is active")
	ErrNotAllowed = errors.New("orchestrator: not allowed")
	ErrNoCanvas   = errors.New("orchestrator: no canvas mounted")
	ErrNotFound   = errors.New("orchestrator: not in the current snapshot")
)

// Gateway is every remote operation the map view needs. *gateway.Client
// implements it.
type Gateway interface {
	GetMap(ctx context.Context, mapID int64) (*models.Map, error)
	ListPoints(ctx context.Context, mapID int64) ([]models.Point, error)
	ListParticipants(ctx context.Context, mapID int64) ([]models.Participant, error)
	ListRoutes(ctx context.Context, mapID int64) ([]models.Route, error)
	MyStats(ctx context.Context) (*models.UserStats, error)

	DeletePoint(ctx context.Context, mapID, pointID int64) error
	DeleteRoute(ctx context.Context, mapID, routeID int64) error
	InviteParticipant(ctx context.Context, mapID int64, username string) error
	RemoveParticipant(ctx context.Context, mapID, userID int64) error
	UpdateParticipantColor(ctx context.Context, mapID, userID int64, color string) error
	LeaveMap(ctx context.Context, mapID int64) error

	workflow.PointWriter
	workflow.RouteWriter
	search.Searcher
}

// Navigator leaves the map view.
type Navigator interface {
	Home()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// Home calls f.
func (f NavigatorFunc) Home() { f() }

// Snapshot is one server-confirmed view of a map. It is never modified
// after commit.
type Snapshot struct {
	Map          models.Map
	Points       []models.Point
	Participants []models.Participant
	Routes       []models.Route
	Stats        *models.UserStats
	Generation   uint64
	LoadedAt     time.Time
}

// State is the observable map view state.
type State struct {
	Phase    Phase
	MapID    int64
	Snapshot *Snapshot
	Category *models.Category
	View     filter.ViewModel
	Selected *models.Point
	Backend  canvas.Kind
	Err      error
}

// Deps wires a MapDetail.
type Deps struct {
	Gateway   Gateway
	Navigator Navigator
	// ViewerID is the signed-in user's id.
	ViewerID int64
	Canvas   canvas.Options
	Search   config.SearchConfig

	SearchOptions []search.Option
	// Now is used for Snapshot.LoadedAt. Defaults to time.Now.
	Now func() time.Time
}

// MapDetail is the single writer of a map's canonical state.
type MapDetail struct {
	deps Deps

	mu           sync.Mutex
	gen          uint64
	mapID        int64
	canvas       canvas.Canvas
	cancelEntity func()
	cancelCanvas func()
	points       *workflow.PointForm
	routes       *workflow.RouteForm
	state        *store.Store[State]
}

// NewMapDetail creates an idle map view.
func NewMapDetail(deps Deps) *MapDetail {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Navigator == nil {
		deps.Navigator = NavigatorFunc(func() {})
	}
	return &MapDetail{
		deps:  deps,
		state: store.New(State{Phase: PhaseIdle}),
	}
}

// State returns the current state.
func (d *MapDetail) State() State {
	return d.state.Get()
}

// Subscribe registers fn for state changes. Listeners run synchronously and
// must not call Activate or Reload directly.
func (d *MapDetail) Subscribe(fn func(State)) (unsubscribe func()) {
	return d.state.Subscribe(fn)
}

// PointForm returns the add/edit point form of the active map.
func (d *MapDetail) PointForm() *workflow.PointForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.points
}

// RouteForm returns the route form of the active map.
func (d *MapDetail) RouteForm() *workflow.RouteForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.routes
}

// CurrentMap returns the committed map metadata, or nil.
func (d *MapDetail) CurrentMap() *models.Map {
	s := d.state.Get().Snapshot
	if s == nil {
		return nil
	}
	m := s.Map
	return &m
}

// CurrentPoints returns every committed point, ignoring the category filter.
func (d *MapDetail) CurrentPoints() []models.Point {
	s := d.state.Get().Snapshot
	if s == nil {
		return nil
	}
	return s.Points
}

// Activate opens mapID and loads it.
func (d *MapDetail) Activate(ctx context.Context, mapID int64) error {
	d.mu.Lock()
	if d.points != nil {
		d.points.Close()
	}
	d.mapID = mapID
	d.points = workflow.NewPointForm(workflow.PointDeps{
		MapID:         mapID,
		Writer:        d.deps.Gateway,
		Searcher:      d.deps.Gateway,
		Reloader:      d,
		Search:        d.deps.Search,
		SearchOptions: d.deps.SearchOptions,
	})
	d.routes = workflow.NewRouteForm(workflow.RouteDeps{
		MapID:    mapID,
		Writer:   d.deps.Gateway,
		Snapshot: d,
		Reloader: d,
	})
	_ = d.state.Update(func(s State) State {
		return State{Phase: PhaseLoading, MapID: mapID, Category: s.Category, Backend: s.Backend}
	})
	d.mu.Unlock()

	return d.load(ctx, "activate")
}

// Reload re-runs the full fan-out for the active map.
func (d *MapDetail) Reload(ctx context.Context) error {
	d.mu.Lock()
	active := d.mapID != 0
	d.mu.Unlock()
	if !active {
		return ErrNotActive
	}
	return d.load(ctx, "reload")
}

// fetched holds the results of one fan-out.
type fetched struct {
	m            *models.Map
	points       []models.Point
	participants []models.Participant
	routes       []models.Route
	stats        *models.UserStats
}

func (d *MapDetail) fetch(ctx context.Context, mapID int64) (fetched, error) {
	var f fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		f.m, err = d.deps.Gateway.GetMap(gctx, mapID)
		return wrap("map", err)
	})
	g.Go(func() (err error) {
		f.points, err = d.deps.Gateway.ListPoints(gctx, mapID)
		return wrap("points", err)
	})
	g.Go(func() (err error) {
		f.participants, err = d.deps.Gateway.ListParticipants(gctx, mapID)
		return wrap("participants", err)
	})
	g.Go(func() (err error) {
		f.routes, err = d.deps.Gateway.ListRoutes(gctx, mapID)
		return wrap("routes", err)
	})
	g.Go(func() (err error) {
		f.stats, err = d.deps.Gateway.MyStats(gctx)
		return wrap("stats", err)
	})

	if err := g.Wait(); err != nil {
		return fetched{}, err
	}
	if f.m == nil {
		return fetched{}, fmt.Errorf("load map %d: empty response", mapID)
	}
	return f, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// load runs one fan-out and commits it if no newer load started meanwhile.
func (d *MapDetail) load(ctx context.Context, trigger string) error {
	d.mu.Lock()
	d.gen++
	gen, mapID := d.gen, d.mapID
	d.mu.Unlock()

	start := time.Now()
	f, err := d.fetch(ctx, mapID)

	d.mu.Lock()
	if gen != d.gen || mapID != d.mapID {
		d.mu.Unlock()
		metrics.RecordSnapshotLoad(trigger, "discarded", time.Since(start))
		logging.Ctx(ctx).Debug().Int64("map_id", mapID).Uint64("generation", gen).Msg("Discarded superseded snapshot load")
		return nil
	}

	if err != nil {
		d.abandonLocked(err)
		d.mu.Unlock()
		metrics.RecordSnapshotLoad(trigger, "error", time.Since(start))
		logging.Ctx(ctx).Error().Err(err).Int64("map_id", mapID).Str("trigger", trigger).Msg("Failed to load map, returning home")
		d.deps.Navigator.Home()
		return err
	}

	snap := &Snapshot{
		Map:          *f.m,
		Points:       f.points,
		Participants: f.participants,
		Routes:       f.routes,
		Stats:        f.stats,
		Generation:   gen,
		LoadedAt:     d.deps.Now(),
	}
	d.commitLocked(snap)
	d.mu.Unlock()

	metrics.RecordSnapshotLoad(trigger, "success", time.Since(start))
	metrics.SetSnapshotEntities(len(snap.Points), len(snap.Routes), len(snap.Participants))
	logging.Ctx(ctx).Info().
		Int64("map_id", mapID).
		Str("trigger", trigger).
		Int("points", len(snap.Points)).
		Int("routes", len(snap.Routes)).
		Int("participants", len(snap.Participants)).
		Msg("Map snapshot committed")
	return nil
}

// commitLocked publishes snap, re-derives the view and re-renders.
func (d *MapDetail) commitLocked(snap *Snapshot) {
	_ = d.state.Update(func(s State) State {
		s.Phase = PhaseReady
		s.Snapshot = snap
		s.Err = nil
		s.View = filter.Canvas(snap.Points, snap.Routes, snap.Participants, s.Category)
		s.Selected = reselect(s.Selected, s.View.Points)
		return s
	})
	d.renderLocked()
}

// reselect refreshes the selected point from the rendered points, dropping
// it when the point is gone or filtered out.
func reselect(sel *models.Point, points []models.Point) *models.Point {
	if sel == nil {
		return nil
	}
	for i := range points {
		if points[i].ID == sel.ID {
			p := points[i]
			return &p
		}
	}
	return nil
}

func (d *MapDetail) abandonLocked(err error) {
	d.unmountLocked()
	if d.points != nil {
		d.points.Close()
	}
	if d.routes != nil {
		d.routes.Close()
	}
	d.mapID = 0
	_ = d.state.Update(func(s State) State {
		return State{Phase: PhaseAbandoned, MapID: s.MapID, Err: err}
	})
}

// renderLocked pushes the current view to the mounted canvas.
func (d *MapDetail) renderLocked() {
	if d.canvas == nil {
		return
	}
	s := d.state.Get()
	if s.Snapshot == nil {
		return
	}
	if err := d.canvas.SetViewModel(s.View); err != nil {
		logging.Warn().Err(err).Str("backend", string(d.canvas.Kind())).Msg("Canvas render failed")
	}
}

// SetCategoryFilter narrows the canvas to one category. Nil shows all.
func (d *MapDetail) SetCategoryFilter(c *models.Category) error {
	if c != nil && !c.Valid() {
		return fmt.Errorf("unknown category %q", *c)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var cat *models.Category
	if c != nil {
		v := *c
		cat = &v
	}
	_ = d.state.Update(func(s State) State {
		s.Category = cat
		if s.Snapshot != nil {
			s.View = filter.Canvas(s.Snapshot.Points, s.Snapshot.Routes, s.Snapshot.Participants, cat)
			s.Selected = reselect(s.Selected, s.View.Points)
		}
		return s
	})
	d.renderLocked()
	return nil
}

// MountCanvas attaches c, replacing and disposing any mounted canvas.
func (d *MapDetail) MountCanvas(c canvas.Canvas) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unmountLocked()
	d.canvas = c
	d.cancelEntity = c.OnEntityClick(d.selectPoint)
	d.cancelCanvas = c.OnCanvasClick(d.openAddPoint)
	_ = d.state.Update(func(s State) State {
		s.Backend = c.Kind()
		return s
	})
	d.renderLocked()
}

// SwitchBackend replaces the mounted canvas with a new backend of kind,
// keeping the view model and click semantics.
func (d *MapDetail) SwitchBackend(kind canvas.Kind) error {
	c, err := canvas.New(kind, d.deps.Canvas)
	if err != nil {
		return err
	}
	d.MountCanvas(c)
	logging.Info().Str("backend", string(kind)).Msg("Switched canvas backend")
	return nil
}

// UnmountCanvas disposes the mounted canvas.
func (d *MapDetail) UnmountCanvas() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unmountLocked()
	_ = d.state.Update(func(s State) State {
		s.Backend = ""
		return s
	})
}

func (d *MapDetail) unmountLocked() {
	if d.canvas == nil {
		return
	}
	d.cancelEntity()
	d.cancelCanvas()
	d.canvas.Dispose()
	d.canvas, d.cancelEntity, d.cancelCanvas = nil, nil, nil
}

// Canvas returns the mounted canvas, or nil.
func (d *MapDetail) Canvas() canvas.Canvas {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvas
}

// Click forwards a click at a geographic position to the mounted canvas.
func (d *MapDetail) Click(at canvas.LatLng) (canvas.Outcome, error) {
	c := d.Canvas()
	if c == nil {
		return canvas.OutcomeIgnored, ErrNoCanvas
	}
	return c.Click(at), nil
}

// Focus flies the mounted canvas to a point ("find on map").
func (d *MapDetail) Focus(lat, lng float64, zoom int) error {
	c := d.Canvas()
	if c == nil {
		return ErrNoCanvas
	}
	return c.Focus(canvas.LatLng{Lat: lat, Lng: lng}, zoom)
}

func (d *MapDetail) selectPoint(p models.Point) {
	_ = d.state.Update(func(s State) State {
		sel := p
		s.Selected = &sel
		return s
	})
}

func (d *MapDetail) openAddPoint(at canvas.LatLng) {
	if f := d.PointForm(); f != nil {
		f.OpenCreate(at.Lat, at.Lng)
	}
}

// Selection is the selected point and what the viewer may do with it.
type Selection struct {
	Point   models.Point
	CanEdit bool
}

// Selected returns the selected point. Only the point's author may edit or
// delete it.
func (d *MapDetail) Selected() (Selection, bool) {
	s := d.state.Get()
	if s.Selected == nil {
		return Selection{}, false
	}
	return Selection{
		Point:   *s.Selected,
		CanEdit: d.deps.ViewerID != 0 && s.Selected.UserID == d.deps.ViewerID,
	}, true
}

// ClearSelection deselects the point.
func (d *MapDetail) ClearSelection() {
	_ = d.state.Update(func(s State) State {
		s.Selected = nil
		return s
	})
}

// EditSelected opens the point form for the selected point.
func (d *MapDetail) EditSelected() error {
	sel, ok := d.Selected()
	if !ok || !sel.CanEdit {
		return fmt.Errorf("%w: only the author can edit a point", ErrNotAllowed)
	}
	f := d.PointForm()
	if f == nil {
		return ErrNotActive
	}
	f.OpenEdit(sel.Point)
	return nil
}

// AddPoint opens a blank point form, as the add button does.
func (d *MapDetail) AddPoint() error {
	f := d.PointForm()
	if f == nil {
		return ErrNotActive
	}
	f.OpenCreateBlank()
	return nil
}

// AddRoute opens the route form for a new route. Personal maps have no
// routes.
func (d *MapDetail) AddRoute() error {
	f := d.RouteForm()
	if f == nil {
		return ErrNotActive
	}
	if !d.Capabilities().RoutesEnabled {
		return fmt.Errorf("%w: routes are disabled on personal maps", ErrNotAllowed)
	}
	f.OpenCreate()
	return nil
}

// EditRoute opens the route form for a committed route.
func (d *MapDetail) EditRoute(routeID int64) error {
	f := d.RouteForm()
	if f == nil {
		return ErrNotActive
	}
	if !d.Capabilities().RoutesEnabled {
		return fmt.Errorf("%w: routes are disabled on personal maps", ErrNotAllowed)
	}
	snap := d.state.Get().Snapshot
	if snap == nil {
		return ErrNotActive
	}
	for _, r := range snap.Routes {
		if r.ID == routeID {
			f.OpenEdit(r)
			return nil
		}
	}
	return fmt.Errorf("%w: route %d", ErrNotFound, routeID)
}

// Capabilities is the viewer's permission set on the active map.
type Capabilities struct {
	Owner    bool `json:"owner"`
	Personal bool `json:"personal"`
	// CanInvite covers inviting and removing participants.
	CanInvite     bool `json:"can_invite"`
	CanLeave      bool `json:"can_leave"`
	RoutesEnabled bool `json:"routes_enabled"`
	Leaderboard   bool `json:"leaderboard"`
	// Ranked is true on competitive maps, where the leaderboard shows ranks.
	Ranked bool `json:"ranked"`
}

// Capabilities derives the viewer's permissions from the snapshot.
func (d *MapDetail) Capabilities() Capabilities {
	m := d.CurrentMap()
	if m == nil {
		return Capabilities{}
	}
	owner := m.OwnedBy(d.deps.ViewerID)
	personal := m.IsPersonal()
	return Capabilities{
		Owner:         owner,
		Personal:      personal,
		CanInvite:     owner && !personal,
		CanLeave:      !owner && !personal,
		RoutesEnabled: !personal,
		Leaderboard:   !personal,
		Ranked:        m.Type == models.MapTypeCompetitive,
	}
}

// Standing is one participant's row in the per-map leaderboard.
type Standing struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Color    string `json:"color"`
	Points   int    `json:"points"`
}

// Leaderboard ranks participants by their point count on this map,
// ignoring the category filter. Personal maps have none.
func (d *MapDetail) Leaderboard() []Standing {
	snap := d.state.Get().Snapshot
	if snap == nil || snap.Map.IsPersonal() {
		return nil
	}

	counts := make(map[int64]int, len(snap.Participants))
	for _, p := range snap.Points {
		counts[p.UserID]++
	}
	out := make([]Standing, 0, len(snap.Participants))
	for i := range snap.Participants {
		p := &snap.Participants[i]
		out = append(out, Standing{
			UserID:   p.UserID,
			Username: p.Username,
			Color:    p.Color(d.defaultColor()),
			Points:   counts[p.UserID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (d *MapDetail) defaultColor() string {
	if d.deps.Canvas.DefaultColor != "" {
		return d.deps.Canvas.DefaultColor
	}
	return canvas.DefaultColor
}

// mutate runs op against the active map and reloads on success. Errors go
// back to the caller and never change the view state.
func (d *MapDetail) mutate(ctx context.Context, name string, op func(mapID int64) error) error {
	d.mu.Lock()
	mapID := d.mapID
	d.mu.Unlock()
	if mapID == 0 {
		return ErrNotActive
	}

	if err := op(mapID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("operation", name).Int64("map_id", mapID).Msg("Map mutation failed")
		return err
	}
	return d.Reload(ctx)
}

// DeletePoint deletes a point and reloads.
func (d *MapDetail) DeletePoint(ctx context.Context, pointID int64) error {
	return d.mutate(ctx, "delete_point", func(mapID int64) error {
		return d.deps.Gateway.DeletePoint(ctx, mapID, pointID)
	})
}

// DeleteRoute deletes a route and reloads.
func (d *MapDetail) DeleteRoute(ctx context.Context, routeID int64) error {
	return d.mutate(ctx, "delete_route", func(mapID int64) error {
		return d.deps.Gateway.DeleteRoute(ctx, mapID, routeID)
	})
}

// InviteParticipant invites a user by name. Owner only, not on personal
// maps.
func (d *MapDetail) InviteParticipant(ctx context.Context, username string) error {
	if !d.Capabilities().CanInvite {
		return fmt.Errorf("%w: only the owner can invite participants", ErrNotAllowed)
	}
	return d.mutate(ctx, "invite_participant", func(mapID int64) error {
		return d.deps.Gateway.InviteParticipant(ctx, mapID, username)
	})
}

// RemoveParticipant removes a member. Owner only, and the owner cannot be
// removed.
func (d *MapDetail) RemoveParticipant(ctx context.Context, userID int64) error {
	if !d.Capabilities().CanInvite {
		return fmt.Errorf("%w: only the owner can remove participants", ErrNotAllowed)
	}
	if m := d.CurrentMap(); m != nil && m.CreatorID == userID {
		return fmt.Errorf("%w: cannot remove the owner", ErrNotAllowed)
	}
	return d.mutate(ctx, "remove_participant", func(mapID int64) error {
		return d.deps.Gateway.RemoveParticipant(ctx, mapID, userID)
	})
}

// ChangeParticipantColor sets a participant's marker color. Members may
// change their own color; the owner may change anyone's.
func (d *MapDetail) ChangeParticipantColor(ctx context.Context, userID int64, color string) error {
	if userID != d.deps.ViewerID && !d.Capabilities().Owner {
		return fmt.Errorf("%w: only the owner can change others' colors", ErrNotAllowed)
	}
	return d.mutate(ctx, "change_color", func(mapID int64) error {
		return d.deps.Gateway.UpdateParticipantColor(ctx, mapID, userID, color)
	})
}

// LeaveMap removes the viewer from the map and returns home.
func (d *MapDetail) LeaveMap(ctx context.Context) error {
	if !d.Capabilities().CanLeave {
		return fmt.Errorf("%w: the owner cannot leave their own map", ErrNotAllowed)
	}
	d.mu.Lock()
	mapID := d.mapID
	d.mu.Unlock()
	if mapID == 0 {
		return ErrNotActive
	}

	if err := d.deps.Gateway.LeaveMap(ctx, mapID); err != nil {
		return err
	}
	d.Close()
	d.deps.Navigator.Home()
	return nil
}

// Close releases the canvas and forms and invalidates in-flight loads.
func (d *MapDetail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.unmountLocked()
	if d.points != nil {
		d.points.Close()
	}
	if d.routes != nil {
		d.routes.Close()
	}
	d.mapID = 0
	_ = d.state.Set(State{Phase: PhaseIdle})
}

var _ Gateway = (*gateway.Client)(nil)
