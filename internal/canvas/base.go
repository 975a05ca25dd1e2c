// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package canvas

import (
	"sort"
	"sync"

	"github.com/tomtom215/odyssey/internal/cache"
	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/metrics"
	"github.com/tomtom215/odyssey/internal/models"
)

// hitCellKm is the spatial hash cell size used for marker hit-testing.
const hitCellKm = 50

// projector is implemented by each backend.
type projector interface {
	// place fills the backend-specific geometry of a scene. Called with
	// base.mu held.
	place(s *Scene)
	// hitRadiusKm converts the pixel hit radius at lat into kilometers.
	// Called with base.mu held.
	hitRadiusKm(lat float64) float64
}

type resourceKind uint8

const (
	resMarker resourceKind = iota
	resLine
	resHalo
)

// resourceKey identifies one live visual resource.
type resourceKey struct {
	kind resourceKind
	id   int64
}

type handlerSet[F any] struct {
	next uint64
	fns  map[uint64]F
}

func (h *handlerSet[F]) add(fn F) uint64 {
	if h.fns == nil {
		h.fns = make(map[uint64]F)
	}
	h.next++
	h.fns[h.next] = fn
	return h.next
}

func (h *handlerSet[F]) snapshot() []F {
	ids := make([]uint64, 0, len(h.fns))
	for id := range h.fns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]F, len(ids))
	for i, id := range ids {
		out[i] = h.fns[id]
	}
	return out
}

// base holds the behavior shared by both backends: the state machine, color
// and glyph resolution, hit-testing and click dispatch, and the resource
// registry that keeps re-renders from leaking.
type base struct {
	kind Kind
	opts Options
	proj projector

	mu        sync.Mutex
	state     State
	vm        filter.ViewModel
	scene     Scene
	camera    Camera
	grid      *cache.SpatialHashGrid
	resources map[resourceKey]struct{}
	onEntity  handlerSet[func(models.Point)]
	onCanvas  handlerSet[func(LatLng)]
}

func newBase(kind Kind, opts Options) *base {
	return &base{
		kind: kind,
		opts: opts,
		camera: Camera{
			Center: opts.Center,
			Zoom:   opts.Zoom,
			Width:  opts.Width,
			Height: opts.Height,
		},
		grid:      cache.NewSpatialHashGrid(hitCellKm),
		resources: make(map[resourceKey]struct{}),
	}
}

func (b *base) Kind() Kind { return b.kind }

func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *base) SetViewModel(vm filter.ViewModel) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateDisposed {
		return ErrDisposed
	}

	b.vm = vm
	b.renderLocked()
	b.state = StateReady
	return nil
}

// renderLocked rebuilds the scene and hit index from the stored view model.
func (b *base) renderLocked() {
	colors := make(map[int64]string, len(b.vm.Participants))
	for i := range b.vm.Participants {
		p := &b.vm.Participants[i]
		colors[p.UserID] = p.Color(b.opts.DefaultColor)
	}

	s := Scene{Kind: b.kind, Camera: b.camera}
	b.grid.Clear()

	s.Markers = make([]Marker, 0, len(b.vm.Points))
	for _, p := range b.vm.Points {
		color, ok := colors[p.UserID]
		if !ok {
			color = b.opts.DefaultColor
		}
		var glyph string
		if info, ok := p.CategoryValue().Info(); ok {
			glyph = info.Glyph
		}
		s.Markers = append(s.Markers, Marker{
			PointID:  p.ID,
			Position: LatLng{Lat: p.Latitude, Lng: p.Longitude},
			Color:    color,
			Glyph:    glyph,
			Label:    p.Label(),
		})
		b.grid.Insert(p.ID, p.Latitude, p.Longitude, p)
	}
	sort.Slice(s.Markers, func(i, j int) bool { return s.Markers[i].PointID < s.Markers[j].PointID })

	index := b.vm.PointIndex()
	s.Lines = make([]Line, 0, len(b.vm.Routes))
	for _, r := range b.vm.Routes {
		start, end := index[r.StartPointID], index[r.EndPointID]
		if start == nil || end == nil {
			continue
		}
		color := r.Color
		if color == "" {
			color = RouteColor
		}
		s.Lines = append(s.Lines, Line{
			RouteID: r.ID,
			From:    LatLng{Lat: start.Latitude, Lng: start.Longitude},
			To:      LatLng{Lat: end.Latitude, Lng: end.Longitude},
			Color:   color,
			Weight:  RouteWeight,
			Dash:    RouteDash,
			Opacity: RouteOpacity,
		})
	}
	sort.Slice(s.Lines, func(i, j int) bool { return s.Lines[i].RouteID < s.Lines[j].RouteID })

	b.proj.place(&s)
	b.scene = s
	b.syncResourcesLocked()

	metrics.RecordCanvasRender(string(b.kind), len(b.resources))
	logging.Debug().
		Str("backend", string(b.kind)).
		Int("markers", len(s.Markers)).
		Int("lines", len(s.Lines)).
		Int("live", len(b.resources)).
		Msg("canvas rendered")
}

// syncResourcesLocked releases resources that are not in the current scene
// and acquires the new ones.
func (b *base) syncResourcesLocked() {
	want := make(map[resourceKey]struct{}, len(b.scene.Markers)+len(b.scene.Lines)+len(b.scene.Halos))
	for _, m := range b.scene.Markers {
		want[resourceKey{resMarker, m.PointID}] = struct{}{}
	}
	for _, l := range b.scene.Lines {
		want[resourceKey{resLine, l.RouteID}] = struct{}{}
	}
	for _, h := range b.scene.Halos {
		want[resourceKey{resHalo, h.PointID}] = struct{}{}
	}

	for k := range b.resources {
		if _, ok := want[k]; !ok {
			delete(b.resources, k)
		}
	}
	for k := range want {
		b.resources[k] = struct{}{}
	}
}

func (b *base) OnEntityClick(fn func(models.Point)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateDisposed {
		return func() {}
	}
	id := b.onEntity.add(fn)
	return func() {
		b.mu.Lock()
		delete(b.onEntity.fns, id)
		b.mu.Unlock()
	}
}

func (b *base) OnCanvasClick(fn func(LatLng)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateDisposed {
		return func() {}
	}
	id := b.onCanvas.add(fn)
	return func() {
		b.mu.Lock()
		delete(b.onCanvas.fns, id)
		b.mu.Unlock()
	}
}

// pick returns the visible point closest to at within the hit radius.
func (b *base) pick(at LatLng) (models.Point, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pickLocked(at)
}

func (b *base) pickLocked(at LatLng) (models.Point, bool) {
	if b.state != StateReady {
		return models.Point{}, false
	}
	entry, ok := b.grid.Nearest(at.Lat, at.Lng, b.proj.hitRadiusKm(at.Lat))
	if !ok {
		return models.Point{}, false
	}
	p, ok := entry.Data.(models.Point)
	return p, ok
}

// Click hit-tests markers first. A miss becomes a canvas click when the
// position is clickable and is ignored otherwise. Handlers run without the
// lock held.
func (b *base) Click(at LatLng) Outcome {
	b.mu.Lock()
	if b.state == StateDisposed {
		b.mu.Unlock()
		metrics.CanvasClicksTotal.WithLabelValues(string(b.kind), string(OutcomeIgnored)).Inc()
		return OutcomeIgnored
	}

	var outcome Outcome
	var entityFns []func(models.Point)
	var canvasFns []func(LatLng)
	point, hit := b.pickLocked(at)
	switch {
	case hit:
		outcome = OutcomeEntity
		entityFns = b.onEntity.snapshot()
	case at.Clickable():
		outcome = OutcomeCanvas
		canvasFns = b.onCanvas.snapshot()
	default:
		outcome = OutcomeIgnored
	}
	b.mu.Unlock()

	metrics.CanvasClicksTotal.WithLabelValues(string(b.kind), string(outcome)).Inc()
	for _, fn := range entityFns {
		fn(point)
	}
	for _, fn := range canvasFns {
		fn(at)
	}
	return outcome
}

// focusLocked moves the camera and re-places the scene.
func (b *base) focusLocked(at LatLng, zoom int) error {
	if b.state == StateDisposed {
		return ErrDisposed
	}
	b.camera.Center = at
	if zoom != 0 {
		b.camera.Zoom = zoom
	}
	if b.state == StateReady {
		b.renderLocked()
	}
	return nil
}

func (b *base) Scene() Scene {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.scene.clone()
	s.Kind = b.kind
	s.Camera = b.camera
	return s
}

func (b *base) LiveResources() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.resources)
}

// disposeLocked releases handlers, the hit index and every resource.
// It reports false when already disposed.
func (b *base) disposeLocked() bool {
	if b.state == StateDisposed {
		return false
	}
	b.state = StateDisposed
	b.onEntity.fns = nil
	b.onCanvas.fns = nil
	b.grid.Clear()
	clear(b.resources)
	b.scene = Scene{Kind: b.kind}
	b.vm = filter.ViewModel{}
	metrics.CanvasLiveResources.WithLabelValues(string(b.kind)).Set(0)
	logging.Debug().Str("backend", string(b.kind)).Msg("canvas disposed")
	return true
}
