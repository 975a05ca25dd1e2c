// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package canvas

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/models"
)

// Kind selects a rendering backend.
type Kind string

// Backend kinds.
const (
	Kind2D Kind = "2d"
	Kind3D Kind = "3d"
)

// State is the lifecycle of one canvas mount.
type State int

// Canvas states. Disposed is terminal.
const (
	StateUninitialized State = iota
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is how a click was dispatched.
type Outcome string

// Click outcomes.
const (
	OutcomeEntity  Outcome = "entity"
	OutcomeCanvas  Outcome = "canvas"
	OutcomeIgnored Outcome = "ignored"
)

// Sentinel errors.
var (
	ErrDisposed    = errors.New("canvas: disposed")
	ErrUnknownKind = errors.New("canvas: unknown backend kind")
)

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Clickable reports whether a canvas click at ll may create a point.
// Poles are excluded to avoid projection singularities.
func (ll LatLng) Clickable() bool {
	return ll.Lat >= -85 && ll.Lat <= 85 && ll.Lng >= -180 && ll.Lng <= 180
}

// Canvas renders a filter.ViewModel and turns pointer input into entity or
// canvas clicks. Both backends share the same click semantics.
type Canvas interface {
	Kind() Kind
	State() State

	// SetViewModel re-renders from vm. Identical input yields an identical
	// scene. Returns ErrDisposed after Dispose.
	SetViewModel(vm filter.ViewModel) error

	// OnEntityClick and OnCanvasClick register handlers and return a func
	// that removes them.
	OnEntityClick(fn func(models.Point)) (cancel func())
	OnCanvasClick(fn func(LatLng)) (cancel func())

	// Click dispatches a click at a geographic position.
	Click(at LatLng) Outcome

	// Focus moves the camera. A zoom of 0 keeps the current zoom.
	Focus(at LatLng, zoom int) error

	Scene() Scene
	LiveResources() int

	// Dispose releases every resource, including render loops and handlers.
	Dispose()
}

// Options configures a backend.
type Options struct {
	DefaultColor string
	Center       LatLng
	Zoom         int
	Width        int
	Height       int
	HitRadiusPx  float64

	// Globe only.
	AutoRotateSpeed float64
	FrameInterval   time.Duration
}

// OptionsFromConfig maps canvas configuration to backend options.
func OptionsFromConfig(cfg config.CanvasConfig) Options {
	return Options{
		DefaultColor:    cfg.DefaultColor,
		Center:          LatLng{Lat: cfg.CenterLat, Lng: cfg.CenterLng},
		Zoom:            cfg.Zoom,
		Width:           cfg.Width,
		Height:          cfg.Height,
		HitRadiusPx:     cfg.HitRadiusPx,
		AutoRotateSpeed: cfg.AutoRotateSpeed,
		FrameInterval:   cfg.FrameInterval,
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultColor == "" {
		o.DefaultColor = DefaultColor
	}
	if o.Center == (LatLng{}) {
		o.Center = LatLng{Lat: 41.9028, Lng: 12.4964}
	}
	if o.Zoom == 0 {
		o.Zoom = 5
	}
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.HitRadiusPx <= 0 {
		o.HitRadiusPx = 16
	}
	if o.AutoRotateSpeed == 0 {
		o.AutoRotateSpeed = 0.5
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = 16 * time.Millisecond
	}
	return o
}

// New creates a backend of the given kind.
func New(kind Kind, opts Options) (Canvas, error) {
	opts = opts.withDefaults()
	switch kind {
	case Kind2D:
		return NewTileMap(opts), nil
	case Kind3D:
		return NewGlobe(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
