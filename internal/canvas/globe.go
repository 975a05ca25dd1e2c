// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package canvas

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/models"
)

// Globe constants. Positions are in globe space where the earth has
// radius 1.
const (
	PointAltitude = 0.01
	PointRadius   = 0.5

	arcSegments   = 16
	earthRadiusKm = 6371.0
)

// Globe is the rotating 3D backend. The render loop starts on the first
// view model and auto-rotates the camera until Dispose.
type Globe struct {
	*base

	stop   chan struct{}
	done   chan struct{}
	frames atomic.Uint64
}

// NewGlobe creates a 3D backend. Prefer New.
func NewGlobe(opts Options) *Globe {
	opts = opts.withDefaults()
	g := &Globe{base: newBase(Kind3D, opts)}
	g.proj = g
	return g
}

// SetViewModel renders vm and starts the render loop on first use.
func (g *Globe) SetViewModel(vm filter.ViewModel) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateDisposed {
		return ErrDisposed
	}
	g.vm = vm
	g.renderLocked()
	g.state = StateReady

	if g.stop == nil {
		g.stop = make(chan struct{})
		g.done = make(chan struct{})
		go g.loop(g.stop, g.done)
	}
	return nil
}

func (g *Globe) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.mu.Lock()
			if g.state != StateReady {
				g.mu.Unlock()
				return
			}
			g.camera.Rotation = math.Mod(g.camera.Rotation+g.opts.AutoRotateSpeed, 360)
			g.mu.Unlock()
			g.frames.Add(1)
		}
	}
}

// Frames returns the number of frames the render loop has produced.
func (g *Globe) Frames() uint64 {
	return g.frames.Load()
}

// Running reports whether the render loop goroutine is alive.
func (g *Globe) Running() bool {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Resize updates the viewport after a container size change.
func (g *Globe) Resize(width, height int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateDisposed {
		return ErrDisposed
	}
	if width > 0 {
		g.camera.Width = width
	}
	if height > 0 {
		g.camera.Height = height
	}
	return nil
}

// PickAt returns the point under a globe position without dispatching.
func (g *Globe) PickAt(lat, lng float64) (models.Point, bool) {
	return g.pick(LatLng{Lat: lat, Lng: lng})
}

// Focus turns the globe to face at and resets the auto-rotation.
func (g *Globe) Focus(at LatLng, zoom int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateDisposed {
		g.camera.Rotation = 0
	}
	return g.focusLocked(at, zoom)
}

// Dispose stops the render loop and waits for it to exit.
func (g *Globe) Dispose() {
	g.mu.Lock()
	disposed := g.disposeLocked()
	stop, done := g.stop, g.done
	g.mu.Unlock()

	if disposed && stop != nil {
		close(stop)
		<-done
	}
}

func (g *Globe) place(s *Scene) {
	for i := range s.Markers {
		m := &s.Markers[i]
		v := sphere(m.Position, 1+PointAltitude)
		m.Sphere = &v
		m.Radius = PointRadius
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		l.Arc = greatCircle(l.From, l.To, 1+PointAltitude)
	}
	s.Halos = nil
}

// hitRadiusKm treats the smaller viewport side as the globe diameter at
// MinZoom, doubling magnification per zoom level.
func (g *Globe) hitRadiusKm(float64) float64 {
	side := float64(min(g.camera.Width, g.camera.Height))
	if side <= 0 {
		side = 1
	}
	magnify := math.Exp2(float64(max(g.camera.Zoom-MinZoom, 0)))
	return g.opts.HitRadiusPx * 2 * earthRadiusKm / (side * magnify)
}

// sphere converts a coordinate to globe space at radius r.
func sphere(ll LatLng, r float64) Vec3 {
	phi := (90 - ll.Lat) * math.Pi / 180
	theta := (90 - ll.Lng) * math.Pi / 180
	return Vec3{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Cos(phi),
		Z: r * math.Sin(phi) * math.Sin(theta),
	}
}

// greatCircle samples the shorter arc between a and b.
func greatCircle(a, b LatLng, r float64) []Vec3 {
	va, vb := sphere(a, 1), sphere(b, 1)
	dot := va.X*vb.X + va.Y*vb.Y + va.Z*vb.Z
	omega := math.Acos(min(max(dot, -1), 1))
	if omega < 1e-9 || math.Pi-omega < 1e-9 {
		// Coincident or antipodal: no unique arc.
		return []Vec3{scale(va, r), scale(vb, r)}
	}

	out := make([]Vec3, 0, arcSegments+1)
	sinOmega := math.Sin(omega)
	for i := 0; i <= arcSegments; i++ {
		t := float64(i) / arcSegments
		wa := math.Sin((1-t)*omega) / sinOmega
		wb := math.Sin(t*omega) / sinOmega
		out = append(out, Vec3{
			X: r * (wa*va.X + wb*vb.X),
			Y: r * (wa*va.Y + wb*vb.Y),
			Z: r * (wa*va.Z + wb*vb.Z),
		})
	}
	return out
}

func scale(v Vec3, r float64) Vec3 {
	return Vec3{X: v.X * r, Y: v.Y * r, Z: v.Z * r}
}
