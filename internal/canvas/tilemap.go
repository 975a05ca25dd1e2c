// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package canvas

import "math"

// Tile map constants.
const (
	TileSize = 256
	MinZoom  = 2
	MaxZoom  = 19

	// HaloRadiusKm is the radius of the area circle around each point,
	// drawn only when no category filter is active.
	HaloRadiusKm    = 5.0
	haloFillOpacity = 0.15

	glyphMarkerPx = 32
	plainMarkerPx = 24

	// metersPerPixelZ0 is the Web Mercator ground resolution at the equator
	// for zoom 0 with 256px tiles.
	metersPerPixelZ0 = 156543.03392
)

// TileMap is the flat Web Mercator backend. The world does not wrap: screen
// positions west or east of the world map unproject to longitudes outside
// [-180, 180] and their clicks are ignored.
type TileMap struct {
	*base
}

// NewTileMap creates a 2D backend. Prefer New.
func NewTileMap(opts Options) *TileMap {
	opts = opts.withDefaults()
	t := &TileMap{base: newBase(Kind2D, opts)}
	t.camera.Zoom = clampZoom(opts.Zoom)
	t.proj = t
	return t
}

func clampZoom(z int) int {
	return min(max(z, MinZoom), MaxZoom)
}

// Project converts a coordinate to world pixels at zoom.
func Project(ll LatLng, zoom int) Pixel {
	scale := worldSize(zoom)
	s := math.Sin(ll.Lat * math.Pi / 180)
	s = min(max(s, -0.9999), 0.9999)
	return Pixel{
		X: (ll.Lng + 180) / 360 * scale,
		Y: (0.5 - math.Log((1+s)/(1-s))/(4*math.Pi)) * scale,
	}
}

// Unproject converts world pixels at zoom back to a coordinate.
func Unproject(p Pixel, zoom int) LatLng {
	scale := worldSize(zoom)
	n := math.Pi - 2*math.Pi*p.Y/scale
	return LatLng{
		Lat: math.Atan(math.Sinh(n)) * 180 / math.Pi,
		Lng: p.X/scale*360 - 180,
	}
}

func worldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

func (t *TileMap) place(s *Scene) {
	zoom := t.camera.Zoom
	for i := range s.Markers {
		m := &s.Markers[i]
		px := Project(m.Position, zoom)
		m.Pixel = &px
		if m.Glyph != "" {
			m.SizePx = glyphMarkerPx
		} else {
			m.SizePx = plainMarkerPx
		}
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		l.Path = []Pixel{Project(l.From, zoom), Project(l.To, zoom)}
	}

	s.Halos = nil
	if !t.vm.Filtered() {
		s.Halos = make([]Halo, 0, len(s.Markers))
		for _, m := range s.Markers {
			s.Halos = append(s.Halos, Halo{
				PointID:     m.PointID,
				Center:      m.Position,
				RadiusKm:    HaloRadiusKm,
				Color:       m.Color,
				FillOpacity: haloFillOpacity,
			})
		}
	}
}

func (t *TileMap) hitRadiusKm(lat float64) float64 {
	mpp := metersPerPixelZ0 * math.Cos(lat*math.Pi/180) / math.Exp2(float64(t.camera.Zoom))
	return t.opts.HitRadiusPx * mpp / 1000
}

// Focus flies the camera to at. Zoom is clamped to [MinZoom, MaxZoom].
func (t *TileMap) Focus(at LatLng, zoom int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if zoom != 0 {
		zoom = clampZoom(zoom)
	}
	return t.focusLocked(at, zoom)
}

// PointerAt converts a viewport pixel to a coordinate, relative to the
// camera center, and dispatches it as a click.
func (t *TileMap) PointerAt(x, y float64) (LatLng, Outcome) {
	t.mu.Lock()
	cam := t.camera
	t.mu.Unlock()

	center := Project(cam.Center, cam.Zoom)
	world := Pixel{
		X: center.X + x - float64(cam.Width)/2,
		Y: center.Y + y - float64(cam.Height)/2,
	}
	at := Unproject(world, cam.Zoom)
	return at, t.Click(at)
}

// Dispose releases the tile map. Calling it again is a no-op.
func (t *TileMap) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposeLocked()
}
