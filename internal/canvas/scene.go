// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package canvas

// Style constants shared by both backends.
const (
	DefaultColor = "#3B82F6"

	RouteColor   = "#ffffff"
	RouteWeight  = 3
	RouteOpacity = 0.7
)

// RouteDash is the dash pattern of route lines.
var RouteDash = [2]int{10, 10}

// Pixel is a position in 2D world pixel space at the camera zoom.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a position in globe space, where the earth has radius 1.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Marker is one rendered point. Pixel is set by the tile map, Sphere by the
// globe.
type Marker struct {
	PointID  int64   `json:"point_id"`
	Position LatLng  `json:"position"`
	Color    string  `json:"color"`
	Glyph    string  `json:"glyph,omitempty"`
	Label    string  `json:"label"`
	SizePx   int     `json:"size_px,omitempty"`
	Radius   float64 `json:"radius,omitempty"`
	Pixel    *Pixel  `json:"pixel,omitempty"`
	Sphere   *Vec3   `json:"sphere,omitempty"`
}

// Line is a non-interactive route between two markers.
type Line struct {
	RouteID int64   `json:"route_id"`
	From    LatLng  `json:"from"`
	To      LatLng  `json:"to"`
	Color   string  `json:"color"`
	Weight  int     `json:"weight"`
	Dash    [2]int  `json:"dash"`
	Opacity float64 `json:"opacity"`
	Path    []Pixel `json:"path,omitempty"`
	Arc     []Vec3  `json:"arc,omitempty"`
}

// Halo is the translucent area circle drawn around a point on the tile map.
type Halo struct {
	PointID     int64   `json:"point_id"`
	Center      LatLng  `json:"center"`
	RadiusKm    float64 `json:"radius_km"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fill_opacity"`
}

// Camera is the viewport state.
type Camera struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Rotation is the globe's auto-rotation in degrees of longitude.
	Rotation float64 `json:"rotation,omitempty"`
}

// Scene is the inspectable output of a render. Markers are ordered by point
// id and lines by route id.
type Scene struct {
	Kind    Kind     `json:"kind"`
	Camera  Camera   `json:"camera"`
	Markers []Marker `json:"markers"`
	Lines   []Line   `json:"lines"`
	Halos   []Halo   `json:"halos,omitempty"`
}

// clone deep-copies s so callers cannot mutate backend state.
func (s Scene) clone() Scene {
	out := s
	out.Markers = make([]Marker, len(s.Markers))
	for i, m := range s.Markers {
		if m.Pixel != nil {
			p := *m.Pixel
			m.Pixel = &p
		}
		if m.Sphere != nil {
			v := *m.Sphere
			m.Sphere = &v
		}
		out.Markers[i] = m
	}
	out.Lines = make([]Line, len(s.Lines))
	for i, l := range s.Lines {
		l.Path = append([]Pixel(nil), l.Path...)
		l.Arc = append([]Vec3(nil), l.Arc...)
		out.Lines[i] = l
	}
	out.Halos = append([]Halo(nil), s.Halos...)
	return out
}
