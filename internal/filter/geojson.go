// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package filter

import "github.com/tomtom215/odyssey/internal/models"

// GeoJSON type definitions
type GeoJSONGeometry struct {
	Type string `json:"type"`
	// Coordinates is [lng, lat] for a Point and [[lng, lat], ...] for a
	// LineString.
	Coordinates interface{} `json:"coordinates"`
}

type GeoJSONProperties struct {
	Kind     string  `json:"kind"`
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Color    string  `json:"color"`
	City     *string `json:"city,omitempty"`
	Country  *string `json:"country,omitempty"`
	Category string  `json:"category,omitempty"`
	Glyph    string  `json:"glyph,omitempty"`
	StartID  int64   `json:"start_point_id,omitempty"`
	EndID    int64   `json:"end_point_id,omitempty"`
}

type GeoJSONFeature struct {
	Type       string            `json:"type"`
	Geometry   GeoJSONGeometry   `json:"geometry"`
	Properties GeoJSONProperties `json:"properties"`
}

type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// FeatureCollection exports the view as GeoJSON: one Point feature per
// visible point, colored by its author, followed by one LineString per
// route. Authors without an assigned color get defaultColor.
func (vm ViewModel) FeatureCollection(defaultColor string) GeoJSONFeatureCollection {
	colors := make(map[int64]string, len(vm.Participants))
	for i := range vm.Participants {
		colors[vm.Participants[i].UserID] = vm.Participants[i].Color(defaultColor)
	}
	colorOf := func(userID int64) string {
		if c, ok := colors[userID]; ok {
			return c
		}
		return defaultColor
	}

	features := make([]GeoJSONFeature, 0, len(vm.Points)+len(vm.Routes))
	for i := range vm.Points {
		p := &vm.Points[i]
		props := GeoJSONProperties{
			Kind:     "point",
			ID:       p.ID,
			UserID:   p.UserID,
			Color:    colorOf(p.UserID),
			City:     p.City,
			Country:  p.Country,
			Category: string(p.CategoryValue()),
		}
		if info, ok := p.CategoryValue().Info(); ok {
			props.Glyph = info.Glyph
		}
		features = append(features, GeoJSONFeature{
			Type:       "Feature",
			Geometry:   GeoJSONGeometry{Type: "Point", Coordinates: []float64{p.Longitude, p.Latitude}},
			Properties: props,
		})
	}

	idx := vm.PointIndex()
	for _, r := range vm.Routes {
		from, okFrom := idx[r.StartPointID]
		to, okTo := idx[r.EndPointID]
		if !okFrom || !okTo {
			continue
		}
		features = append(features, GeoJSONFeature{
			Type: "Feature",
			Geometry: GeoJSONGeometry{
				Type:        "LineString",
				Coordinates: [][]float64{{from.Longitude, from.Latitude}, {to.Longitude, to.Latitude}},
			},
			Properties: GeoJSONProperties{
				Kind:    "route",
				ID:      r.ID,
				UserID:  r.UserID,
				Color:   routeColor(r),
				StartID: r.StartPointID,
				EndID:   r.EndPointID,
			},
		})
	}

	return GeoJSONFeatureCollection{Type: "FeatureCollection", Features: features}
}

func routeColor(r models.Route) string {
	if r.Color != "" {
		return r.Color
	}
	return "#ffffff"
}
