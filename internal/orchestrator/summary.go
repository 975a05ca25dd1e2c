// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package orchestrator

import (
	"time"

	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/models"
)

// Summary is the wire form of a State for status endpoints and pushes.
type Summary struct {
	Phase        string         `json:"phase"`
	MapID        int64          `json:"map_id"`
	Name         string         `json:"name,omitempty"`
	Type         models.MapType `json:"type,omitempty"`
	Generation   uint64         `json:"generation"`
	Points       int            `json:"points"`
	Routes       int            `json:"routes"`
	Participants int            `json:"participants"`
	Visible      int            `json:"visible_points"`
	Category     string         `json:"category,omitempty"`
	Backend      string         `json:"backend,omitempty"`
	Selected     int64          `json:"selected_point_id,omitempty"`
	LoadedAt     *time.Time     `json:"loaded_at,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// Summary condenses s.
func (s State) Summary() Summary {
	out := Summary{
		Phase:   s.Phase.String(),
		MapID:   s.MapID,
		Visible: len(s.View.Points),
		Backend: string(s.Backend),
	}
	if s.Category != nil {
		out.Category = string(*s.Category)
	}
	if s.Selected != nil {
		out.Selected = s.Selected.ID
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	if snap := s.Snapshot; snap != nil {
		loaded := snap.LoadedAt
		out.Name = snap.Map.Name
		out.Type = snap.Map.Type
		out.Generation = snap.Generation
		out.Points = len(snap.Points)
		out.Routes = len(snap.Routes)
		out.Participants = len(snap.Participants)
		out.LoadedAt = &loaded
	}
	return out
}

// FeatureCollection exports the current filtered view as GeoJSON.
func (d *MapDetail) FeatureCollection() filter.GeoJSONFeatureCollection {
	return d.state.Get().View.FeatureCollection(d.defaultColor())
}
