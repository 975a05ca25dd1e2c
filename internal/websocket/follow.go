// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package websocket

import (
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/orchestrator"
)

// StateSource publishes map view state. *orchestrator.MapDetail
// implements it.
type StateSource interface {
	Subscribe(fn func(orchestrator.State)) (unsubscribe func())
}

// ViewData is the payload of a view message.
type ViewData struct {
	Generation uint64      `json:"generation"`
	Category   string      `json:"category,omitempty"`
	Backend    string      `json:"backend,omitempty"`
	GeoJSON    interface{} `json:"geojson"`
}

// Follow pushes src's changes to every client until the returned function
// is called:
//   - status on every phase change
//   - snapshot on every committed load
//   - view when the snapshot, category filter or backend changes
//
// Points without an assigned author color are drawn in defaultColor.
func (h *Hub) Follow(src StateSource, defaultColor string) (stop func()) {
	var (
		started    bool
		phase      orchestrator.Phase
		generation uint64
		category   string
		backend    string
	)

	// Store notifications are serialized, so the closure state needs no lock.
	return src.Subscribe(func(s orchestrator.State) {
		sum := s.Summary()

		if !started || s.Phase != phase {
			h.BroadcastJSON(MessageTypeStatus, sum)
		}

		gen := sum.Generation
		snapshotChanged := s.Snapshot != nil && (!started || gen != generation)
		if snapshotChanged {
			h.BroadcastJSON(MessageTypeSnapshot, sum)
		}

		if s.Snapshot != nil && (snapshotChanged || sum.Category != category || sum.Backend != backend) {
			h.BroadcastJSON(MessageTypeView, ViewData{
				Generation: gen,
				Category:   sum.Category,
				Backend:    sum.Backend,
				GeoJSON:    s.View.FeatureCollection(defaultColor),
			})
			logging.Debug().
				Uint64("generation", gen).
				Str("category", sum.Category).
				Int("clients", h.GetClientCount()).
				Msg("pushed view update")
		}

		started = true
		phase, generation, category, backend = s.Phase, gen, sum.Category, sum.Backend
	})
}
