// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package canvas renders map view models through interchangeable backends.

Two backends implement the Canvas interface:

  - TileMap: flat Web Mercator tiles (256px, zoom 2..19, no wrap). Markers
    carry world pixel positions, points get a 5 km halo while no category
    filter is active, and PointerAt turns viewport pixels into clicks.
  - Globe: a rotating sphere. Markers carry globe-space positions, routes
    become great-circle arcs, and a render loop goroutine advances the
    auto-rotation until Dispose.

Rendering produces a Scene value rather than pixels. Both backends share
the same base, so color resolution, glyph lookup and click dispatch behave
identically regardless of which one is mounted.

# Click dispatch

A click is hit-tested against visible markers through a
cache.SpatialHashGrid. A hit fires the entity handlers with the point.
A miss fires the canvas handlers when latitude is within [-85, 85] and
longitude within [-180, 180]; anything else is ignored.

# Lifecycle

	c, err := canvas.New(canvas.Kind2D, canvas.OptionsFromConfig(cfg.Canvas))
	if err != nil {
	    return err
	}
	defer c.Dispose()

	cancel := c.OnCanvasClick(func(at canvas.LatLng) { openAddPoint(at) })
	defer cancel()

	if err := c.SetViewModel(vm); err != nil {
	    return err
	}

A canvas moves from uninitialized to ready on its first view model and to
disposed on Dispose. Disposed is terminal.
*/
package canvas
