// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package cache provides the in-memory data structures used by the map client.

# LRU

LRU is a generic, thread-safe least recently used cache with lazy TTL
expiration. The gateway keeps city search results in one so that retyping
a query inside the TTL does not hit the geocoder again:

	c := cache.NewLRU[[]models.CityResult](256, 10*time.Minute)
	c.Add("berlin", results)
	if hit, ok := c.Get("berlin"); ok {
	    return hit, nil
	}

# Spatial Hash Grid

SpatialHashGrid buckets point markers into fixed-size lat/lng cells so that a
canvas click only compares against markers in neighbouring cells:

	grid := cache.NewSpatialHashGrid(50)
	grid.Insert(12, 48.8566, 2.3522, point)
	if hit, ok := grid.Nearest(48.857, 2.352, 0.5); ok {
	    // hit.ID == 12
	}
*/
package cache
