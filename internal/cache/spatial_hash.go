// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package cache

import (
	"math"
	"sync"
)

const (
	kmPerDegree   = 111.0
	earthRadiusKm = 6371.0
	degToRad      = math.Pi / 180
)

// SpatialEntry is one indexed marker.
type SpatialEntry struct {
	ID   int64
	Lat  float64
	Lon  float64
	Data any
}

type cell struct{ x, y int }

// SpatialHashGrid buckets markers into square lat/lng cells so that a
// proximity query only measures markers in the cells the search radius
// can reach.
type SpatialHashGrid struct {
	mu      sync.RWMutex
	step    float64 // cell edge in degrees
	minX    int     // column of lon -180
	cols    int     // columns around the globe
	byID    map[int64]SpatialEntry
	buckets map[cell]map[int64]struct{}
}

// NewSpatialHashGrid sizes cells to roughly cellSizeKm (100km if <= 0).
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = 100
	}
	step := cellSizeKm / kmPerDegree
	minX := int(math.Floor(-180 / step))
	maxX := int(math.Floor(math.Nextafter(180, 0) / step))
	return &SpatialHashGrid{
		step:    step,
		minX:    minX,
		cols:    maxX - minX + 1,
		byID:    make(map[int64]SpatialEntry),
		buckets: make(map[cell]map[int64]struct{}),
	}
}

// column folds x back onto the globe so searches cross the antimeridian.
func (g *SpatialHashGrid) column(x int) int {
	off := (x - g.minX) % g.cols
	if off < 0 {
		off += g.cols
	}
	return g.minX + off
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func (g *SpatialHashGrid) cellOf(lat, lon float64) cell {
	return cell{
		x: int(math.Floor(wrapLon(lon) / g.step)),
		y: int(math.Floor(lat / g.step)),
	}
}

// Insert indexes a marker, replacing any previous marker with the same id.
func (g *SpatialHashGrid) Insert(id int64, lat, lon float64, data any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.byID[id]; ok {
		g.unlink(old)
	}
	e := SpatialEntry{ID: id, Lat: lat, Lon: lon, Data: data}
	g.byID[id] = e

	c := g.cellOf(lat, lon)
	ids := g.buckets[c]
	if ids == nil {
		ids = make(map[int64]struct{}, 4)
		g.buckets[c] = ids
	}
	ids[id] = struct{}{}
}

// Remove drops a marker and reports whether it was indexed.
func (g *SpatialHashGrid) Remove(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.byID[id]
	if ok {
		g.unlink(e)
		delete(g.byID, id)
	}
	return ok
}

// unlink requires the write lock.
func (g *SpatialHashGrid) unlink(e SpatialEntry) {
	c := g.cellOf(e.Lat, e.Lon)
	if ids := g.buckets[c]; ids != nil {
		delete(ids, e.ID)
		if len(ids) == 0 {
			delete(g.buckets, c)
		}
	}
}

// Get returns a copy of the marker with id.
func (g *SpatialHashGrid) Get(id int64) (*SpatialEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return &e, true
}

// QueryNearby returns copies of every marker within radiusKm.
func (g *SpatialHashGrid) QueryNearby(lat, lon, radiusKm float64) []*SpatialEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*SpatialEntry
	g.within(lat, lon, radiusKm, func(e SpatialEntry, _ float64) {
		out = append(out, &e)
	})
	return out
}

// Nearest returns the closest marker within radiusKm. Equal distances
// resolve to the higher id, the most recently created point.
func (g *SpatialHashGrid) Nearest(lat, lon, radiusKm float64) (*SpatialEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var (
		best  SpatialEntry
		bestD = math.Inf(1)
		found bool
	)
	g.within(lat, lon, radiusKm, func(e SpatialEntry, d float64) {
		if !found || d < bestD || (d == bestD && e.ID > best.ID) {
			best, bestD, found = e, d, true
		}
	})
	if !found {
		return nil, false
	}
	return &best, true
}

// within visits markers in range. A degree of longitude shortens by
// cos(lat), so the east-west cell span grows toward the poles. Columns
// wrap at the antimeridian. Caller holds a lock.
func (g *SpatialHashGrid) within(lat, lon, radiusKm float64, visit func(SpatialEntry, float64)) {
	spanDeg := radiusKm / kmPerDegree
	dy := int(math.Ceil(spanDeg/g.step)) + 1
	dx := dy
	if cosLat := math.Cos(lat * degToRad); cosLat > 0.01 {
		dx = int(math.Ceil(spanDeg/cosLat/g.step)) + 1
	}

	origin := g.cellOf(lat, lon)
	fromX, toX := origin.x-dx, origin.x+dx
	if 2*dx+1 >= g.cols {
		fromX, toX = g.minX, g.minX+g.cols-1
	}
	for x := fromX; x <= toX; x++ {
		col := g.column(x)
		for y := origin.y - dy; y <= origin.y+dy; y++ {
			for id := range g.buckets[cell{col, y}] {
				e := g.byID[id]
				if d := HaversineKm(lat, lon, e.Lat, e.Lon); d <= radiusKm {
					visit(e, d)
				}
			}
		}
	}
}

func (g *SpatialHashGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byID)
}

// NumCells counts non-empty cells.
func (g *SpatialHashGrid) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.buckets)
}

func (g *SpatialHashGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.byID)
	clear(g.buckets)
}

// HaversineKm is the great-circle distance between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	sinDLat := math.Sin((lat2 - lat1) * degToRad / 2)
	sinDLon := math.Sin((lon2 - lon1) * degToRad / 2)
	a := sinDLat*sinDLat + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*sinDLon*sinDLon
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
