// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package filter derives displayed subsets from canonical map state.
//
// Canvas is a pure client-side derivation for the map surface. ListQuery and
// Pager assemble and bound the server-side paginated list; sorting and
// searching of that list happen remotely.
package filter

import (
	"sort"
	"strings"

	"github.com/tomtom215/odyssey/internal/models"
)

// ViewModel is what a canvas backend renders.
type ViewModel struct {
	Points       []models.Point
	Routes       []models.Route
	Participants []models.Participant
	// Category is the active filter, nil when showing everything.
	Category *models.Category
}

// Filtered reports whether a category filter is active.
func (vm ViewModel) Filtered() bool {
	return vm.Category != nil
}

// PointIndex maps point ids to points.
func (vm ViewModel) PointIndex() map[int64]*models.Point {
	idx := make(map[int64]*models.Point, len(vm.Points))
	for i := range vm.Points {
		idx[vm.Points[i].ID] = &vm.Points[i]
	}
	return idx
}

// Canvas derives the view model for a category filter. A nil category keeps
// every point. Routes are kept only when both endpoints are in the kept
// point set, which also drops dangling routes.
func Canvas(points []models.Point, routes []models.Route, participants []models.Participant, category *models.Category) ViewModel {
	vm := ViewModel{
		Points:       make([]models.Point, 0, len(points)),
		Routes:       make([]models.Route, 0, len(routes)),
		Participants: append([]models.Participant(nil), participants...),
	}
	if category != nil {
		c := *category
		vm.Category = &c
	}

	visible := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if category != nil && p.CategoryValue() != *category {
			continue
		}
		vm.Points = append(vm.Points, p)
		visible[p.ID] = struct{}{}
	}

	for _, r := range routes {
		_, startOK := visible[r.StartPointID]
		_, endOK := visible[r.EndPointID]
		if startOK && endOK {
			vm.Routes = append(vm.Routes, r)
		}
	}

	return vm
}

// ByCity returns a copy of points sorted by city for endpoint pickers.
// Points without a city sort first, ties keep id order.
func ByCity(points []models.Point) []models.Point {
	out := append([]models.Point(nil), points...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := cityOf(&out[i]), cityOf(&out[j])
		if ci != cj {
			return ci < cj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cityOf(p *models.Point) string {
	if p.City == nil {
		return ""
	}
	return strings.ToLower(*p.City)
}
