// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package orchestrator owns the canonical state of an open map.

MapDetail loads a map's entity graph with one fan-out of five independent
reads (map, points, participants, routes, viewer stats) and commits them as
a single Snapshot only when all succeed. Any failure abandons the view and
sends the user home; no partial snapshot is ever published. Every
successful mutation, whether made here or through a workflow form, is
followed by a full reload instead of a local patch.

Each load takes a generation number. A load that finishes after a newer
one started is discarded, so the last started load always wins.

MapDetail also derives the filtered view model, renders it on the mounted
canvas, and routes canvas clicks: a marker selects its point, empty space
opens the add-point form at the clicked coordinate.

PointsPage drives the server-side paginated points list.
*/
package orchestrator
