// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

/*
Package models defines the data structures exchanged with the Odyssey backend.

Key Components:

  - Map: a shared or personal map (Collaborative, Competitive, Personal)
  - Point: a geo-tagged entry owned by one participant
  - Route: a directed connector between two points of the same map
  - Participant: map membership with role and display color
  - UserStats: server-computed aggregates, badges and milestones
  - CityResult: an ephemeral geocoding suggestion
  - PointsPage: one page of the server-side paginated point list

All JSON field names match the backend wire format (snake_case). Models are
plain values; the client never mutates them after decoding.
*/
package models
