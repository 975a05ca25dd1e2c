// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

// MapType is the kind of map, fixed at creation.
type MapType string

// Map types accepted by the backend.
const (
	MapTypeCollaborative MapType = "Collaborative"
	MapTypeCompetitive   MapType = "Competitive"
	MapTypePersonal      MapType = "Personal"
)

// Valid reports whether t is one of the known map types.
func (t MapType) Valid() bool {
	switch t {
	case MapTypeCollaborative, MapTypeCompetitive, MapTypePersonal:
		return true
	}
	return false
}

// Map is the metadata of one map.
type Map struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Type      MapType `json:"type"`
	CreatorID int64   `json:"creator_id"`
}

// IsPersonal reports whether participant and route features are disabled.
func (m *Map) IsPersonal() bool {
	return m != nil && m.Type == MapTypePersonal
}

// OwnedBy reports whether userID created the map.
func (m *Map) OwnedBy(userID int64) bool {
	return m != nil && userID != 0 && m.CreatorID == userID
}

// CreateMapRequest is the body of POST /maps.
type CreateMapRequest struct {
	Name string  `json:"name" validate:"required,max=100"`
	Type MapType `json:"type" validate:"required,maptype"`
}
