// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

import "strings"

// CityResult is a geocoding suggestion from GET /geocode/search.
type CityResult struct {
	DisplayName string  `json:"display_name"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Label returns the city name, or the first segment of the display name.
func (c *CityResult) Label() string {
	if c.City != nil && *c.City != "" {
		return *c.City
	}
	first, _, _ := strings.Cut(c.DisplayName, ",")
	return strings.TrimSpace(first)
}
