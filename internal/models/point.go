// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

// Category classifies a point. The zero value means "no category".
type Category string

// Point categories.
const (
	CategoryRestaurant Category = "Restaurant"
	CategoryHotel      Category = "Hotel"
	CategoryMonument   Category = "Monument"
	CategoryNature     Category = "Nature"
	CategoryHouse      Category = "House"
	CategoryShop       Category = "Shop"
	CategoryOther      Category = "Other"
)

// CategoryInfo holds the display attributes of a category.
type CategoryInfo struct {
	Name  Category `json:"name"`
	Glyph string   `json:"glyph"`
	Color string   `json:"color"`
}

// Categories lists every category in display order.
var Categories = []CategoryInfo{
	{CategoryRestaurant, "🍽️", "#EF4444"},
	{CategoryHotel, "🏨", "#3B82F6"},
	{CategoryMonument, "🏛️", "#F59E0B"},
	{CategoryNature, "🌲", "#10B981"},
	{CategoryHouse, "🏠", "#8B5CF6"},
	{CategoryShop, "🛍️", "#F43F5E"},
	{CategoryOther, "📍", "#64748B"},
}

// Info returns the display attributes of c.
func (c Category) Info() (CategoryInfo, bool) {
	for _, info := range Categories {
		if info.Name == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := c.Info()
	return ok
}

// ParseCategory converts user input to a Category. Empty input yields ("", true).
func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return "", true
	}
	c := Category(s)
	return c, c.Valid()
}

// Point is a single geo-located entry on a map.
type Point struct {
	ID          int64      `json:"id"`
	MapID       int64      `json:"map_id"`
	UserID      int64      `json:"user_id"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	City        *string    `json:"city,omitempty"`
	Region      *string    `json:"region,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Continent   *string    `json:"continent,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	PhotoPath   *string    `json:"photo_path,omitempty"`
	Timestamp   *Timestamp `json:"timestamp,omitempty"`
}

// CategoryValue returns the point's category or "" when unset.
func (p *Point) CategoryValue() Category {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// Label returns "City, Country" with "Unknown" for a missing city.
func (p *Point) Label() string {
	city := deref(p.City)
	if city == "" {
		city = "Unknown"
	}
	return city + ", " + deref(p.Country)
}

// PointsPage is one page of GET /maps/{id}/points/paginated.
type PointsPage struct {
	Items []Point `json:"items"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Pages int     `json:"pages"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
