// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

// BadgeInfo is one earned badge level.
type BadgeInfo struct {
	Level int    `json:"level"`
	Rank  string `json:"rank"`
}

// BadgesByCategory groups badges by achievement category.
type BadgesByCategory struct {
	Cities     []BadgeInfo `json:"cities"`
	Regions    []BadgeInfo `json:"regions"`
	Countries  []BadgeInfo `json:"countries"`
	Continents []BadgeInfo `json:"continents"`
}

// Milestones holds the next badge threshold per category.
type Milestones struct {
	Cities     int `json:"cities"`
	Regions    int `json:"regions"`
	Countries  int `json:"countries"`
	Continents int `json:"continents"`
}

// UserStats is the server-computed EnhancedUserStats of GET /users/me/stats.
type UserStats struct {
	TotalPoints      int              `json:"total_points"`
	UniqueCities     int              `json:"unique_cities"`
	UniqueRegions    int              `json:"unique_regions"`
	UniqueCountries  int              `json:"unique_countries"`
	UniqueContinents int              `json:"unique_continents"`
	CitiesList       []string         `json:"cities_list"`
	RegionsList      []string         `json:"regions_list"`
	CountriesList    []string         `json:"countries_list"`
	ContinentsList   []string         `json:"continents_list"`
	Badges           BadgesByCategory `json:"badges_by_category"`
	NextMilestones   Milestones       `json:"next_milestones"`
	TotalBadges      int              `json:"total_badges"`

	GlobalRankPoints     *int `json:"global_rank_points,omitempty"`
	GlobalRankCountries  *int `json:"global_rank_countries,omitempty"`
	GlobalRankContinents *int `json:"global_rank_continents,omitempty"`
}

// LeaderboardEntry is one row of GET /users/leaderboard.
type LeaderboardEntry struct {
	UserID           int64  `json:"user_id"`
	Username         string `json:"username"`
	TotalPoints      int    `json:"total_points"`
	UniqueCountries  int    `json:"unique_countries"`
	UniqueContinents int    `json:"unique_continents"`
	TotalBadges      int    `json:"total_badges"`
}

// User is the authenticated account returned by GET /users/me.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	TotalBadges int    `json:"total_badges"`
}
