// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/odyssey/internal/metrics"
	"github.com/tomtom215/odyssey/internal/models"
)

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", endpoint: "/users/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyStats returns the signed-in user's aggregate statistics.
func (c *Client) MyStats(ctx context.Context) (*models.UserStats, error) {
	var out models.UserStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me/stats", endpoint: "/users/me/stats"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Leaderboard returns the global leaderboard sorted by sortBy
// ("points", "countries" or "continents").
func (c *Client) Leaderboard(ctx context.Context, sortBy string, limit int) ([]models.LeaderboardEntry, error) {
	q := url.Values{}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []models.LeaderboardEntry
	err := c.do(ctx, request{method: http.MethodGet, path: "/users/leaderboard", endpoint: "/users/leaderboard", query: q}, &out)
	return out, err
}

// SearchCities looks up cities by free text. Queries shorter than the
// configured minimum return no results without a remote call. Results are
// cached per normalized query.
func (c *Client) SearchCities(ctx context.Context, query string) ([]models.CityResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < c.minQueryLength {
		return nil, nil
	}

	key := strings.ToLower(query)
	if hit, ok := c.geocode.Get(key); ok {
		metrics.GeocodeCacheHits.Inc()
		return hit, nil
	}
	metrics.GeocodeCacheMisses.Inc()

	var out []models.CityResult
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/geocode/search",
		endpoint: "/geocode/search",
		query:    url.Values{"q": []string{query}},
	}, &out)
	if err != nil {
		return nil, err
	}
	c.geocode.Add(key, out)
	return out, nil
}
