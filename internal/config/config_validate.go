// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// minQuietWindow is the lower bound for the search debounce window.
const minQuietWindow = 250 * time.Millisecond

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateCanvas(); err != nil {
		return err
	}
	if c.List.PageSize < 1 || c.List.PageSize > 100 {
		return fmt.Errorf("LIST_PAGE_SIZE must be between 1 and 100, got %d", c.List.PageSize)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("ODYSSEY_API_URL is required")
	}
	if err := validateHTTPURL(c.API.BaseURL, "ODYSSEY_API_URL"); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("API_MAX_RETRIES must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}
	if c.API.RateLimit > 0 && c.API.RateBurst < 1 {
		return fmt.Errorf("API_RATE_BURST must be at least 1 when API_RATE_LIMIT is set")
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.QuietWindow < minQuietWindow {
		return fmt.Errorf("SEARCH_QUIET_WINDOW must be at least %v, got %v", minQuietWindow, c.Search.QuietWindow)
	}
	if c.Search.MinQueryLength < 2 {
		return fmt.Errorf("SEARCH_MIN_QUERY_LENGTH must be at least 2, got %d", c.Search.MinQueryLength)
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("SEARCH_CACHE_SIZE must not be negative")
	}
	return nil
}

func (c *Config) validateCanvas() error {
	switch c.Canvas.Backend {
	case "2d", "3d":
	default:
		return fmt.Errorf("CANVAS_BACKEND must be 2d or 3d, got %q", c.Canvas.Backend)
	}
	if !strings.HasPrefix(c.Canvas.DefaultColor, "#") {
		return fmt.Errorf("CANVAS_DEFAULT_COLOR must be a hex color, got %q", c.Canvas.DefaultColor)
	}
	if c.Canvas.CenterLat < -85 || c.Canvas.CenterLat > 85 {
		return fmt.Errorf("CANVAS_CENTER_LAT must be between -85 and 85")
	}
	if c.Canvas.CenterLng < -180 || c.Canvas.CenterLng > 180 {
		return fmt.Errorf("CANVAS_CENTER_LNG must be between -180 and 180")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas viewport must have positive size, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.FrameInterval <= 0 {
		return fmt.Errorf("CANVAS_FRAME_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RefreshInterval != 0 && c.Server.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be 0 or at least 1s, got %v", c.Server.RefreshInterval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that rawURL is an absolute http(s) URL without query.
// A path prefix is allowed because the API is often mounted under /api.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
