// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package config loads Odyssey client configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Breaker BreakerConfig `koanf:"breaker"`
	Session SessionConfig `koanf:"session"`
	Search  SearchConfig  `koanf:"search"`
	Canvas  CanvasConfig  `koanf:"canvas"`
	List    ListConfig    `koanf:"list"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig describes the Odyssey backend REST surface.
type APIConfig struct {
	// BaseURL is the API origin, e.g. http://localhost:8000 or https://host/api.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds every HTTP request. It is the only timeout the
	// client applies; failures always surface as errors.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the number of retries on HTTP 429.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay is the first backoff delay; it doubles each retry.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RateLimit is the client-side request budget per second (0 = unlimited).
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// UploadsPath is the static path prefix photos are served from.
	UploadsPath string `koanf:"uploads_path"`
}

// BreakerConfig configures the gateway circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SessionConfig carries the bearer token handed over by the login flow.
type SessionConfig struct {
	Token string `koanf:"token"`
}

// SearchConfig configures the debounced city search.
type SearchConfig struct {
	// QuietWindow is the debounce interval after the last keystroke.
	QuietWindow time.Duration `koanf:"quiet_window"`

	// MinQueryLength suppresses lookups for shorter queries.
	MinQueryLength int `koanf:"min_query_length"`

	// CacheSize and CacheTTL bound the geocode result cache (0 size disables it).
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// CanvasConfig configures the rendering backends.
type CanvasConfig struct {
	// Backend selects the initial backend: 2d or 3d.
	Backend string `koanf:"backend"`

	DefaultColor string  `koanf:"default_color"`
	CenterLat    float64 `koanf:"center_lat"`
	CenterLng    float64 `koanf:"center_lng"`
	Zoom         int     `koanf:"zoom"`
	Width        int     `koanf:"width"`
	Height       int     `koanf:"height"`

	// HitRadiusPx is the marker hit-test radius in screen pixels.
	HitRadiusPx float64 `koanf:"hit_radius_px"`

	// Globe render loop settings.
	AutoRotateSpeed float64       `koanf:"auto_rotate_speed"`
	FrameInterval   time.Duration `koanf:"frame_interval"`
}

// ListConfig configures the points management list.
type ListConfig struct {
	PageSize int `koanf:"page_size"`
}

// ServerConfig configures the local preview server.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RefreshInterval reloads the active map periodically so other
	// participants' changes show up. Zero disables it.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller information in log output.
	Caller bool `koanf:"caller"`
}
