// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/odyssey/config.yaml",
	"/etc/odyssey/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			Timeout:        30 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
			RateLimit:      20,
			RateBurst:      10,
			UploadsPath:    "/uploads",
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Search: SearchConfig{
			QuietWindow:    300 * time.Millisecond,
			MinQueryLength: 2,
			CacheSize:      256,
			CacheTTL:       10 * time.Minute,
		},
		Canvas: CanvasConfig{
			Backend:         "2d",
			DefaultColor:    "#3B82F6",
			CenterLat:       41.9028,
			CenterLng:       12.4964,
			Zoom:            5,
			Width:           1280,
			Height:          800,
			HitRadiusPx:     16,
			AutoRotateSpeed: 0.5,
			FrameInterval:   16 * time.Millisecond,
		},
		List: ListConfig{
			PageSize: 15,
		},
		Server: ServerConfig{
			Enabled:         false,
			Host:            "127.0.0.1",
			Port:            5181,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Default returns the built-in defaults without reading a file or the
// environment. Components use it as a baseline in tests.
func Default() *Config {
	return defaultConfig()
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in standard locations.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists koanf paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated strings into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf paths.
var envMappings = map[string]string{
	"odyssey_api_url":         "api.base_url",
	"api_timeout":             "api.timeout",
	"api_max_retries":         "api.max_retries",
	"api_retry_base_delay":    "api.retry_base_delay",
	"api_rate_limit":          "api.rate_limit",
	"api_rate_burst":          "api.rate_burst",
	"api_uploads_path":        "api.uploads_path",
	"breaker_enabled":         "breaker.enabled",
	"breaker_max_requests":    "breaker.max_requests",
	"breaker_interval":        "breaker.interval",
	"breaker_timeout":         "breaker.timeout",
	"breaker_min_requests":    "breaker.min_requests",
	"breaker_failure_ratio":   "breaker.failure_ratio",
	"odyssey_token":           "session.token",
	"search_quiet_window":     "search.quiet_window",
	"search_min_query_length": "search.min_query_length",
	"search_cache_size":       "search.cache_size",
	"search_cache_ttl":        "search.cache_ttl",
	"canvas_backend":          "canvas.backend",
	"canvas_default_color":    "canvas.default_color",
	"canvas_center_lat":       "canvas.center_lat",
	"canvas_center_lng":       "canvas.center_lng",
	"canvas_zoom":             "canvas.zoom",
	"canvas_width":            "canvas.width",
	"canvas_height":           "canvas.height",
	"canvas_hit_radius_px":    "canvas.hit_radius_px",
	"globe_auto_rotate_speed": "canvas.auto_rotate_speed",
	"canvas_frame_interval":   "canvas.frame_interval",
	"list_page_size":          "list.page_size",
	"enable_preview_server":   "server.enabled",
	"http_host":               "server.host",
	"http_port":               "server.port",
	"cors_origins":            "server.cors_origins",
	"rate_limit_requests":     "server.rate_limit_reqs",
	"rate_limit_window":       "server.rate_limit_window",
	"shutdown_timeout":        "server.shutdown_timeout",
	"refresh_interval":        "server.refresh_interval",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables map to "" and are ignored by the env provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
