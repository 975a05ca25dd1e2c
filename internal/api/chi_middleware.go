// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/middleware"
)

// ChiMiddlewareConfig configures the preview server's edge middleware.
// Empty CORS origins reject every cross-origin browser.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc // default: client IP
	RateLimitOnLimit  http.HandlerFunc // default: 429 error envelope
}

func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		CORSAllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		CORSExposedHeaders: []string{middleware.RequestIDHeader, "ETag"},
		CORSMaxAge:         int((24 * time.Hour).Seconds()),
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
	}
}

// ChiMiddlewareConfigFromServer derives the edge config from the server
// section. RateLimitReqs <= 0 turns limiting off.
func ChiMiddlewareConfigFromServer(cfg config.ServerConfig) *ChiMiddlewareConfig {
	mc := DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.CORSOrigins
	mc.RateLimitRequests = cfg.RateLimitReqs
	mc.RateLimitDisabled = cfg.RateLimitReqs <= 0
	if cfg.RateLimitWindow > 0 {
		mc.RateLimitWindow = cfg.RateLimitWindow
	}
	return mc
}

// RateLimitConfig is a request budget per window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

var (
	// RateLimitWrite bounds the endpoints that reach the backend or
	// rebuild the canvas.
	RateLimitWrite = RateLimitConfig{Requests: 30, Window: time.Minute}
	// RateLimitWebSocket bounds upgrade attempts per client.
	RateLimitWebSocket = RateLimitConfig{Requests: 30, Window: time.Minute}
)

// ChiMiddleware hands out the router's CORS and rate limit middleware.
type ChiMiddleware struct {
	cfg  *ChiMiddlewareConfig
	cors func(http.Handler) http.Handler
}

// NewChiMiddleware builds the middleware set. nil means defaults.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}
	return &ChiMiddleware{
		cfg: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: cfg.CORSAllowedMethods,
			AllowedHeaders: cfg.CORSAllowedHeaders,
			ExposedHeaders: cfg.CORSExposedHeaders,
			MaxAge:         cfg.CORSMaxAge,
		}),
	}
}

func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler { return m.cors }

// RateLimit applies the configured global budget.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(RateLimitConfig{Requests: m.cfg.RateLimitRequests, Window: m.cfg.RateLimitWindow})
}

// RateLimitCustom applies budget with the configured key and limit handler.
func (m *ChiMiddleware) RateLimitCustom(budget RateLimitConfig) func(http.Handler) http.Handler {
	return m.limit(budget)
}

func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.limit(RateLimitWrite)
}

func (m *ChiMiddleware) RateLimitWebSocket() func(http.Handler) http.Handler {
	return m.limit(RateLimitWebSocket)
}

func (m *ChiMiddleware) limit(budget RateLimitConfig) func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled || budget.Requests <= 0 {
		return passthrough
	}
	key := m.cfg.RateLimitKeyFunc
	if key == nil {
		key = httprate.KeyByIP
	}
	onLimit := m.cfg.RateLimitOnLimit
	if onLimit == nil {
		onLimit = tooManyRequests
	}
	return httprate.Limit(budget.Requests, budget.Window,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(onLimit),
	)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests, slow down", nil)
}

func passthrough(next http.Handler) http.Handler { return next }

var securityHeaders = [...][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
}

// APISecurityHeaders sets hardening headers. HSTS is only sent when the
// request arrived over TLS, directly or through a terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
