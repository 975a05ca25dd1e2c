// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/odyssey/internal/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestChiMiddlewareConfigFromServer(t *testing.T) {
	mc := ChiMiddlewareConfigFromServer(config.ServerConfig{
		CORSOrigins:   []string{"http://localhost:5173"},
		RateLimitReqs: 5,
	})
	if mc.RateLimitDisabled || mc.RateLimitRequests != 5 || mc.RateLimitWindow != time.Minute {
		t.Errorf("rate limit config = %+v", mc)
	}
	if len(mc.CORSAllowedOrigins) != 1 {
		t.Errorf("CORS origins = %v", mc.CORSAllowedOrigins)
	}

	if !ChiMiddlewareConfigFromServer(config.ServerConfig{}).RateLimitDisabled {
		t.Error("zero request budget should disable rate limiting")
	}
}

func TestRateLimit(t *testing.T) {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})
	h := mw.RateLimit()(okHandler)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
	if !strings.Contains(last.Body.String(), ErrCodeRateLimited) {
		t.Errorf("429 body = %s, want %s envelope", last.Body.String(), ErrCodeRateLimited)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true, RateLimitRequests: 1, RateLimitWindow: time.Minute})
	for _, limiter := range []func(http.Handler) http.Handler{mw.RateLimit(), mw.RateLimitWrite(), mw.RateLimitWebSocket()} {
		h := limiter(okHandler)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: code = %d, want 200", i, rec.Code)
			}
		}
	}
}

func TestCORS(t *testing.T) {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"http://allowed.test"},
		CORSAllowedMethods: []string{"GET", "POST"},
		RateLimitDisabled:  true,
	})
	h := mw.CORS()(okHandler)

	tests := []struct {
		origin string
		want   string
	}{
		{"http://allowed.test", "http://allowed.test"},
		{"http://evil.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	h := APISecurityHeaders()(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS behind a TLS proxy")
	}
}
