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

	"github.com/tomtom215/odyssey/internal/orchestrator"
)

func TestRouter_MethodAndPath(t *testing.T) {
	h := newTestRouter(readyView())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/map", http.StatusOK},
		{http.MethodPost, "/api/v1/map", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/reload", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
		{http.MethodGet, "/ws", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(readyView())

	// Touch an instrumented route so the API series exist.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/map", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `endpoint="/api/v1/map"`) {
		t.Error("metrics output missing the /api/v1/map series")
	}
}

func TestRouter_MountsWebSocket(t *testing.T) {
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSwitchingProtocols)
	})
	h := NewRouter(NewHandler(readyView()), RouterConfig{
		Middleware: NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true}),
		WebSocket:  ws,
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusSwitchingProtocols {
		t.Errorf("code = %d, want 101 from the mounted handler", rec.Code)
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	v := &panickyView{fakeView: readyView()}
	h := newTestRouter(v)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
}

type panickyView struct {
	*fakeView
}

func (p *panickyView) Leaderboard() []orchestrator.Standing { panic("boom") }
