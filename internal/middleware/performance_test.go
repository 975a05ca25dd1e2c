// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/odyssey/internal/logging"
)

func TestPerformanceMonitor_Stats(t *testing.T) {
	pm := NewPerformanceMonitor(100, 0)
	for i := 1; i <= 10; i++ {
		pm.Record(RequestSample{Route: "/a", Method: "GET", DurationMS: int64(i), StatusCode: 200})
	}
	pm.Record(RequestSample{Route: "/b", Method: "POST", DurationMS: 50, StatusCode: 502})

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(Stats()) = %d, want 2", len(stats))
	}
	a := stats[0]
	if a.Route != "GET /a" || a.RequestCount != 10 {
		t.Errorf("first = %+v, want GET /a with 10 requests", a)
	}
	if a.P50Duration != 5 || a.P99Duration != 9 || a.MaxDuration != 10 || a.AvgDuration != 5.5 {
		t.Errorf("percentiles = %+v", a)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("POST /b errors = %d, want 1", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitor_WindowEviction(t *testing.T) {
	pm := NewPerformanceMonitor(3, 0)
	for i := 1; i <= 5; i++ {
		pm.Record(RequestSample{Route: "/a", Method: "GET", DurationMS: int64(i)})
	}

	recent := pm.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(recent))
	}
	if recent[0].DurationMS != 3 || recent[2].DurationMS != 5 {
		t.Errorf("window = %+v, want samples 3..5", recent)
	}
	if got := pm.Recent(1); got[0].DurationMS != 5 {
		t.Errorf("Recent(1) = %+v, want newest", got)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))
	defer logging.Init(logging.DefaultConfig())

	pm := NewPerformanceMonitor(10, time.Nanosecond)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/slow/{id}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow/7", nil))

	recent := pm.Recent(1)
	if len(recent) != 1 {
		t.Fatal("expected one sample")
	}
	if recent[0].Route != "/slow/{id}" || recent[0].StatusCode != http.StatusAccepted {
		t.Errorf("sample = %+v", recent[0])
	}
	if !strings.Contains(buf.String(), "Slow request detected") {
		t.Errorf("expected slow request warning, got %s", buf.String())
	}
}

func TestPercentile_Empty(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}
