// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/odyssey/internal/canvas"
	"github.com/tomtom215/odyssey/internal/filter"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/middleware"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/orchestrator"
)

// MapView is the map view the preview server drives. *orchestrator.MapDetail
// implements it.
type MapView interface {
	State() orchestrator.State
	FeatureCollection() filter.GeoJSONFeatureCollection
	Capabilities() orchestrator.Capabilities
	Leaderboard() []orchestrator.Standing
	Selected() (orchestrator.Selection, bool)
	SetCategoryFilter(c *models.Category) error
	Click(at canvas.LatLng) (canvas.Outcome, error)
	SwitchBackend(kind canvas.Kind) error
	Reload(ctx context.Context) error
}

var _ MapView = (*orchestrator.MapDetail)(nil)

// ClientCounter reports connected push clients.
type ClientCounter interface {
	GetClientCount() int
}

// Handler serves the preview API for one map view.
type Handler struct {
	view      MapView
	editor    Editor
	points    PointsList
	clients   ClientCounter
	perf      *middleware.PerformanceMonitor
	breaker   func() string
	startTime time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithClientCounter reports websocket client counts in health output.
func WithClientCounter(c ClientCounter) HandlerOption {
	return func(h *Handler) { h.clients = c }
}

// WithPerformanceMonitor serves per-route latency at /api/v1/perf.
func WithPerformanceMonitor(pm *middleware.PerformanceMonitor) HandlerOption {
	return func(h *Handler) { h.perf = pm }
}

// WithEditor enables the form, delete and participant routes.
func WithEditor(e Editor) HandlerOption {
	return func(h *Handler) { h.editor = e }
}

// WithPointsList serves the paginated points list at /api/v1/points.
func WithPointsList(l PointsList) HandlerOption {
	return func(h *Handler) { h.points = l }
}

// WithBreakerState reports the gateway circuit breaker in health output.
func WithBreakerState(fn func() string) HandlerOption {
	return func(h *Handler) { h.breaker = fn }
}

// NewHandler creates a Handler over view.
func NewHandler(view MapView, opts ...HandlerOption) *Handler {
	h := &Handler{view: view, startTime: time.Now()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status    string  `json:"status"`
	Phase     string  `json:"phase"`
	MapID     int64   `json:"map_id"`
	Breaker   string  `json:"circuit_breaker,omitempty"`
	WSClients int     `json:"ws_clients"`
	Uptime    float64 `json:"uptime_seconds"`
}

// Health reports "healthy" once a snapshot is committed, "starting" before
// that, and "unhealthy" (503) after the view was abandoned.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.view.State()
	hs := HealthStatus{
		Phase:  st.Phase.String(),
		MapID:  st.MapID,
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if h.breaker != nil {
		hs.Breaker = h.breaker()
	}
	if h.clients != nil {
		hs.WSClients = h.clients.GetClientCount()
	}

	status := http.StatusOK
	switch st.Phase {
	case orchestrator.PhaseReady:
		hs.Status = "healthy"
		if hs.Breaker == "open" {
			hs.Status = "degraded"
		}
	case orchestrator.PhaseAbandoned:
		hs.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	default:
		hs.Status = "starting"
	}

	respondJSON(w, status, models.Success(hs, 0))
}

// SelectionView is the selected point with the viewer's edit right.
type SelectionView struct {
	Point   models.Point `json:"point"`
	CanEdit bool         `json:"can_edit"`
}

// MapResponse is the /api/v1/map payload.
type MapResponse struct {
	Summary      orchestrator.Summary      `json:"summary"`
	Capabilities orchestrator.Capabilities `json:"capabilities"`
	Leaderboard  []orchestrator.Standing   `json:"leaderboard,omitempty"`
	Selection    *SelectionView            `json:"selection,omitempty"`
}

func (h *Handler) mapResponse() (MapResponse, uint64) {
	sum := h.view.State().Summary()
	resp := MapResponse{
		Summary:      sum,
		Capabilities: h.view.Capabilities(),
		Leaderboard:  h.view.Leaderboard(),
	}
	if sel, ok := h.view.Selected(); ok {
		resp.Selection = &SelectionView{Point: sel.Point, CanEdit: sel.CanEdit}
	}
	return resp, sum.Generation
}

// Map returns the view summary, the viewer's capabilities, the
// leaderboard and the current selection.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	resp, gen := h.mapResponse()
	respondData(w, resp, gen)
}

// GeoJSON returns the filtered view as a GeoJSON FeatureCollection.
func (h *Handler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	respondRaw(w, "application/geo+json", h.view.FeatureCollection())
}

// Filter sets the category filter from ?category=. An empty value shows
// every category.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	c, ok := models.ParseCategory(raw)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "unknown category: "+sanitizeLogValue(raw), nil)
		return
	}

	var cat *models.Category
	if c != "" {
		cat = &c
	}
	if err := h.view.SetCategoryFilter(cat); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	h.Map(w, r)
}

// ClickResponse reports how the canvas resolved a click.
type ClickResponse struct {
	Outcome   canvas.Outcome `json:"outcome"`
	At        canvas.LatLng  `json:"at"`
	Selection *SelectionView `json:"selection,omitempty"`
}

// Click resolves a click at a geographic position on the mounted canvas.
// A hit selects the point; a click on empty ground opens the add-point form.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	at := canvas.LatLng{Lat: *req.Latitude, Lng: *req.Longitude}
	outcome, err := h.view.Click(at)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	resp := ClickResponse{Outcome: outcome, At: at}
	if outcome == canvas.OutcomeEntity {
		if sel, ok := h.view.Selected(); ok {
			resp.Selection = &SelectionView{Point: sel.Point, CanEdit: sel.CanEdit}
		}
	}
	logging.Ctx(r.Context()).Debug().
		Str("outcome", string(outcome)).
		Float64("lat", at.Lat).
		Float64("lng", at.Lng).
		Msg("Canvas click")
	respondData(w, resp, 0)
}

// Backend switches the canvas backend without losing view state.
func (h *Handler) Backend(w http.ResponseWriter, r *http.Request) {
	var req BackendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.view.SwitchBackend(canvas.Kind(req.Kind)); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.Map(w, r)
}

// Reload refetches the active map's snapshot.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.view.Reload(r.Context()); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.Map(w, r)
}

// Perf returns per-route latency statistics.
func (h *Handler) Perf(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "performance monitoring disabled", nil)
		return
	}
	respondData(w, h.perf.Stats(), 0)
}
