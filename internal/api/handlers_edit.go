// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/orchestrator"
	"github.com/tomtom215/odyssey/internal/workflow"
)

// Editor drives the add/edit forms and the other mutations of the active
// map. *orchestrator.MapDetail implements it.
type Editor interface {
	PointForm() *workflow.PointForm
	RouteForm() *workflow.RouteForm
	AddPoint() error
	EditSelected() error
	AddRoute() error
	EditRoute(routeID int64) error

	DeletePoint(ctx context.Context, pointID int64) error
	DeleteRoute(ctx context.Context, routeID int64) error
	InviteParticipant(ctx context.Context, username string) error
	RemoveParticipant(ctx context.Context, userID int64) error
	ChangeParticipantColor(ctx context.Context, userID int64, color string) error
	LeaveMap(ctx context.Context) error
}

var _ Editor = (*orchestrator.MapDetail)(nil)

// PointFormView is the point form as the preview server shows it.
type PointFormView struct {
	Phase         string              `json:"phase"`
	Mode          workflow.Mode       `json:"mode"`
	EditingID     int64               `json:"editing_id,omitempty"`
	Latitude      string              `json:"latitude"`
	Longitude     string              `json:"longitude"`
	Category      models.Category     `json:"category,omitempty"`
	Description   string              `json:"description"`
	Query         string              `json:"query"`
	Selected      *models.CityResult  `json:"selected,omitempty"`
	Locked        bool                `json:"locked"`
	PreviewURL    string              `json:"preview_url,omitempty"`
	HasPhoto      bool                `json:"has_photo"`
	Error         string              `json:"error,omitempty"`
	Suggestions   []models.CityResult `json:"suggestions"`
	SearchPending bool                `json:"search_pending"`
}

func pointFormView(f *workflow.PointForm) PointFormView {
	s := f.State()
	ss := f.SearchState()
	sugg := ss.Suggestions
	if sugg == nil {
		sugg = []models.CityResult{}
	}
	return PointFormView{
		Phase:         s.Phase.String(),
		Mode:          s.Mode,
		EditingID:     s.EditingID,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		Category:      s.Category,
		Description:   s.Description,
		Query:         s.Query,
		Selected:      s.Selected,
		Locked:        s.Locked(),
		PreviewURL:    s.PreviewURL,
		HasPhoto:      s.HasPhoto,
		Error:         s.Error,
		Suggestions:   sugg,
		SearchPending: ss.Pending,
	}
}

// RouteFormView is the route form with the points it may connect.
type RouteFormView struct {
	Phase     string         `json:"phase"`
	EditingID int64          `json:"editing_id,omitempty"`
	Start     int64          `json:"start_point_id"`
	End       int64          `json:"end_point_id"`
	Color     string         `json:"color,omitempty"`
	Error     string         `json:"error,omitempty"`
	Choices   []models.Point `json:"choices"`
}

func routeFormView(f *workflow.RouteForm) RouteFormView {
	s := f.State()
	choices := f.Choices()
	if choices == nil {
		choices = []models.Point{}
	}
	return RouteFormView{
		Phase:     s.Phase.String(),
		EditingID: s.EditingID,
		Start:     s.Start,
		End:       s.End,
		Color:     s.Color,
		Error:     s.Error,
		Choices:   choices,
	}
}

// requireEditor writes a 503 when editing is not wired.
func (h *Handler) requireEditor(w http.ResponseWriter, r *http.Request) bool {
	if h.editor == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "editing disabled", nil)
		return false
	}
	return true
}

func (h *Handler) pointForm(w http.ResponseWriter, r *http.Request) (*workflow.PointForm, bool) {
	if !h.requireEditor(w, r) {
		return nil, false
	}
	f := h.editor.PointForm()
	if f == nil {
		respondFailure(w, r, orchestrator.ErrNotActive)
		return nil, false
	}
	return f, true
}

func (h *Handler) routeForm(w http.ResponseWriter, r *http.Request) (*workflow.RouteForm, bool) {
	if !h.requireEditor(w, r) {
		return nil, false
	}
	f := h.editor.RouteForm()
	if f == nil {
		respondFailure(w, r, orchestrator.ErrNotActive)
		return nil, false
	}
	return f, true
}

// pathID parses the {name} URL parameter as a positive id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "invalid "+name+": "+sanitizeLogValue(raw), nil)
		return 0, false
	}
	return id, true
}

// PointFormState returns the point form and its city suggestions.
func (h *Handler) PointFormState(w http.ResponseWriter, r *http.Request) {
	f, ok := h.pointForm(w, r)
	if !ok {
		return
	}
	respondData(w, pointFormView(f), 0)
}

// OpenPointForm opens a blank point form, or edits the selected point.
func (h *Handler) OpenPointForm(w http.ResponseWriter, r *http.Request) {
	var req OpenPointRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	f, ok := h.pointForm(w, r)
	if !ok {
		return
	}
	open := h.editor.AddPoint
	if req.EditSelected {
		open = h.editor.EditSelected
	}
	if err := open(); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, pointFormView(f), 0)
}

// UpdatePointForm applies a patch to the open point form.
func (h *Handler) UpdatePointForm(w http.ResponseWriter, r *http.Request) {
	var patch PointFormPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}
	f, ok := h.pointForm(w, r)
	if !ok {
		return
	}
	if err := applyPointPatch(f, patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, pointFormView(f), 0)
}

func applyPointPatch(f *workflow.PointForm, p PointFormPatch) error {
	if p.Mode != nil {
		if err := f.SetMode(workflow.Mode(*p.Mode)); err != nil {
			return err
		}
	}
	if p.ClearSelection {
		if err := f.ClearSelection(); err != nil {
			return err
		}
	}
	if p.Query != nil {
		if err := f.SetQuery(*p.Query); err != nil {
			return err
		}
	}
	if p.Suggestion != nil {
		sugg := f.Suggestions()
		if *p.Suggestion >= len(sugg) {
			return &workflow.ValidationError{Message: "No such suggestion"}
		}
		if err := f.SelectSuggestion(sugg[*p.Suggestion]); err != nil {
			return err
		}
	}
	if p.Latitude != nil || p.Longitude != nil {
		s := f.State()
		lat, lng := s.Latitude, s.Longitude
		if p.Latitude != nil {
			lat = *p.Latitude
		}
		if p.Longitude != nil {
			lng = *p.Longitude
		}
		if err := f.SetCoordinates(lat, lng); err != nil {
			return err
		}
	}
	if p.Category != nil {
		c, _ := models.ParseCategory(*p.Category)
		if err := f.SetCategory(c); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := f.SetDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.DetachPhoto {
		return f.Detach()
	}
	return nil
}

// SubmitPointForm validates and submits the point form. A rejected
// submission keeps the form open with its inline error.
func (h *Handler) SubmitPointForm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.pointForm(w, r)
	if !ok {
		return
	}
	if err := f.Submit(r.Context()); err != nil {
		respondFailure(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Point form submitted")
	respondData(w, pointFormView(f), 0)
}

// ClosePointForm discards the point form.
func (h *Handler) ClosePointForm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.pointForm(w, r)
	if !ok {
		return
	}
	f.Close()
	respondData(w, pointFormView(f), 0)
}

// RouteFormState returns the route form and the selectable endpoints.
func (h *Handler) RouteFormState(w http.ResponseWriter, r *http.Request) {
	f, ok := h.routeForm(w, r)
	if !ok {
		return
	}
	respondData(w, routeFormView(f), 0)
}

// OpenRouteForm opens the route form for a new route, or for route_id.
func (h *Handler) OpenRouteForm(w http.ResponseWriter, r *http.Request) {
	var req OpenRouteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	f, ok := h.routeForm(w, r)
	if !ok {
		return
	}
	var err error
	if req.RouteID != 0 {
		err = h.editor.EditRoute(req.RouteID)
	} else {
		err = h.editor.AddRoute()
	}
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, routeFormView(f), 0)
}

// UpdateRouteForm applies a patch to the open route form.
func (h *Handler) UpdateRouteForm(w http.ResponseWriter, r *http.Request) {
	var patch RouteFormPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}
	f, ok := h.routeForm(w, r)
	if !ok {
		return
	}
	if err := applyRoutePatch(f, patch); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, routeFormView(f), 0)
}

func applyRoutePatch(f *workflow.RouteForm, p RouteFormPatch) error {
	if p.Start != nil {
		if err := f.SetStart(*p.Start); err != nil {
			return err
		}
	}
	if p.End != nil {
		if err := f.SetEnd(*p.End); err != nil {
			return err
		}
	}
	if p.Color != nil {
		if err := f.SetColor(*p.Color); err != nil {
			return err
		}
	}
	if p.Swap {
		return f.Swap()
	}
	return nil
}

// SubmitRouteForm validates and submits the route form.
func (h *Handler) SubmitRouteForm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.routeForm(w, r)
	if !ok {
		return
	}
	if err := f.Submit(r.Context()); err != nil {
		respondFailure(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Route form submitted")
	respondData(w, routeFormView(f), 0)
}

// CloseRouteForm discards the route form.
func (h *Handler) CloseRouteForm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.routeForm(w, r)
	if !ok {
		return
	}
	f.Close()
	respondData(w, routeFormView(f), 0)
}

// DeletePoint deletes a point, then refreshes the list page when one is
// served.
func (h *Handler) DeletePoint(w http.ResponseWriter, r *http.Request) {
	if !h.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r, "pointID")
	if !ok {
		return
	}
	if err := h.editor.DeletePoint(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	if h.points != nil {
		if err := h.points.Load(r.Context()); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Int64("point_id", id).Msg("Points list refresh after delete failed")
		}
	}
	h.Map(w, r)
}

// DeleteRoute deletes a route.
func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	if !h.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}
	if err := h.editor.DeleteRoute(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.Map(w, r)
}

// InviteParticipant invites a user by name.
func (h *Handler) InviteParticipant(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireEditor(w, r) {
		return
	}
	if err := h.editor.InviteParticipant(r.Context(), req.Username); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.Map(w, r)
}

// RemoveParticipant removes a member from the map.
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if !h.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.editor.RemoveParticipant(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.Map(w, r)
}

// ParticipantColor changes a participant's marker color.
func (h *Handler) ParticipantColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireEditor(w, r) {
		return
	}
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.editor.ChangeParticipantColor(r.Context(), id, req.Color); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.Map(w, r)
}

// LeaveMap removes the viewer from the map. The view closes afterwards.
func (h *Handler) LeaveMap(w http.ResponseWriter, r *http.Request) {
	if !h.requireEditor(w, r) {
		return
	}
	if err := h.editor.LeaveMap(r.Context()); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, map[string]bool{"left": true}, 0)
}
