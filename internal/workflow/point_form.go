// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package workflow

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/search"
	"github.com/tomtom215/odyssey/internal/store"
)

const pointFormName = "point"

// Mode is how a point form collects its coordinates.
type Mode string

// Input modes.
const (
	ModeCoordinate Mode = "coordinate"
	ModeCity       Mode = "city"
)

// PointWriter is the remote side of the point form. *gateway.Client
// implements it.
type PointWriter interface {
	CreatePoint(ctx context.Context, mapID int64, in gateway.PointInput) (*models.Point, error)
	UpdatePoint(ctx context.Context, mapID, pointID int64, in gateway.PointInput) (*models.Point, error)
	PhotoURL(photoPath string) string
}

// PointDeps wires a PointForm.
type PointDeps struct {
	MapID    int64
	Writer   PointWriter
	Searcher search.Searcher
	Reloader Reloader
	Search   config.SearchConfig

	// SearchOptions are passed to every search controller the form creates.
	SearchOptions []search.Option
}

// PointState is the observable form state.
type PointState struct {
	Phase Phase
	Mode  Mode
	// EditingID is the point being edited, 0 when creating.
	EditingID   int64
	Latitude    string
	Longitude   string
	Category    models.Category
	Description string
	Query       string
	Selected    *models.CityResult
	// PreviewURL is the existing photo URL when editing, or the pending
	// file name after Attach.
	PreviewURL string
	HasPhoto   bool
	Error      string
}

// Locked reports whether manual coordinate entry is disabled.
func (s PointState) Locked() bool {
	return s.Selected != nil
}

// PointForm collects a point's attributes and submits them as one
// multipart payload.
type PointForm struct {
	deps PointDeps

	mu     sync.Mutex
	search *search.Controller
	photo  *gateway.Photo
	state  *store.Store[PointState]
}

// NewPointForm returns a closed form. Open it with OpenCreate,
// OpenCreateBlank or OpenEdit.
func NewPointForm(deps PointDeps) *PointForm {
	return &PointForm{
		deps:  deps,
		state: store.New(PointState{Phase: PhaseClosed}),
	}
}

// State returns the current state.
func (f *PointForm) State() PointState {
	return f.state.Get()
}

// Subscribe registers fn for state changes.
func (f *PointForm) Subscribe(fn func(PointState)) (unsubscribe func()) {
	return f.state.Subscribe(fn)
}

// Suggestions returns the city suggestions for the current query.
func (f *PointForm) Suggestions() []models.CityResult {
	f.mu.Lock()
	c := f.search
	f.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.State().Suggestions
}

// SearchState exposes the debounced search state for city mode.
func (f *PointForm) SearchState() search.State {
	f.mu.Lock()
	c := f.search
	f.mu.Unlock()
	if c == nil {
		return search.State{}
	}
	return c.State()
}

func (f *PointForm) openLocked(s PointState) {
	if f.search != nil {
		f.search.Close()
	}
	f.search = search.New(f.deps.Searcher, f.deps.Search, f.deps.SearchOptions...)
	f.photo = nil
	_ = f.state.Set(s)
}

// OpenCreate opens the form in coordinate mode prefilled from a canvas
// click, rounded to 6 decimals.
func (f *PointForm) OpenCreate(lat, lng float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openLocked(PointState{
		Phase:     PhaseIdle,
		Mode:      ModeCoordinate,
		Latitude:  strconv.FormatFloat(lat, 'f', 6, 64),
		Longitude: strconv.FormatFloat(lng, 'f', 6, 64),
	})
}

// OpenCreateBlank opens an empty form in city mode.
func (f *PointForm) OpenCreateBlank() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openLocked(PointState{Phase: PhaseIdle, Mode: ModeCity})
}

// OpenEdit opens the form for p in coordinate mode, showing the existing
// photo as a removable preview.
func (f *PointForm) OpenEdit(p models.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := PointState{
		Phase:     PhaseIdle,
		Mode:      ModeCoordinate,
		EditingID: p.ID,
		Latitude:  strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(p.Longitude, 'f', -1, 64),
		Category:  p.CategoryValue(),
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.City != nil {
		s.Query = *p.City
	}
	if p.PhotoPath != nil && *p.PhotoPath != "" {
		s.PreviewURL = f.deps.Writer.PhotoURL(*p.PhotoPath)
	}
	f.openLocked(s)
}

// edit applies fn to an open, idle or failed form.
func (f *PointForm) edit(fn func(*PointState) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editLocked(fn)
}

func (f *PointForm) editLocked(fn func(*PointState) error) error {
	s := f.state.Get()
	switch s.Phase {
	case PhaseClosed:
		return ErrClosed
	case PhaseValidating, PhaseSubmitting:
		return ErrBusy
	}
	if err := fn(&s); err != nil {
		return err
	}
	return f.state.Set(s)
}

// SetMode switches between coordinate and city input. Leaving city mode
// drops the pending lookup and the selection; the selected coordinates
// stay in the manual fields.
func (f *PointForm) SetMode(m Mode) error {
	if m != ModeCoordinate && m != ModeCity {
		return invalid("Unknown input mode")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.editLocked(func(s *PointState) error {
		s.Mode = m
		if m == ModeCoordinate {
			s.Selected = nil
		}
		return nil
	})
	if err != nil {
		return err
	}
	if m == ModeCoordinate {
		f.search.Clear()
	}
	return nil
}

// SetCoordinates sets the manual latitude and longitude text.
func (f *PointForm) SetCoordinates(lat, lng string) error {
	return f.edit(func(s *PointState) error {
		if s.Locked() {
			return ErrLocked
		}
		s.Latitude, s.Longitude = lat, lng
		return nil
	})
}

// SetCategory sets the category. The empty category clears it.
func (f *PointForm) SetCategory(c models.Category) error {
	return f.edit(func(s *PointState) error {
		if _, ok := models.ParseCategory(string(c)); !ok {
			return invalid("Unknown category")
		}
		s.Category = c
		return nil
	})
}

// SetDescription sets the free-text description.
func (f *PointForm) SetDescription(d string) error {
	return f.edit(func(s *PointState) error {
		s.Description = d
		return nil
	})
}

// SetQuery edits the city text. Any earlier selection is dropped, so the
// form unlocks until a new suggestion is picked. Lookups only run in city
// mode, debounced, keeping the latest query's results.
func (f *PointForm) SetQuery(q string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lookup bool
	err := f.editLocked(func(s *PointState) error {
		s.Query = q
		s.Selected = nil
		lookup = s.Mode == ModeCity
		return nil
	})
	if err != nil {
		return err
	}
	if lookup {
		f.search.SetQuery(q)
	}
	return nil
}

// SelectSuggestion fixes the coordinates from r and locks manual entry.
func (f *PointForm) SelectSuggestion(r models.CityResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.editLocked(func(s *PointState) error {
		sel := r
		s.Selected = &sel
		s.Query = r.DisplayName
		s.Latitude = strconv.FormatFloat(r.Latitude, 'f', -1, 64)
		s.Longitude = strconv.FormatFloat(r.Longitude, 'f', -1, 64)
		return nil
	})
	if err != nil {
		return err
	}
	f.search.Clear()
	return nil
}

// ClearSelection unlocks manual coordinate entry.
func (f *PointForm) ClearSelection() error {
	return f.edit(func(s *PointState) error {
		s.Selected = nil
		return nil
	})
}

// Attach stages a photo. A preview, existing or pending, must be detached
// first.
func (f *PointForm) Attach(photo gateway.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editLocked(func(s *PointState) error {
		if s.PreviewURL != "" {
			return ErrDetachFirst
		}
		p := photo
		f.photo = &p
		s.PreviewURL = photo.Filename
		if s.PreviewURL == "" {
			s.PreviewURL = "photo"
		}
		s.HasPhoto = true
		return nil
	})
}

// Detach removes the preview and any pending file.
func (f *PointForm) Detach() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editLocked(func(s *PointState) error {
		f.photo = nil
		s.PreviewURL = ""
		s.HasPhoto = false
		return nil
	})
}

// coordinates resolves the submitted position. City mode only accepts a
// selected suggestion.
func coordinates(s PointState) (float64, float64, error) {
	if s.Mode == ModeCity {
		if s.Selected == nil {
			return 0, 0, invalid("Select a city from the suggestions")
		}
		return checkRange(s.Selected.Latitude, s.Selected.Longitude)
	}

	lat, errLat := parseCoordinate(s.Latitude)
	lng, errLng := parseCoordinate(s.Longitude)
	if errLat != nil || errLng != nil {
		return 0, 0, invalid("Invalid coordinates")
	}
	return checkRange(lat, lng)
}

func parseCoordinate(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func checkRange(lat, lng float64) (float64, float64, error) {
	if lat < -90 || lat > 90 {
		return 0, 0, invalid("Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return 0, 0, invalid("Longitude must be between -180 and 180")
	}
	return lat, lng, nil
}

// Submit validates the form and sends it. No remote call is made until
// validation passes.
func (f *PointForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	s := f.state.Get()
	switch s.Phase {
	case PhaseClosed:
		f.mu.Unlock()
		return ErrClosed
	case PhaseValidating, PhaseSubmitting:
		f.mu.Unlock()
		return ErrBusy
	}

	s.Phase, s.Error = PhaseValidating, ""
	_ = f.state.Set(s)

	lat, lng, err := coordinates(s)
	if err != nil {
		s.Phase, s.Error = PhaseError, err.Error()
		_ = f.state.Set(s)
		f.mu.Unlock()
		recordSubmission(pointFormName, "invalid")
		return err
	}

	in := gateway.PointInput{
		Latitude:    lat,
		Longitude:   lng,
		Category:    s.Category,
		Description: s.Description,
		Photo:       f.photo,
	}
	s.Phase = PhaseSubmitting
	_ = f.state.Set(s)
	editing := s.EditingID
	f.mu.Unlock()

	fallback := "Failed to add point"
	if editing != 0 {
		fallback = "Failed to update point"
		_, err = f.deps.Writer.UpdatePoint(ctx, f.deps.MapID, editing, in)
	} else {
		_, err = f.deps.Writer.CreatePoint(ctx, f.deps.MapID, in)
	}

	if err != nil {
		recordSubmission(pointFormName, "failed")
		f.mu.Lock()
		_ = f.state.Update(func(cur PointState) PointState {
			if cur.Phase == PhaseSubmitting {
				cur.Phase = PhaseError
				cur.Error = gateway.DetailOr(err, fallback)
			}
			return cur
		})
		f.mu.Unlock()
		return err
	}

	recordSubmission(pointFormName, "success")
	reloadAfter(ctx, f.deps.Reloader, pointFormName)
	f.Close()
	return nil
}

// Close dismisses the form, canceling any pending city search.
func (f *PointForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.search != nil {
		f.search.Close()
		f.search = nil
	}
	f.photo = nil
	_ = f.state.Set(PointState{Phase: PhaseClosed})
}
