// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/odyssey/internal/canvas"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/workflow"
)

func activate(t *testing.T, d *MapDetail) {
	t.Helper()
	if err := d.Activate(context.Background(), 1); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
}

func TestMapDetail_ActivateCommitsSnapshot(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()

	var phases []Phase
	d.Subscribe(func(s State) { phases = append(phases, s.Phase) })
	activate(t, d)

	s := d.State()
	if s.Phase != PhaseReady || s.Snapshot == nil {
		t.Fatalf("state = %v, snapshot %v", s.Phase, s.Snapshot)
	}
	snap := s.Snapshot
	if snap.Map.Name != "Europe" || len(snap.Points) != 3 || len(snap.Participants) != 2 || len(snap.Routes) != 1 || snap.Stats == nil {
		t.Errorf("snapshot = %+v", snap)
	}
	for _, op := range []string{"map", "points", "participants", "routes", "stats"} {
		if g.count(op) != 1 {
			t.Errorf("%s calls = %d, want 1", op, g.count(op))
		}
	}
	if len(phases) < 2 || phases[0] != PhaseLoading || phases[len(phases)-1] != PhaseReady {
		t.Errorf("phases = %v, want loading then ready", phases)
	}
	if home.count() != 0 {
		t.Error("navigated home after a successful load")
	}
}

func TestMapDetail_AnyFailedReadAbandons(t *testing.T) {
	for _, op := range []string{"map", "points", "participants", "routes", "stats"} {
		t.Run(op, func(t *testing.T) {
			g, home := newFakeGateway(), &homeCounter{}
			g.setFail(op, errUnavailable)
			d := newDetail(g, home, 10)
			defer d.Close()

			var sawSnapshot bool
			d.Subscribe(func(s State) { sawSnapshot = sawSnapshot || s.Snapshot != nil })

			err := d.Activate(context.Background(), 1)
			if !errors.Is(err, errUnavailable) {
				t.Fatalf("Activate() error = %v, want errUnavailable", err)
			}
			s := d.State()
			if s.Phase != PhaseAbandoned || s.Snapshot != nil || !errors.Is(s.Err, errUnavailable) {
				t.Errorf("state = %+v", s)
			}
			if sawSnapshot {
				t.Error("a partial snapshot was published")
			}
			if home.count() != 1 {
				t.Errorf("Home() calls = %d, want 1", home.count())
			}
			if err := d.Reload(context.Background()); !errors.Is(err, ErrNotActive) {
				t.Errorf("Reload() after abandon = %v, want ErrNotActive", err)
			}
		})
	}
}

func TestMapDetail_FailedReloadAbandonsAndReleasesCanvas(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()

	c := canvas.NewTileMap(canvas.Options{})
	d.MountCanvas(c)
	activate(t, d)

	g.setFail("participants", errUnavailable)
	if err := d.Reload(context.Background()); err == nil {
		t.Fatal("Reload() error = nil")
	}
	if d.State().Phase != PhaseAbandoned || home.count() != 1 {
		t.Errorf("phase = %v, home = %d", d.State().Phase, home.count())
	}
	if c.State() != canvas.StateDisposed {
		t.Errorf("canvas state = %v, want disposed", c.State())
	}
}

func TestMapDetail_StaleReloadDiscarded(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	activate(t, d)

	started, release := make(chan struct{}), make(chan struct{})
	g.pointsHook = func(call int) {
		if call == 2 {
			close(started)
			<-release
		}
	}

	slow := make(chan error, 1)
	go func() { slow <- d.Reload(context.Background()) }()
	<-started

	g.mu.Lock()
	g.points = append(g.points, models.Point{ID: 4, MapID: 1, UserID: 20, Latitude: 1, Longitude: 1})
	g.mu.Unlock()
	if err := d.Reload(context.Background()); err != nil {
		t.Fatalf("fast Reload() error = %v", err)
	}
	fresh := d.State().Snapshot

	g.mu.Lock()
	g.points = g.points[:3]
	g.mu.Unlock()
	close(release)
	if err := <-slow; err != nil {
		t.Fatalf("slow Reload() error = %v", err)
	}

	s := d.State()
	if s.Snapshot != fresh || len(s.Snapshot.Points) != 4 {
		t.Errorf("stale load overwrote the newer snapshot: %d points, generation %d", len(s.Snapshot.Points), s.Snapshot.Generation)
	}
}

func TestMapDetail_MutationsReload(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	activate(t, d)

	if err := d.DeletePoint(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if g.count("map") != 2 || len(d.State().Snapshot.Points) != 2 {
		t.Errorf("after delete: map loads = %d, points = %d", g.count("map"), len(d.State().Snapshot.Points))
	}

	if err := d.DeleteRoute(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if err := d.InviteParticipant(context.Background(), "carol"); err != nil {
		t.Fatal(err)
	}
	if err := d.ChangeParticipantColor(context.Background(), 20, "#00FF00"); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveParticipant(context.Background(), 20); err != nil {
		t.Fatal(err)
	}
	if g.count("map") != 6 {
		t.Errorf("map loads = %d, want 6 (one per mutation)", g.count("map"))
	}
}

func TestMapDetail_FailedMutationKeepsState(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	activate(t, d)
	before := d.State().Snapshot

	g.setFail("delete_point", errUnavailable)
	if err := d.DeletePoint(context.Background(), 1); !errors.Is(err, errUnavailable) {
		t.Fatalf("DeletePoint() = %v, want errUnavailable", err)
	}
	if d.State().Snapshot != before || d.State().Phase != PhaseReady || g.count("map") != 1 {
		t.Error("failed mutation changed the view or reloaded")
	}
}

func TestMapDetail_PermissionGating(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	member := newDetail(g, home, 20)
	defer member.Close()
	activate(t, member)

	if err := member.InviteParticipant(context.Background(), "x"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("member invite = %v, want ErrNotAllowed", err)
	}
	if err := member.ChangeParticipantColor(context.Background(), 10, "#000000"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("member recolor owner = %v, want ErrNotAllowed", err)
	}
	if g.count("invite")+g.count("color") != 0 {
		t.Error("gated operation reached the backend")
	}

	owner := newDetail(g, home, 10)
	defer owner.Close()
	activate(t, owner)
	if err := owner.RemoveParticipant(context.Background(), 10); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("owner removing self = %v, want ErrNotAllowed", err)
	}
	if err := owner.LeaveMap(context.Background()); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("owner leave = %v, want ErrNotAllowed", err)
	}
}

func TestMapDetail_LeaveMapGoesHome(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 20)
	activate(t, d)

	if err := d.LeaveMap(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g.count("leave") != 1 || home.count() != 1 || d.State().Phase != PhaseIdle {
		t.Errorf("leave = %d, home = %d, phase = %v", g.count("leave"), home.count(), d.State().Phase)
	}
}

func TestMapDetail_CategoryFilterRerenders(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	c := canvas.NewTileMap(canvas.Options{})
	d.MountCanvas(c)
	activate(t, d)

	if n := len(c.Scene().Markers); n != 3 {
		t.Fatalf("markers = %d, want 3", n)
	}
	cat := models.CategoryMonument
	if err := d.SetCategoryFilter(&cat); err != nil {
		t.Fatal(err)
	}
	view := d.State().View
	if len(view.Points) != 1 || len(view.Routes) != 0 {
		t.Errorf("filtered view = %d points %d routes", len(view.Points), len(view.Routes))
	}
	if n := len(c.Scene().Markers); n != 1 {
		t.Errorf("filtered markers = %d, want 1", n)
	}

	// The filter survives a reload.
	if err := d.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(d.State().View.Points) != 1 {
		t.Error("reload dropped the category filter")
	}

	bogus := models.Category("Spaceport")
	if err := d.SetCategoryFilter(&bogus); err == nil {
		t.Error("SetCategoryFilter(Spaceport) = nil, want error")
	}
	if err := d.SetCategoryFilter(nil); err != nil || len(d.State().View.Points) != 3 {
		t.Errorf("clearing filter: err %v, %d points", err, len(d.State().View.Points))
	}
}

func TestMapDetail_CanvasClicks(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	d.MountCanvas(canvas.NewTileMap(canvas.Options{}))
	activate(t, d)

	outcome, err := d.Click(canvas.LatLng{Lat: 0, Lng: -150})
	if err != nil || outcome != canvas.OutcomeCanvas {
		t.Fatalf("empty click = %v, %v", outcome, err)
	}
	form := d.PointForm().State()
	if form.Phase != workflow.PhaseIdle || form.Latitude != "0.000000" || form.Longitude != "-150.000000" {
		t.Errorf("point form = %+v", form)
	}

	// Clicking beyond the clickable band does nothing.
	d.PointForm().Close()
	if outcome, _ := d.Click(canvas.LatLng{Lat: 87, Lng: 0}); outcome != canvas.OutcomeIgnored {
		t.Errorf("polar click = %v, want ignored", outcome)
	}
	if d.PointForm().State().Phase != workflow.PhaseClosed {
		t.Error("polar click opened the form")
	}

	if outcome, _ := d.Click(canvas.LatLng{Lat: 48.8566, Lng: 2.3522}); outcome != canvas.OutcomeEntity {
		t.Fatalf("marker click = %v, want entity", outcome)
	}
	sel, ok := d.Selected()
	if !ok || sel.Point.ID != 1 || !sel.CanEdit {
		t.Errorf("selection = %+v, %v", sel, ok)
	}
	if err := d.EditSelected(); err != nil {
		t.Errorf("EditSelected() = %v", err)
	}

	d.Click(canvas.LatLng{Lat: 41.9028, Lng: 12.4964})
	sel, _ = d.Selected()
	if sel.Point.ID != 2 || sel.CanEdit {
		t.Errorf("foreign selection = %+v", sel)
	}
	if err := d.EditSelected(); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("EditSelected() on foreign point = %v, want ErrNotAllowed", err)
	}
}

func TestMapDetail_FilterDropsHiddenSelection(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	d.MountCanvas(canvas.NewTileMap(canvas.Options{}))
	activate(t, d)

	// Rome has no category, so a Monument filter hides it.
	if outcome, _ := d.Click(canvas.LatLng{Lat: 41.9028, Lng: 12.4964}); outcome != canvas.OutcomeEntity {
		t.Fatalf("marker click = %v, want entity", outcome)
	}
	cat := models.CategoryMonument
	if err := d.SetCategoryFilter(&cat); err != nil {
		t.Fatal(err)
	}
	if sel, ok := d.Selected(); ok {
		t.Errorf("selection %d survived a filter that hides it", sel.Point.ID)
	}

	// A visible selection survives both the filter and a reload.
	d.Click(canvas.LatLng{Lat: 48.8566, Lng: 2.3522})
	if err := d.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sel, ok := d.Selected(); !ok || sel.Point.ID != 1 {
		t.Errorf("selection = %+v, %v; want Paris", sel, ok)
	}
}

func TestMapDetail_WorkflowSubmissionReloads(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	d.MountCanvas(canvas.NewTileMap(canvas.Options{}))
	activate(t, d)

	d.Click(canvas.LatLng{Lat: 10, Lng: 10})
	if err := d.PointForm().Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g.count("create_point") != 1 || g.count("points") != 2 {
		t.Errorf("create = %d, point loads = %d", g.count("create_point"), g.count("points"))
	}
	if n := len(d.State().Snapshot.Points); n != 4 {
		t.Errorf("points after reload = %d, want 4", n)
	}

	rf := d.RouteForm()
	rf.OpenCreate()
	_ = rf.SetStart(2)
	_ = rf.SetEnd(3)
	if err := rf.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g.count("points") != 3 {
		t.Errorf("point loads after route = %d, want 3", g.count("points"))
	}
}

func TestMapDetail_OpenForms(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 20)
	defer d.Close()

	if err := d.AddPoint(); !errors.Is(err, ErrNotActive) {
		t.Errorf("AddPoint before Activate = %v, want ErrNotActive", err)
	}
	activate(t, d)

	if err := d.AddPoint(); err != nil {
		t.Fatal(err)
	}
	if s := d.PointForm().State(); s.Phase != workflow.PhaseIdle || s.EditingID != 0 || s.Mode != workflow.ModeCity {
		t.Errorf("point form = %+v", s)
	}

	if err := d.AddRoute(); err != nil {
		t.Fatal(err)
	}
	if s := d.RouteForm().State(); s.Phase != workflow.PhaseIdle || s.EditingID != 0 {
		t.Errorf("route form = %+v", s)
	}
	if err := d.EditRoute(5); err != nil {
		t.Fatal(err)
	}
	if s := d.RouteForm().State(); s.EditingID != 5 || s.Start != 1 || s.End != 2 {
		t.Errorf("route form editing = %+v", s)
	}
	if err := d.EditRoute(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("EditRoute(99) = %v, want ErrNotFound", err)
	}
}

func TestMapDetail_PersonalMapHasNoRoutes(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	g.m.Type = models.MapTypePersonal
	d := newDetail(g, home, 10)
	defer d.Close()
	activate(t, d)

	if err := d.AddRoute(); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("AddRoute on a personal map = %v, want ErrNotAllowed", err)
	}
	if err := d.EditRoute(5); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("EditRoute on a personal map = %v, want ErrNotAllowed", err)
	}
	if s := d.RouteForm().State(); s.Phase != workflow.PhaseClosed {
		t.Errorf("route form phase = %v, want closed", s.Phase)
	}
}

func TestMapDetail_SwitchBackendIsLossless(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()

	if err := d.SwitchBackend(canvas.Kind2D); err != nil {
		t.Fatal(err)
	}
	activate(t, d)
	flat := d.Canvas()
	flatIDs := markerIDs(flat.Scene())

	if err := d.SwitchBackend(canvas.Kind3D); err != nil {
		t.Fatal(err)
	}
	if flat.State() != canvas.StateDisposed {
		t.Error("previous backend was not disposed")
	}
	globe := d.Canvas()
	if globe.Kind() != canvas.Kind3D || d.State().Backend != canvas.Kind3D {
		t.Fatalf("backend = %s", globe.Kind())
	}
	if got := markerIDs(globe.Scene()); len(got) != len(flatIDs) {
		t.Errorf("3d markers = %v, 2d markers = %v", got, flatIDs)
	}
	if err := d.Focus(48.8566, 2.3522, 15); err != nil {
		t.Errorf("Focus() = %v", err)
	}

	d.UnmountCanvas()
	if globe.State() != canvas.StateDisposed || d.Canvas() != nil {
		t.Error("UnmountCanvas did not dispose the globe")
	}
	if err := d.Focus(0, 0, 3); !errors.Is(err, ErrNoCanvas) {
		t.Errorf("Focus() without canvas = %v, want ErrNoCanvas", err)
	}
	if err := d.SwitchBackend("vr"); !errors.Is(err, canvas.ErrUnknownKind) {
		t.Errorf("SwitchBackend(vr) = %v", err)
	}
}

func markerIDs(s canvas.Scene) []int64 {
	out := make([]int64, len(s.Markers))
	for i, m := range s.Markers {
		out[i] = m.PointID
	}
	return out
}

func TestMapDetail_LeaderboardAndCapabilities(t *testing.T) {
	g, home := newFakeGateway(), &homeCounter{}
	d := newDetail(g, home, 10)
	defer d.Close()
	activate(t, d)

	board := d.Leaderboard()
	if len(board) != 2 {
		t.Fatalf("len(Leaderboard) = %d, want 2", len(board))
	}
	if board[0].Username != "member" || board[0].Points != 2 || board[0].Rank != 1 || board[0].Color != canvas.DefaultColor {
		t.Errorf("first = %+v", board[0])
	}
	if board[1].Username != "owner" || board[1].Color != "#EF4444" {
		t.Errorf("second = %+v", board[1])
	}

	caps := d.Capabilities()
	if !caps.Owner || !caps.CanInvite || caps.CanLeave || !caps.RoutesEnabled || !caps.Ranked {
		t.Errorf("owner capabilities = %+v", caps)
	}

	g.mu.Lock()
	g.m.Type = models.MapTypePersonal
	g.mu.Unlock()
	if err := d.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Leaderboard() != nil {
		t.Error("personal map should have no leaderboard")
	}
	caps = d.Capabilities()
	if caps.CanInvite || caps.RoutesEnabled || caps.Leaderboard {
		t.Errorf("personal capabilities = %+v", caps)
	}
	if err := d.InviteParticipant(context.Background(), "x"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("invite on personal map = %v", err)
	}
}

func TestMapDetail_ReloadWithoutActivate(t *testing.T) {
	d := newDetail(newFakeGateway(), &homeCounter{}, 10)
	if err := d.Reload(context.Background()); !errors.Is(err, ErrNotActive) {
		t.Errorf("Reload() = %v, want ErrNotActive", err)
	}
	if err := d.DeletePoint(context.Background(), 1); !errors.Is(err, ErrNotActive) {
		t.Errorf("DeletePoint() = %v, want ErrNotActive", err)
	}
}
