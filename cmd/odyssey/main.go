// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/odyssey/internal/api"
	"github.com/tomtom215/odyssey/internal/auth"
	"github.com/tomtom215/odyssey/internal/canvas"
	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/gateway"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/middleware"
	"github.com/tomtom215/odyssey/internal/orchestrator"
	"github.com/tomtom215/odyssey/internal/supervisor"
	"github.com/tomtom215/odyssey/internal/supervisor/services"
	ws "github.com/tomtom215/odyssey/internal/websocket"
)

func main() {
	mapID := flag.Int64("map", 0, "id of the map to open (required)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment is read")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Str("file", *envFile).Msg("Failed to read env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if *mapID <= 0 {
		logging.Fatal().Msg("A map id is required (-map)")
	}

	logging.Info().
		Str("api", cfg.API.BaseURL).
		Int64("map_id", *mapID).
		Str("backend", cfg.Canvas.Backend).
		Bool("preview_server", cfg.Server.Enabled).
		Msg("Starting Odyssey")

	session := auth.NewSession(cfg.Session.Token)
	if expired, err := auth.Expired(session.Token(), time.Now()); err == nil && expired {
		logging.Warn().Msg("Session token has expired, backend calls will be rejected")
	}
	client := gateway.New(cfg, session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	me, err := client.Me(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to resolve the signed-in user")
	}
	logging.Info().Int64("user_id", me.ID).Str("username", me.Username).Msg("Signed in")

	detail := orchestrator.NewMapDetail(orchestrator.Deps{
		Gateway: client,
		// Abandoning the view ends the process; there is no map list to
		// return to.
		Navigator: orchestrator.NavigatorFunc(func() {
			logging.Warn().Msg("Map view abandoned, shutting down")
			cancel()
		}),
		ViewerID: me.ID,
		Canvas:   canvas.OptionsFromConfig(cfg.Canvas),
		Search:   cfg.Search,
	})
	defer detail.Close()

	if err := detail.SwitchBackend(canvas.Kind(cfg.Canvas.Backend)); err != nil {
		logging.Fatal().Err(err).Msg("Failed to mount canvas")
	}

	wsHub := ws.NewHub()
	stopFollow := wsHub.Follow(detail, defaultColor(cfg.Canvas))
	defer stopFollow()

	if err := detail.Activate(ctx, *mapID); err != nil {
		logging.Fatal().Err(err).Int64("map_id", *mapID).Msg("Failed to open map")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	addService := func(layer supervisor.Layer, svc suture.Service) {
		if _, err := tree.Add(layer, svc); err != nil {
			logging.Fatal().Err(err).Str("service", fmt.Sprint(svc)).Msg("Failed to add service")
		}
	}
	addService(supervisor.LayerMessaging, services.NewWebSocketHubService(wsHub))
	if cfg.Server.RefreshInterval > 0 {
		addService(supervisor.LayerMessaging, services.NewRefreshService(detail, cfg.Server.RefreshInterval))
	}
	if cfg.Server.Enabled {
		list := orchestrator.NewPointsPage(client, *mapID, cfg.List.PageSize)
		server := newPreviewServer(cfg, previewDeps{
			View:    detail,
			Editor:  detail,
			Points:  list,
			Hub:     wsHub,
			Breaker: client.BreakerState,
		})
		addService(supervisor.LayerAPI, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := tree.ServeBackground(ctx)
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Odyssey stopped")
}

// previewDeps is what the preview server exposes. Editor and Points are
// optional; their routes answer 503 when unset.
type previewDeps struct {
	View    api.MapView
	Editor  api.Editor
	Points  api.PointsList
	Hub     *ws.Hub
	Breaker func() string
}

// newPreviewServer assembles the preview HTTP server around the map view.
func newPreviewServer(cfg *config.Config, deps previewDeps) *http.Server {
	perf := middleware.NewPerformanceMonitor(1000, time.Second)
	opts := []api.HandlerOption{
		api.WithClientCounter(deps.Hub),
		api.WithPerformanceMonitor(perf),
		api.WithBreakerState(deps.Breaker),
	}
	if deps.Editor != nil {
		opts = append(opts, api.WithEditor(deps.Editor))
	}
	if deps.Points != nil {
		opts = append(opts, api.WithPointsList(deps.Points))
	}
	handler := api.NewHandler(deps.View, opts...)
	router := api.NewRouter(handler, api.RouterConfig{
		Middleware: api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)),
		Perf:       perf,
		WebSocket:  ws.Handler(deps.Hub, ws.AllowOrigins(cfg.Server.CORSOrigins)),
	})

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func defaultColor(c config.CanvasConfig) string {
	if c.DefaultColor != "" {
		return c.DefaultColor
	}
	return canvas.DefaultColor
}
