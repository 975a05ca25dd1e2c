// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer selects the child supervisor a service runs under.
type Layer int

const (
	// LayerMessaging holds the push hub and the periodic refresher.
	LayerMessaging Layer = iota
	// LayerAPI holds the preview HTTP listener.
	LayerAPI
)

func (l Layer) String() string {
	switch l {
	case LayerMessaging:
		return "messaging-layer"
	case LayerAPI:
		return "api-layer"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// ErrUnknownLayer is returned for a Layer outside the tree.
var ErrUnknownLayer = errors.New("supervisor: unknown layer")

// TreeConfig tunes restart behavior. Zero fields take the defaults.
type TreeConfig struct {
	FailureThreshold float64       // failures tolerated before backoff (5)
	FailureDecay     float64       // seconds for the failure count to decay (30)
	FailureBackoff   time.Duration // pause once the threshold is crossed (15s)
	ShutdownTimeout  time.Duration // per-service stop deadline (10s)
}

// DefaultTreeConfig mirrors suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) validate() error {
	if c.FailureThreshold < 0 || c.FailureDecay < 0 || c.FailureBackoff < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("supervisor: negative tree config %+v", c)
	}
	return nil
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree groups the preview server's goroutines into two layers
// so a hub crash never takes the HTTP listener down with it.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree builds the tree. Lifecycle events are written to
// logger through sutureslog.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	hooks := &sutureslog.Handler{Logger: logger}
	root := suture.New("odyssey", config.spec(hooks.MustHook()))

	layers := make(map[Layer]*suture.Supervisor, 2)
	for _, l := range []Layer{LayerMessaging, LayerAPI} {
		// nil hook: children report through the root.
		child := suture.New(l.String(), config.spec(nil))
		root.Add(child)
		layers[l] = child
	}

	return &SupervisorTree{root: root, layers: layers, config: config}, nil
}

// Add starts svc under layer once the tree is serving.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}
	return sup.Add(svc), nil
}

// Remove stops a service previously returned by Add.
func (t *SupervisorTree) Remove(layer Layer, token suture.ServiceToken) error {
	sup, ok := t.layers[layer]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}
	return sup.Remove(token)
}

// Serve blocks until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground is Serve on its own goroutine. The channel yields the
// result once.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport names services still running after the
// shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
