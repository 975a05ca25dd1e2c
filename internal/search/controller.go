// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package search turns free-text city input into debounced remote lookups.
//
// Every SetQuery bumps a generation counter. A lookup fires only after the
// quiet window elapses without a newer query, and its response is applied
// only if its generation is still the latest. Superseded in-flight lookups
// have their context canceled and their late responses dropped.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/metrics"
	"github.com/tomtom215/odyssey/internal/models"
	"github.com/tomtom215/odyssey/internal/store"
)

// Searcher performs the remote lookup. *gateway.Client implements it.
type Searcher interface {
	SearchCities(ctx context.Context, query string) ([]models.CityResult, error)
}

// Timer is a scheduled callback that can be canceled.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn after d. The default is time.AfterFunc.
type Scheduler func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// State is the observable search state.
type State struct {
	Query       string
	Suggestions []models.CityResult
	// Pending is true while the quiet window runs or a lookup is in flight.
	Pending bool
}

// Controller owns one search box.
type Controller struct {
	searcher Searcher
	quiet    time.Duration
	minLen   int
	after    Scheduler

	mu     sync.Mutex
	gen    uint64
	timer  Timer
	cancel context.CancelFunc
	closed bool
	state  *store.Store[State]
}

// Option customizes a Controller.
type Option func(*Controller)

// WithScheduler replaces time.AfterFunc, mainly for deterministic tests.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.after = s }
}

// New creates a controller using the configured quiet window and minimum
// query length.
func New(searcher Searcher, cfg config.SearchConfig, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		quiet:    cfg.QuietWindow,
		minLen:   cfg.MinQueryLength,
		after:    afterFunc,
		state:    store.New(State{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state.Get()
}

// Subscribe registers fn for state changes. Listeners run while the
// controller is locked and must not call back into it synchronously.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.state.Subscribe(fn)
}

// SetQuery records new input and restarts the quiet window. Queries shorter
// than the minimum length clear the suggestions without scheduling a lookup.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.gen++
	gen := c.gen
	c.stopLocked()

	if len([]rune(strings.TrimSpace(query))) < c.minLen {
		metrics.SearchSuppressedTotal.WithLabelValues("too_short").Inc()
		_ = c.state.Set(State{Query: query})
		return
	}

	c.timer = c.after(c.quiet, func() { c.fire(gen, query) })
	_ = c.state.Update(func(s State) State {
		return State{Query: query, Suggestions: s.Suggestions, Pending: true}
	})
}

// stopLocked cancels the scheduled timer and any in-flight lookup.
func (c *Controller) stopLocked() {
	if c.timer != nil {
		if c.timer.Stop() {
			metrics.SearchSuppressedTotal.WithLabelValues("superseded").Inc()
		}
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// fire runs the lookup for gen if it is still current.
func (c *Controller) fire(gen uint64, query string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.timer = nil
	c.mu.Unlock()
	defer cancel()

	results, err := c.searcher.SearchCities(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		metrics.SearchCallsTotal.WithLabelValues("discarded").Inc()
		logging.Debug().Str("query", query).Msg("Discarded stale city search response")
		return
	}
	c.cancel = nil

	if err != nil {
		metrics.SearchCallsTotal.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Str("query", query).Msg("City search failed")
		_ = c.state.Set(State{Query: query})
		return
	}

	metrics.SearchCallsTotal.WithLabelValues("applied").Inc()
	_ = c.state.Set(State{Query: query, Suggestions: results})
}

// Clear resets the query and suggestions, canceling pending work.
func (c *Controller) Clear() {
	c.SetQuery("")
}

// Close cancels pending timers and lookups and drops all listeners. Late
// responses are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.stopLocked()
	c.state.Close()
}
