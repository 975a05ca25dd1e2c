// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/odyssey/internal/websocket"
)

var (
	_ suture.Service = (*WebSocketHubService)(nil)
	_ ContextHub     = (*websocket.Hub)(nil)
)

// crashingHub fails its first run and then behaves.
type crashingHub struct {
	runs atomic.Int32
}

func (h *crashingHub) RunWithContext(ctx context.Context) error {
	if h.runs.Add(1) == 1 {
		return errors.New("hub crashed")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_RealHub(t *testing.T) {
	svc := NewWebSocketHubService(websocket.NewHub())
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want DeadlineExceeded", err)
	}
}

func TestWebSocketHubService_RestartedBySupervisor(t *testing.T) {
	hub := &crashingHub{}
	sup := suture.New("test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewWebSocketHubService(hub))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for hub.runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("hub was not restarted")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh
}
