// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package store

import (
	"errors"
	"sync"
	"testing"
)

func TestStore_SetNotifiesInOrder(t *testing.T) {
	s := New(0)

	var got []string
	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })

	if err := s.Set(5); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if s.Get() != 5 {
		t.Errorf("Get() = %d, want 5", s.Get())
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("notification order = %v, want [a b]", got)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New("")
	calls := 0
	unsubscribe := s.Subscribe(func(string) { calls++ })

	_ = s.Set("x")
	unsubscribe()
	unsubscribe()
	_ = s.Set("y")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", s.Subscribers())
	}
}

func TestStore_ListenerMayRead(t *testing.T) {
	s := New(1)
	var seen int
	s.Subscribe(func(int) { seen = s.Get() })

	_ = s.Update(func(v int) int { return v + 1 })

	if seen != 2 {
		t.Errorf("listener saw %d, want 2", seen)
	}
}

func TestStore_Close(t *testing.T) {
	s := New(1)
	calls := 0
	s.Subscribe(func(int) { calls++ })

	s.Close()

	if err := s.Set(2); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
	if s.Get() != 1 {
		t.Errorf("Get() after Close = %d, want last value 1", s.Get())
	}
	if calls != 0 || s.Subscribers() != 0 || !s.Closed() {
		t.Errorf("calls=%d subscribers=%d closed=%v", calls, s.Subscribers(), s.Closed())
	}

	// Subscribing to a closed store is a no-op.
	s.Subscribe(func(int) { calls++ })()
	if s.Subscribers() != 0 {
		t.Error("closed store accepted a subscriber")
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := New(0)
	var mu sync.Mutex
	last := 0
	monotonic := true
	s.Subscribe(func(v int) {
		mu.Lock()
		defer mu.Unlock()
		if v <= last {
			monotonic = false
		}
		last = v
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	if s.Get() != 50 {
		t.Errorf("Get() = %d, want 50", s.Get())
	}
	if !monotonic {
		t.Error("listeners observed writes out of commit order")
	}
}
