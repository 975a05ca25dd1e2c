// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package store provides an explicit, subscribable state container.
//
// Each component owns one Store for its state. Writers call Set or Update;
// readers call Get or Subscribe. Close releases every subscriber, which is how
// a component guarantees its listeners are gone on every exit path.
package store

import (
	"errors"
	"sync"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("store closed")

// Listener receives the new state after each write.
type Listener[T any] func(T)

// Store holds one value of T and notifies subscribers on change.
//
// Listeners are invoked synchronously, outside the state lock, in
// subscription order. A listener may call Get but must not block on
// another write to the same store.
type Store[T any] struct {
	mu        sync.RWMutex
	value     T
	listeners map[uint64]Listener[T]
	order     []uint64
	nextID    uint64
	closed    bool

	// notifyMu serializes notification rounds so listeners observe writes
	// in commit order.
	notifyMu sync.Mutex
}

// New creates a store seeded with initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value:     initial,
		listeners: make(map[uint64]Listener[T]),
	}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Store[T]) Set(v T) error {
	return s.Update(func(T) T { return v })
}

// Update applies fn to the current value under the write lock and notifies
// subscribers with the result.
func (s *Store[T]) Update(fn func(T) T) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.value = fn(s.value)
	v := s.value
	listeners := s.snapshotListenersLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(v)
	}
	return nil
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (s *Store[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Store[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store[T]) snapshotListenersLocked() []Listener[T] {
	out := make([]Listener[T], 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}

// Subscribers returns the number of registered listeners.
func (s *Store[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// Close drops all listeners and rejects further writes. The last value
// remains readable through Get.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.listeners = make(map[uint64]Listener[T])
	s.order = nil
}

// Closed reports whether Close has been called.
func (s *Store[T]) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
