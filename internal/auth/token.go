// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package auth models the session collaborator as an injected TokenSource.
//
// Login, registration and token storage belong to the host application; the
// gateway only needs the current bearer token and a way to hear about changes.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when a token is required but none is set.
var ErrNoToken = errors.New("no session token")

// TokenSource supplies the bearer token for backend calls.
type TokenSource interface {
	// Token returns the current token, or "" when signed out.
	Token() string
	// OnAuthChange registers fn to be called with the new token on every
	// change ("" on sign-out) and returns a function that removes it.
	OnAuthChange(fn func(token string)) (unsubscribe func())
}

// Session is an in-memory TokenSource. The zero value is signed out.
type Session struct {
	mu        sync.RWMutex
	token     string
	listeners map[int]func(string)
	nextID    int
}

// NewSession creates a session holding token.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the token and notifies listeners if it changed.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	if s.token == token {
		s.mu.Unlock()
		return
	}
	s.token = token
	listeners := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(token)
	}
}

// Clear signs the session out.
func (s *Session) Clear() {
	s.SetToken("")
}

// OnAuthChange implements TokenSource.
func (s *Session) OnAuthChange(fn func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners == nil {
		s.listeners = make(map[int]func(string))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Claims are the fields the backend puts in its access tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the numeric subject, which the backend sets to the user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject %q is not a user id: %w", c.Subject, err)
	}
	return id, nil
}

// Inspect decodes token claims without verifying the signature. The client
// does not hold the signing key; the backend remains the verifier.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode session token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the token expiry, or the zero time if the token has none.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := Inspect(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether token expires at or before now. Tokens without an
// exp claim never expire.
func Expired(token string, now time.Time) (bool, error) {
	exp, err := ExpiresAt(token)
	if err != nil {
		return false, err
	}
	return !exp.IsZero() && !now.Before(exp), nil
}
