// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package workflow drives the create and edit forms for points and routes.
//
// Each form is a small state machine (Idle, Validating, Submitting, Error,
// Closed). Input is validated locally before any remote call. A successful
// submission asks the Reloader for a fresh snapshot and closes the form; a
// failed one keeps the form open with the entered data and an inline
// message.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/metrics"
)

// Phase is the state of a form.
type Phase int

// Form phases. Closed is terminal until the form is opened again.
const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseError
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseError:
		return "error"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Sentinel errors.
var (
	ErrClosed      = errors.New("workflow: form is closed")
	ErrBusy        = errors.New("workflow: submission in progress")
	ErrDetachFirst = errors.New("workflow: detach the current photo before attaching another")
	ErrLocked      = errors.New("workflow: coordinates are fixed by the selected city")
)

// ValidationError is a client-side rejection shown inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Reloader refreshes the canonical snapshot after a mutation.
type Reloader interface {
	Reload(ctx context.Context) error
}

// reloadAfter runs the post-mutation reload. A failed reload is handled by
// the reloader itself, so it is only logged here.
func reloadAfter(ctx context.Context, r Reloader, form string) {
	if r == nil {
		return
	}
	if err := r.Reload(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("form", form).Msg("Reload after submission failed")
	}
}

func recordSubmission(form, outcome string) {
	metrics.WorkflowSubmissionsTotal.WithLabelValues(form, outcome).Inc()
}
