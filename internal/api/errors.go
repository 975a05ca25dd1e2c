// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/odyssey/internal/canvas"
	"github.com/tomtom215/odyssey/internal/orchestrator"
	"github.com/tomtom215/odyssey/internal/validation"
	"github.com/tomtom215/odyssey/internal/workflow"
)

// Error codes for API responses.
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeRateLimited         = "RATE_LIMITED"
)

// ErrBodyTooLarge is returned for request bodies above maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// classify maps orchestrator, workflow and canvas errors onto a status and
// code. Anything unrecognized came back from the backend.
func classify(err error) (int, string) {
	var verr *workflow.ValidationError
	var qerr *validation.RequestValidationError
	switch {
	case errors.Is(err, orchestrator.ErrNotActive), errors.Is(err, orchestrator.ErrNoCanvas),
		errors.Is(err, workflow.ErrClosed), errors.Is(err, workflow.ErrBusy):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, orchestrator.ErrNotAllowed):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, orchestrator.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, canvas.ErrUnknownKind), errors.Is(err, workflow.ErrLocked),
		errors.Is(err, workflow.ErrDetachFirst), errors.As(err, &verr), errors.As(err, &qerr):
		return http.StatusBadRequest, ErrCodeValidation
	default:
		return http.StatusBadGateway, ErrCodeExternalServiceFail
	}
}
