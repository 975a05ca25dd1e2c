// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// maxErrorBodySize limits the amount of response body read for error reporting.
const maxErrorBodySize = 64 * 1024

// ErrUnauthenticated is returned before any request when no token is set.
var ErrUnauthenticated = errors.New("not signed in")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method   string
	Endpoint string
	Status   int
	// Detail is the backend's human-readable reason, shown verbatim to the
	// user. Empty when the body carried none.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.Status, http.StatusText(e.Status))
}

// IsClientError reports whether the backend rejected the request itself
// rather than failing to serve it.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// StatusOf returns the HTTP status of an APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// DetailOr returns the backend detail carried by err, or fallback when err
// is not an APIError or has no detail.
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}

// errorBody is the FastAPI error envelope. Detail is a string for
// HTTPException and a list of field errors for request validation (422).
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// parseDetail extracts a displayable message from an error body.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var fields []fieldError
	if err := json.Unmarshal(eb.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg == "" {
				continue
			}
			if n := len(f.Loc); n > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", f.Loc[n-1], f.Msg))
			} else {
				msgs = append(msgs, f.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
