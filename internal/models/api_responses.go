// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

import "time"

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse wraps every preview server reply. Exactly one of Data and
// Error is meaningful, as selected by Status.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries the response time and, for map payloads, the snapshot
// generation the data was read from.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   uint64    `json:"snapshot_version,omitempty"`
}

// APIError is a machine-readable code plus a message for humans.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Success builds a success envelope stamped now.
func Success(data interface{}, version uint64) *APIResponse {
	return &APIResponse{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC(), Version: version},
	}
}

// Failure builds an error envelope stamped now.
func Failure(apiErr *APIError) *APIResponse {
	return &APIResponse{
		Status:   StatusError,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	}
}
