// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type traceKey struct{}

// trace holds the ids Ctx attaches to every entry.
type trace struct {
	correlationID string
	requestID     string
}

func traceFrom(ctx context.Context) trace {
	t, _ := ctx.Value(traceKey{}).(trace)
	return t
}

// GenerateCorrelationID returns a short id tying together the gateway
// calls of one map load.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns an id for one HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID sets the correlation id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	t := traceFrom(ctx)
	t.correlationID = id
	return context.WithValue(ctx, traceKey{}, t)
}

// ContextWithNewCorrelationID sets a freshly generated correlation id.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation id or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return traceFrom(ctx).correlationID
}

// ContextWithRequestID sets the request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	t := traceFrom(ctx)
	t.requestID = id
	return context.WithValue(ctx, traceKey{}, t)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	return traceFrom(ctx).requestID
}

// Ctx returns the global logger with the context's correlation_id and
// request_id attached.
//
//	logging.Ctx(ctx).Info().Msg("Snapshot committed")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	t := traceFrom(ctx)
	if t == (trace{}) {
		return &l
	}

	zctx := l.With()
	if t.correlationID != "" {
		zctx = zctx.Str("correlation_id", t.correlationID)
	}
	if t.requestID != "" {
		zctx = zctx.Str("request_id", t.requestID)
	}
	l = zctx.Logger()
	return &l
}
