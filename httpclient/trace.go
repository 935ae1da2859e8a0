package httpclient

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// WithTraceID adds a trace ID to the context; commands sent under it carry the ID in
// the trace header.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns a trace ID from context if present
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		return traceID, true
	}
	return "", false
}

// EnsureTraceID returns an existing trace ID from context or generates a new one
func EnsureTraceID(ctx context.Context) string {
	if traceID, ok := TraceIDFromContext(ctx); ok {
		return traceID
	}
	return uuid.New().String()
}

// resolveTraceID picks the trace ID for a command: an explicit header wins, then the
// context, then the configured generator.
func (c *client) resolveTraceID(ctx context.Context, plan *requestPlan) string {
	if v := plan.headers.Get(c.config.TraceIDHeader); v != "" {
		return v
	}
	if traceID, ok := TraceIDFromContext(ctx); ok {
		return traceID
	}
	if c.config.NewTraceID != nil {
		if id := c.config.NewTraceID(); id != "" {
			return id
		}
	}
	return uuid.New().String()
}
