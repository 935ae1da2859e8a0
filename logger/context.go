package logger

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	// wireCounterKey tracks the number of WebDriver wire calls issued under a context
	wireCounterKey contextKey = "wire_call_counter"
	// wireElapsedKey tracks the total wire time in nanoseconds under a context
	wireElapsedKey contextKey = "wire_elapsed_nanos"
	// severityHookKey stores a callback for request-level severity tracking
	severityHookKey contextKey = "severity_hook"
)

// WithWireCounter returns a context that accumulates WebDriver call counts and elapsed
// time. The transport bumps both on every executed command; test runners read them back
// to report per-test protocol cost.
func WithWireCounter(ctx context.Context) context.Context {
	counter := int64(0)
	elapsed := int64(0)
	ctx = context.WithValue(ctx, wireCounterKey, &counter)
	ctx = context.WithValue(ctx, wireElapsedKey, &elapsed)
	return ctx
}

// IncrementWireCounter increments the wire call counter in the context
func IncrementWireCounter(ctx context.Context) {
	if counter, ok := ctx.Value(wireCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
}

// GetWireCounter returns the current wire call count from the context
func GetWireCounter(ctx context.Context) int64 {
	if counter, ok := ctx.Value(wireCounterKey).(*int64); ok && counter != nil {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// AddWireElapsed adds elapsed nanoseconds to the wire elapsed time in the context
func AddWireElapsed(ctx context.Context, nanos int64) {
	if elapsed, ok := ctx.Value(wireElapsedKey).(*int64); ok && elapsed != nil {
		atomic.AddInt64(elapsed, nanos)
	}
}

// GetWireElapsed returns the accumulated wire time in nanoseconds from the context
func GetWireElapsed(ctx context.Context) int64 {
	if elapsed, ok := ctx.Value(wireElapsedKey).(*int64); ok && elapsed != nil {
		return atomic.LoadInt64(elapsed)
	}
	return 0
}

// WithSeverityHook attaches a severity hook to the context. Loggers bound to the context
// through WithContext invoke it for every WARN or higher entry.
func WithSeverityHook(ctx context.Context, hook func(zerolog.Level)) context.Context {
	if ctx == nil || hook == nil {
		return ctx
	}
	return context.WithValue(ctx, severityHookKey, hook)
}

func severityHookFromContext(ctx context.Context) func(zerolog.Level) {
	if ctx == nil {
		return nil
	}
	if hook, ok := ctx.Value(severityHookKey).(func(zerolog.Level)); ok {
		return hook
	}
	return nil
}
