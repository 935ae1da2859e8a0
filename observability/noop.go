package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// noopProvider satisfies Provider when observability is disabled, so WebDriver
// commands still get valid tracers and meters that record nothing.
type noopProvider struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// newNoopProvider wires the OTel no-op tracer and meter providers.
func newNoopProvider() *noopProvider {
	return &noopProvider{
		tracerProvider: noop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

// TracerProvider returns a tracer provider whose spans are never exported.
func (n *noopProvider) TracerProvider() trace.TracerProvider {
	return n.tracerProvider
}

// MeterProvider returns a meter provider whose instruments discard measurements.
func (n *noopProvider) MeterProvider() metric.MeterProvider {
	return n.meterProvider
}

// Shutdown returns nil; no exporters were started.
func (n *noopProvider) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush returns nil; nothing is buffered.
func (n *noopProvider) ForceFlush(_ context.Context) error {
	return nil
}
