package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	prev := otel.GetMeterProvider()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	ResetForTesting()
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		otel.SetMeterProvider(prev)
		ResetForTesting()
	})
	return reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestCommandMetrics(t *testing.T) {
	reader := setupMeter(t)
	ctx := context.Background()

	CommandStarted(ctx, "POST")
	RecordConnectRetry(ctx, "POST")
	RecordConnectRetry(ctx, "POST")
	CommandFinished(ctx, "POST", 250*time.Millisecond, CommandResult{
		StatusCode: 200,
		Attempts:   3,
		Completed:  true,
		Outcome:    OutcomeSuccess,
	})
	assert.True(t, IsInitialized())

	metrics := collect(t, reader)

	retries, ok := metrics[metricConnectRetries].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, retries.DataPoints, 1)
	assert.Equal(t, int64(2), retries.DataPoints[0].Value)

	active, ok := metrics[metricActiveCommands].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(0), active.DataPoints[0].Value)

	duration, ok := metrics[metricCommandDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	dp := duration.DataPoints[0]
	assert.Equal(t, uint64(1), dp.Count)
	assert.InDelta(t, 0.25, dp.Sum, 0.0001)
	assert.Equal(t, commandDurationBuckets, dp.Bounds)

	outcome, ok := dp.Attributes.Value(attribute.Key(attrCommandOutcome))
	require.True(t, ok)
	assert.Equal(t, OutcomeSuccess, outcome.AsString())
	status, ok := dp.Attributes.Value(attrHTTPResponseStatus)
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())
}

func TestDurationAttributesForFailure(t *testing.T) {
	attrs := attribute.NewSet(durationAttributes("GET", CommandResult{Outcome: OutcomeError, ErrorType: "execution"})...)

	errType, ok := attrs.Value(attrErrorType)
	require.True(t, ok)
	assert.Equal(t, "execution", errType.AsString())

	_, ok = attrs.Value(attrHTTPResponseStatus)
	assert.False(t, ok)
}

func TestResetForTesting(t *testing.T) {
	setupMeter(t)
	CommandStarted(context.Background(), "GET")
	require.True(t, IsInitialized())

	ResetForTesting()
	assert.False(t, IsInitialized())
}
