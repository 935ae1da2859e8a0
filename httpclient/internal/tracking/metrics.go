package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "webdriver-bricks/httpclient"

	metricCommandDuration = "webdriver.client.command.duration" // Histogram in seconds
	metricConnectRetries  = "webdriver.client.connect.retries"  // Counter
	metricActiveCommands  = "webdriver.client.active_commands"  // UpDownCounter

	attrHTTPRequestMethod  = "http.request.method"
	attrHTTPResponseStatus = "http.response.status_code"
	attrErrorType          = "error.type"
)

// Browser commands range from a few milliseconds to minutes for page loads
var commandDurationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

var (
	meter         metric.Meter
	meterOnce     sync.Once
	meterInitMu   sync.Mutex
	metricsInited bool

	commandDurationHistogram metric.Float64Histogram
	connectRetriesCounter    metric.Int64Counter
	activeCommandsGauge      metric.Int64UpDownCounter
)

// logMetricError reports instrument creation failures on stderr; metrics never block commands
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize WebDriver metric %s: %v\n", metricName, err)
	}
}

func initMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if meter != nil {
		return
	}

	meter = otel.Meter(meterName)

	var err error
	commandDurationHistogram, err = meter.Float64Histogram(
		metricCommandDuration,
		metric.WithDescription("Duration of WebDriver commands including connection retries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(commandDurationBuckets...),
	)
	logMetricError(metricCommandDuration, err)

	connectRetriesCounter, err = meter.Int64Counter(
		metricConnectRetries,
		metric.WithDescription("Connection attempts refused by the remote end"),
		metric.WithUnit("{attempt}"),
	)
	logMetricError(metricConnectRetries, err)

	activeCommandsGauge, err = meter.Int64UpDownCounter(
		metricActiveCommands,
		metric.WithDescription("Number of in-flight WebDriver commands"),
		metric.WithUnit("{command}"),
	)
	logMetricError(metricActiveCommands, err)

	metricsInited = true
}

func ensureMeterInitialized() {
	meterOnce.Do(initMeter)
}

// CommandStarted increments the in-flight gauge
func CommandStarted(ctx context.Context, method string) {
	ensureMeterInitialized()
	if activeCommandsGauge != nil {
		activeCommandsGauge.Add(ctx, 1, metric.WithAttributes(attribute.String(attrHTTPRequestMethod, method)))
	}
}

// CommandFinished decrements the in-flight gauge and records the command duration
func CommandFinished(ctx context.Context, method string, duration time.Duration, res CommandResult) {
	ensureMeterInitialized()
	if activeCommandsGauge != nil {
		activeCommandsGauge.Add(ctx, -1, metric.WithAttributes(attribute.String(attrHTTPRequestMethod, method)))
	}
	if commandDurationHistogram != nil {
		commandDurationHistogram.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttributes(method, res)...))
	}
}

// RecordConnectRetry counts one refused connection attempt
func RecordConnectRetry(ctx context.Context, method string) {
	ensureMeterInitialized()
	if connectRetriesCounter != nil {
		connectRetriesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(attrHTTPRequestMethod, method)))
	}
}

func durationAttributes(method string, res CommandResult) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(attrHTTPRequestMethod, method),
		attribute.String(attrCommandOutcome, res.Outcome),
	}
	if res.StatusCode > 0 {
		attrs = append(attrs, attribute.Int(attrHTTPResponseStatus, res.StatusCode))
	}
	if res.ErrorType != "" {
		attrs = append(attrs, attribute.String(attrErrorType, res.ErrorType))
	}
	return attrs
}

// IsInitialized reports whether the instruments have been created
func IsInitialized() bool {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()
	return metricsInited
}

// ResetForTesting drops the cached instruments so a test can install its own MeterProvider
func ResetForTesting() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	meter = nil
	commandDurationHistogram = nil
	connectRetriesCounter = nil
	activeCommandsGauge = nil
	metricsInited = false
	meterOnce = sync.Once{}
}
