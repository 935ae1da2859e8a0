package observability

import (
	"fmt"
	"strings"
	"time"
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// EnvironmentDevelopment is the default environment name.
	EnvironmentDevelopment = "development"
)

// BoolPtr returns a pointer to the provided bool value.
func BoolPtr(v bool) *bool {
	return &v
}

// Float64Ptr returns a pointer to the provided float64 value.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Config defines the configuration for observability features. It is read from the
// "observability" section through config.Config.Unmarshal.
type Config struct {
	// Enabled controls whether observability is active.
	// When false, all observability operations become no-ops.
	Enabled     bool          `mapstructure:"enabled"`
	Service     ServiceConfig `mapstructure:"service"`
	Environment string        `mapstructure:"environment"`
	Trace       TraceConfig   `mapstructure:"trace"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// ServiceConfig contains service identification metadata.
type ServiceConfig struct {
	// Name identifies the service in traces and metrics.
	// This is required when observability is enabled.
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// TraceConfig defines configuration for distributed tracing.
type TraceConfig struct {
	// nil = apply default (true when observability is enabled), false = explicitly disabled.
	Enabled *bool `mapstructure:"enabled"`

	// Endpoint is "stdout" or an OTLP endpoint. HTTP endpoints are host:port
	// (e.g. "localhost:4318"), gRPC endpoints likewise ("localhost:4317").
	Endpoint string            `mapstructure:"endpoint"`
	Protocol string            `mapstructure:"protocol"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`

	// SampleRate is the fraction of traces kept, 0.0 to 1.0.
	// nil = apply default (1.0), explicit value = use that value (including 0.0).
	SampleRate *float64 `mapstructure:"samplerate"`

	BatchTimeout  time.Duration `mapstructure:"batchtimeout"`
	ExportTimeout time.Duration `mapstructure:"exporttimeout"`
}

// MetricsConfig defines configuration for metrics collection.
type MetricsConfig struct {
	Enabled *bool `mapstructure:"enabled"`

	// Endpoint and Protocol default to the trace settings.
	Endpoint      string        `mapstructure:"endpoint"`
	Protocol      string        `mapstructure:"protocol"`
	Interval      time.Duration `mapstructure:"interval"`
	ExportTimeout time.Duration `mapstructure:"exporttimeout"`
}

// ApplyDefaults sets default values for any config fields that are not specified.
func (c *Config) ApplyDefaults() {
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Environment == "" {
		c.Environment = EnvironmentDevelopment
	}

	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	if c.Enabled && c.Trace.Enabled == nil {
		c.Trace.Enabled = BoolPtr(true)
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Trace.SampleRate == nil {
		c.Trace.SampleRate = Float64Ptr(1.0)
	}
	// Development: export quickly so spans show up while a test suite runs
	if c.Trace.BatchTimeout == 0 {
		if c.Environment == EnvironmentDevelopment || c.Trace.Endpoint == EndpointStdout {
			c.Trace.BatchTimeout = 500 * time.Millisecond
		} else {
			c.Trace.BatchTimeout = 5 * time.Second
		}
	}
	if c.Trace.ExportTimeout == 0 {
		c.Trace.ExportTimeout = 30 * time.Second
	}

	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = c.Trace.Endpoint
	}
	if c.Metrics.Protocol == "" {
		c.Metrics.Protocol = c.Trace.Protocol
	}
	if c.Enabled && c.Metrics.Enabled == nil {
		c.Metrics.Enabled = BoolPtr(true)
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 10 * time.Second
	}
	if c.Metrics.ExportTimeout == 0 {
		c.Metrics.ExportTimeout = 30 * time.Second
	}
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if c.Service.Name == "" {
		return ErrMissingServiceName
	}

	if c.Trace.SampleRate != nil && (*c.Trace.SampleRate < 0 || *c.Trace.SampleRate > 1) {
		return ErrInvalidSampleRate
	}
	if err := validateEndpoint("trace", c.Trace.Endpoint, c.Trace.Protocol); err != nil {
		return err
	}
	return validateEndpoint("metrics", c.Metrics.Endpoint, c.Metrics.Protocol)
}

func validateEndpoint(signal, endpoint, protocol string) error {
	if endpoint == EndpointStdout {
		return nil
	}
	switch protocol {
	case ProtocolHTTP, ProtocolGRPC:
	default:
		return fmt.Errorf("%s protocol '%s': %w", signal, protocol, ErrInvalidProtocol)
	}
	// Both OTLP exporters take host:port; a scheme here is a common misconfiguration
	if strings.Contains(endpoint, "://") {
		return fmt.Errorf("%s endpoint '%s' must be host:port: %w", signal, endpoint, ErrInvalidEndpointFormat)
	}
	return nil
}
