package httpclient

import (
	"crypto/tls"
	"maps"
	nethttp "net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/time/rate"

	"github.com/gaborage/webdriver-bricks/logger"
)

const (
	// DefaultTimeout bounds each transport attempt
	DefaultTimeout = 60 * time.Second

	// DefaultMaxAttempts is the number of connection attempts per command
	DefaultMaxAttempts = 10

	// DefaultRetryDelay is the pause between refused connection attempts
	DefaultRetryDelay = 100 * time.Millisecond

	// DefaultMaxPayloadLogBytes caps logged body previews
	DefaultMaxPayloadLogBytes = 1024
)

// Builder provides a fluent interface for configuring the WebDriver client
type Builder struct {
	config *Config
	logger logger.Logger
}

// NewClient creates a WebDriver client with default configuration
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			Timeout:              DefaultTimeout,
			MaxAttempts:          DefaultMaxAttempts,
			RetryDelay:           DefaultRetryDelay,
			RequestInterceptors:  []RequestInterceptor{},
			ResponseInterceptors: []ResponseInterceptor{},
			DefaultHeaders:       make(map[string]string),
			MaxPayloadLogBytes:   DefaultMaxPayloadLogBytes,
			TraceIDHeader:        HeaderXRequestID,
			NewTraceID:           func() string { return uuid.New().String() },
		},
		logger: log,
	}
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the connection attempt bound and the constant delay between attempts
func (b *Builder) WithRetries(maxAttempts int, retryDelay time.Duration) *Builder {
	b.config.MaxAttempts = maxAttempts
	b.config.RetryDelay = retryDelay
	return b
}

// WithBackOff replaces the constant retry delay. The policy is shared by concurrent
// commands, so it must be stateless or safe for concurrent use.
func (b *Builder) WithBackOff(policy backoff.BackOff) *Builder {
	b.config.BackOff = policy
	return b
}

// WithBasicAuth sets basic authentication credentials
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{
		Username: username,
		Password: password,
	}
	return b
}

// WithDefaultHeader adds a header sent with every command
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithBaseURL sets the prefix for relative command paths, e.g. http://localhost:4444/wd/hub
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithFollowRedirects sets the default redirect policy
func (b *Builder) WithFollowRedirects(follow bool) *Builder {
	b.config.FollowRedirects = follow
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification on the default transport
func (b *Builder) WithInsecureSkipVerify(skip bool) *Builder {
	b.config.InsecureSkipVerify = skip
	return b
}

// WithTransport replaces the underlying round tripper
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.config.Transport = rt
	return b
}

// WithRateLimit caps commands per second across the client. A non-positive limit disables it.
func (b *Builder) WithRateLimit(perSecond float64, burst int) *Builder {
	b.config.RateLimit = perSecond
	b.config.RateBurst = burst
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithPayloadLogging enables debug logging of headers and body previews
func (b *Builder) WithPayloadLogging(enabled bool, maxBytes int) *Builder {
	b.config.LogPayloads = enabled
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// WithTraceIDHeader sets the header carrying the request ID
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	if header != "" {
		b.config.TraceIDHeader = header
	}
	return b
}

// WithTraceIDGenerator sets the request ID generator
func (b *Builder) WithTraceIDGenerator(gen func() string) *Builder {
	if gen != nil {
		b.config.NewTraceID = gen
	}
	return b
}

// WithW3CTrace enables traceparent propagation from the command span
func (b *Builder) WithW3CTrace(enabled bool) *Builder {
	b.config.EnableW3CTrace = enabled
	return b
}

// Build creates the WebDriver client with the configured options
func (b *Builder) Build() Client {
	// Later builder calls must not reach clients already built
	cfg := *b.config
	cfg.DefaultHeaders = maps.Clone(b.config.DefaultHeaders)
	cfg.RequestInterceptors = slices.Clone(b.config.RequestInterceptors)
	cfg.ResponseInterceptors = slices.Clone(b.config.ResponseInterceptors)
	if b.config.BasicAuth != nil {
		auth := *b.config.BasicAuth
		cfg.BasicAuth = &auth
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.TraceIDHeader == "" {
		cfg.TraceIDHeader = HeaderXRequestID
	}

	transport := b.transport(&cfg)

	c := &client{
		logger:               b.logger,
		config:               &cfg,
		requestInterceptors:  cfg.RequestInterceptors,
		responseInterceptors: cfg.ResponseInterceptors,
		followClient: &nethttp.Client{
			Transport: transport,
		},
		directClient: &nethttp.Client{
			Transport: transport,
			CheckRedirect: func(*nethttp.Request, []*nethttp.Request) error {
				return nethttp.ErrUseLastResponse
			},
		},
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// transport resolves the round tripper shared by both redirect policies. Timeouts are
// enforced per attempt through the request context, so the http.Client carries none.
func (b *Builder) transport(cfg *Config) nethttp.RoundTripper {
	rt := cfg.Transport
	if rt == nil {
		base := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
		if cfg.InsecureSkipVerify {
			if base.TLSClientConfig == nil {
				base.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			}
			base.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // opt-in for self-signed grid certificates
		}
		rt = base
	}
	if cfg.EnableW3CTrace {
		rt = otelhttp.NewTransport(rt, otelhttp.WithPropagators(propagation.TraceContext{}))
	}
	return rt
}
