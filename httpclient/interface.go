package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// HeaderXRequestID is the default header name for request tracing
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = "traceparent"
)

// Client executes WebDriver wire commands
type Client interface {
	Get(ctx context.Context, url string, opts ...Option) (*Response, error)
	Post(ctx context.Context, url string, params any, opts ...Option) (*Response, error)
	Put(ctx context.Context, url string, params any, opts ...Option) (*Response, error)
	Delete(ctx context.Context, url string, opts ...Option) (*Response, error)
	// Execute sends one command. Methods other than GET, POST, PUT and DELETE are sent
	// as GET. Structured params become the JSON body of POST and PUT.
	Execute(ctx context.Context, method, url string, params any, opts ...Option) (*Response, error)
}

// Response is the raw outcome of a command: the whitespace-trimmed body plus
// transport metadata
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains command execution statistics
type Stats struct {
	ElapsedTime time.Duration
	// CallCount is the client-wide sequence number of this command
	CallCount int64
	// Attempts is the number of transport attempts made
	Attempts int
	// Completed is false when every attempt failed to connect. The Response is
	// still returned without an error in that case.
	Completed bool
	// GotNothing is true when the remote end closed the connection without replying
	GotNothing    bool
	EffectiveURL  string
	ContentType   string
	Proto         string
	ContentLength int64
	RequestID     string
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string `validate:"required"`
	Password string
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the WebDriver client configuration
type Config struct {
	// Timeout bounds each transport attempt (default: 60s)
	Timeout time.Duration
	// MaxAttempts bounds connection attempts per command (default: 10)
	MaxAttempts int
	// RetryDelay is the constant pause between connection attempts (default: 100ms)
	RetryDelay time.Duration
	// BackOff overrides the constant RetryDelay policy when set
	BackOff              backoff.BackOff
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	BasicAuth            *BasicAuth
	DefaultHeaders       map[string]string
	// BaseURL is prefixed to command URLs that carry no scheme
	BaseURL string
	// FollowRedirects is off by default; WebDriver remote ends answer directly
	FollowRedirects    bool
	InsecureSkipVerify bool
	// Transport replaces the default cloned http.Transport
	Transport nethttp.RoundTripper
	// RateLimit caps commands per second across the client; zero disables it
	RateLimit float64
	RateBurst int
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// TraceIDHeader configures the header name used for trace ID propagation (default: X-Request-ID)
	TraceIDHeader string
	// NewTraceID generates a new trace ID when none is present (default: uuid)
	NewTraceID func() string
	// EnableW3CTrace propagates traceparent from the command span through otelhttp
	EnableW3CTrace bool
}
