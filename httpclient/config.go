package httpclient

import (
	"github.com/gaborage/webdriver-bricks/config"
	"github.com/gaborage/webdriver-bricks/logger"
)

// FromConfig returns a Builder preloaded from the webdriver configuration section.
// Callers may keep chaining before Build, e.g. to add interceptors.
func FromConfig(log logger.Logger, cfg *config.WebDriverConfig) *Builder {
	b := NewBuilder(log)
	if cfg == nil {
		return b
	}

	if cfg.Timeout > 0 {
		b.WithTimeout(cfg.Timeout)
	}
	if cfg.Retry.Attempts > 0 {
		b.WithRetries(cfg.Retry.Attempts, cfg.Retry.Delay)
	}

	b.WithBaseURL(cfg.BaseURL).
		WithFollowRedirects(cfg.Redirects.Follow).
		WithInsecureSkipVerify(cfg.TLS.Insecure).
		WithRateLimit(cfg.Rate.Limit, cfg.Rate.Burst).
		WithPayloadLogging(cfg.Log.Payloads, cfg.Log.MaxBytes).
		WithTraceIDHeader(cfg.Trace.Header).
		WithW3CTrace(cfg.Trace.W3C)

	if cfg.Auth.Username != "" {
		b.WithBasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	}
	for k, v := range cfg.Headers {
		b.WithDefaultHeader(k, v)
	}
	return b
}
