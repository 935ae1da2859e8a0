package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerContentLength = "Content-Length"
	headerExpect        = "Expect"

	// MediaTypeJSON is sent as both Content-Type and Accept on every command
	MediaTypeJSON = "application/json;charset=UTF-8"
)

var optionsValidator = validator.New(validator.WithRequiredStructEnabled())

// RequestOptions are the per-call overrides applied after the method defaults
type RequestOptions struct {
	Timeout     time.Duration `validate:"gte=0"`
	MaxAttempts int           `validate:"gte=0,lte=100"`
	// Headers are merged over the defaults key by key unless ReplaceHeaders is set
	Headers         nethttp.Header
	ReplaceHeaders  bool
	BasicAuth       *BasicAuth `validate:"omitempty"`
	FollowRedirects *bool
}

// Option mutates RequestOptions for a single call
type Option func(*RequestOptions)

// WithHeader sets one header for this call, replacing any default value for the key
func WithHeader(key, value string) Option {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = nethttp.Header{}
		}
		o.Headers.Set(key, value)
	}
}

// WithHeaders replaces the whole header set for this call, JSON content negotiation
// headers included.
func WithHeaders(headers map[string]string) Option {
	return func(o *RequestOptions) {
		o.Headers = nethttp.Header{}
		for k, v := range headers {
			o.Headers.Set(k, v)
		}
		o.ReplaceHeaders = true
	}
}

// WithTimeout overrides the per-attempt timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *RequestOptions) {
		o.Timeout = timeout
	}
}

// WithBasicAuth overrides the client credentials for this call
func WithBasicAuth(username, password string) Option {
	return func(o *RequestOptions) {
		o.BasicAuth = &BasicAuth{Username: username, Password: password}
	}
}

// WithFollowRedirects toggles redirect following for this call
func WithFollowRedirects(follow bool) Option {
	return func(o *RequestOptions) {
		o.FollowRedirects = &follow
	}
}

// WithMaxAttempts overrides the connection attempt bound for this call
func WithMaxAttempts(n int) Option {
	return func(o *RequestOptions) {
		o.MaxAttempts = n
	}
}

// requestPlan is the fully resolved description of one command. It is immutable once
// built; every attempt derives a fresh *http.Request from it.
type requestPlan struct {
	// command is the method as the caller passed it, used in error messages
	command string
	method  string
	url     string
	headers nethttp.Header
	body    []byte
	// paramsJSON is the encoded form of structured params, whatever the method
	paramsJSON        []byte
	contentLengthZero bool
	suppressExpect    bool
	timeout           time.Duration
	maxAttempts       int
	auth              *BasicAuth
	followRedirects   bool
}

// buildPlan resolves method defaults, then per-call options, into a requestPlan
func (c *client) buildPlan(method, rawURL string, params any, opts []Option) (*requestPlan, error) {
	var ro RequestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&ro)
		}
	}
	if err := validateOptions(&ro); err != nil {
		return nil, err
	}

	target, err := resolveURL(c.config.BaseURL, rawURL)
	if err != nil {
		return nil, err
	}

	plan := &requestPlan{
		command:         method,
		method:          nethttp.MethodGet,
		url:             target,
		headers:         nethttp.Header{},
		timeout:         c.config.Timeout,
		maxAttempts:     c.config.MaxAttempts,
		auth:            c.config.BasicAuth,
		followRedirects: c.config.FollowRedirects,
	}
	plan.headers.Set(headerContentType, MediaTypeJSON)
	plan.headers.Set(headerAccept, MediaTypeJSON)
	for k, v := range c.config.DefaultHeaders {
		plan.headers.Set(k, v)
	}

	if isStructured(params) {
		encoded, err := encodeParams(params)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("params cannot be encoded as JSON: %v", err), "params")
		}
		plan.paramsJSON = encoded
	}

	switch method {
	case nethttp.MethodPost, nethttp.MethodPut:
		plan.method = method
		if plan.paramsJSON != nil {
			plan.body = plan.paramsJSON
		} else {
			plan.contentLengthZero = true
			plan.headers.Set(headerContentLength, "0")
		}
		plan.suppressExpect = true
	case nethttp.MethodDelete:
		plan.method = method
	}

	applyOptions(plan, &ro)
	return plan, nil
}

func applyOptions(plan *requestPlan, ro *RequestOptions) {
	if ro.Timeout > 0 {
		plan.timeout = ro.Timeout
	}
	if ro.MaxAttempts > 0 {
		plan.maxAttempts = ro.MaxAttempts
	}
	if ro.BasicAuth != nil {
		plan.auth = ro.BasicAuth
	}
	if ro.FollowRedirects != nil {
		plan.followRedirects = *ro.FollowRedirects
	}
	if ro.ReplaceHeaders {
		plan.headers = ro.Headers.Clone()
		if plan.headers == nil {
			plan.headers = nethttp.Header{}
		}
		return
	}
	for k, v := range ro.Headers {
		plan.headers[k] = append([]string(nil), v...)
	}
}

func validateOptions(ro *RequestOptions) error {
	if err := optionsValidator.Struct(ro); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return NewValidationError(
				fmt.Sprintf("option failed '%s' validation (value: %v)", fe.Tag(), fe.Value()),
				fe.Namespace(),
			)
		}
		return NewValidationError(err.Error(), "options")
	}
	return nil
}

// resolveURL prefixes scheme-less command paths with base. The result must be absolute.
func resolveURL(base, raw string) (string, error) {
	if raw == "" {
		return "", NewValidationError("URL cannot be empty", "url")
	}
	target := raw
	if base != "" && !strings.Contains(raw, "://") {
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", NewValidationError(fmt.Sprintf("invalid URL: %v", err), "url")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", NewValidationError("URL must be absolute", "url")
	}
	return target, nil
}

// isStructured reports whether params become a JSON body. Maps, structs, slices and
// arrays do; strings, numbers, booleans, byte slices and nil do not.
func isStructured(params any) bool {
	switch v := params.(type) {
	case nil:
		return false
	case json.RawMessage:
		return len(v) > 0
	case []byte, string:
		return false
	}

	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// encodeParams renders params without HTML escaping so URLs and selectors reach the
// remote end verbatim. A nil map encodes as {} and a nil slice as [].
func encodeParams(params any) ([]byte, error) {
	if raw, ok := params.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, errors.New("invalid raw JSON")
		}
		return bytes.TrimSpace(raw), nil
	}

	rv := reflect.ValueOf(params)
	if rv.Kind() == reflect.Map && rv.IsNil() {
		return []byte("{}"), nil
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(params); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// newHTTPRequest derives one attempt's request from the plan
func (p *requestPlan) newHTTPRequest(ctx context.Context) (*nethttp.Request, error) {
	var req *nethttp.Request
	var err error
	if len(p.body) > 0 {
		req, err = nethttp.NewRequestWithContext(ctx, p.method, p.url, bytes.NewReader(p.body))
	} else {
		req, err = nethttp.NewRequestWithContext(ctx, p.method, p.url, nethttp.NoBody)
	}
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("failed to create HTTP request: %v", err), "url")
	}

	req.Header = p.headers.Clone()
	req.Header.Del(headerContentLength)
	if p.contentLengthZero {
		req.ContentLength = 0
	}
	if p.suppressExpect {
		req.Header.Del(headerExpect)
	}
	if p.auth != nil {
		req.SetBasicAuth(p.auth.Username, p.auth.Password)
	}
	return req, nil
}
