package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/webdriver-bricks/httpclient/internal/tracking"
	"github.com/gaborage/webdriver-bricks/logger"
)

// client implements the Client interface
type client struct {
	followClient         *nethttp.Client
	directClient         *nethttp.Client
	limiter              *rate.Limiter
	logger               logger.Logger
	config               *Config
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	callCount            int64
}

// Get sends a GET command
func (c *client) Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Execute(ctx, nethttp.MethodGet, url, nil, opts...)
}

// Post sends a POST command
func (c *client) Post(ctx context.Context, url string, params any, opts ...Option) (*Response, error) {
	return c.Execute(ctx, nethttp.MethodPost, url, params, opts...)
}

// Put sends a PUT command
func (c *client) Put(ctx context.Context, url string, params any, opts ...Option) (*Response, error) {
	return c.Execute(ctx, nethttp.MethodPut, url, params, opts...)
}

// Delete sends a DELETE command
func (c *client) Delete(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Execute(ctx, nethttp.MethodDelete, url, nil, opts...)
}

// Execute sends one command, retrying only while the connection is refused. When every
// attempt is refused the returned Response has Stats.Completed false and the error is nil.
func (c *client) Execute(ctx context.Context, method, url string, params any, opts ...Option) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	plan, err := c.buildPlan(method, url, params, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	traceID := c.resolveTraceID(ctx, plan)
	plan.headers.Set(c.config.TraceIDHeader, traceID)
	ctx = WithTraceID(ctx, traceID)

	ctx, span := tracking.StartCommandSpan(ctx, plan.method, plan.url)
	tracking.CommandStarted(ctx, plan.method)

	resp, attempts, err := c.run(ctx, plan, traceID)

	elapsed := time.Since(start)
	logger.IncrementWireCounter(ctx)
	logger.AddWireElapsed(ctx, elapsed.Nanoseconds())

	result := tracking.CommandResult{Attempts: attempts, RequestID: traceID, Err: err}
	defer func() {
		tracking.EndCommandSpan(span, result)
		tracking.CommandFinished(ctx, plan.method, elapsed, result)
	}()

	if err != nil {
		result.Outcome = tracking.OutcomeError
		if ce, ok := err.(ClientError); ok {
			result.ErrorType = string(ce.Type())
		}
		c.logFailure(ctx, plan, attempts, err, traceID)
		return nil, err
	}

	resp.Stats.ElapsedTime = elapsed
	resp.Stats.CallCount = callCount
	resp.Stats.Attempts = attempts
	resp.Stats.RequestID = traceID
	if resp.Stats.EffectiveURL == "" {
		resp.Stats.EffectiveURL = plan.url
	}

	result.StatusCode = resp.StatusCode
	result.Completed = resp.Stats.Completed
	switch {
	case !resp.Stats.Completed:
		result.Outcome = tracking.OutcomeExhausted
		c.logExhausted(ctx, plan, attempts, traceID)
	case resp.Stats.GotNothing:
		result.Outcome = tracking.OutcomeGotNothing
	default:
		result.Outcome = tracking.OutcomeSuccess
	}

	c.logResponse(resp, traceID)
	return resp, nil
}

// run drives the attempt loop. Only refused connections are retried; every other
// failure is wrapped in backoff.Permanent and ends the loop at once.
func (c *client) run(ctx context.Context, plan *requestPlan, traceID string) (*Response, int, error) {
	attempts := 0

	operation := func() (*Response, error) {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(c.executionError(plan, err))
			}
		}

		resp, kind, err := c.attempt(ctx, plan, traceID)
		switch kind {
		case failureConnect:
			return nil, err
		case failureFatal:
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}

	notify := func(err error, next time.Duration) {
		tracking.RecordConnectRetry(ctx, plan.method)
		tracking.AddRetryEvent(trace.SpanFromContext(ctx), attempts, err)
		c.logRetry(ctx, plan, attempts, next, err, traceID)
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(plan.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return resp, attempts, nil
	}

	// Retry unwraps PermanentError itself except on the final allowed try
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	// A refused connection is never surfaced, whichever way the policy stopped
	if IsConnectFailure(err) {
		return &Response{
			Headers: nethttp.Header{},
			Body:    []byte{},
			Stats:   Stats{Completed: false},
		}, attempts, nil
	}

	if ce, ok := err.(ClientError); ok {
		return nil, attempts, ce
	}

	// Context cancelled while waiting between attempts
	return nil, attempts, c.executionError(plan, err)
}

func (c *client) newBackOff() backoff.BackOff {
	if c.config.BackOff != nil {
		return c.config.BackOff
	}
	return backoff.NewConstantBackOff(c.config.RetryDelay)
}

// attempt performs one network call. The response body is drained and closed before
// returning on every path.
func (c *client) attempt(ctx context.Context, plan *requestPlan, traceID string) (*Response, failureKind, error) {
	attemptCtx := ctx
	if plan.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, plan.timeout)
		defer cancel()
	}

	req, err := plan.newHTTPRequest(attemptCtx)
	if err != nil {
		return nil, failureFatal, err
	}

	if err := c.runRequestInterceptors(ctx, req); err != nil {
		return nil, failureFatal, NewInterceptorError("request interceptor failed", "request", err)
	}

	c.logRequest(req, plan.body, traceID)

	httpResp, err := c.clientFor(plan).Do(req)
	if err != nil {
		return c.transportFailure(plan, err)
	}
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, req, httpResp); err != nil {
		return nil, failureFatal, NewInterceptorError("response interceptor failed", "response", err)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil && classifyTransportError(err) != failureGotNothing {
		return nil, failureFatal, c.executionError(plan, c.timeoutCause(plan, err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bytes.TrimSpace(raw),
		Headers:    httpResp.Header,
		Stats: Stats{
			Completed:     true,
			ContentType:   httpResp.Header.Get(headerContentType),
			Proto:         httpResp.Proto,
			ContentLength: int64(len(raw)),
		},
	}
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		resp.Stats.EffectiveURL = httpResp.Request.URL.String()
	}
	return resp, failureNone, nil
}

// transportFailure classifies a failed round trip. An empty reply counts as success.
func (c *client) transportFailure(plan *requestPlan, err error) (*Response, failureKind, error) {
	switch classifyTransportError(err) {
	case failureGotNothing:
		return &Response{
			Headers: nethttp.Header{},
			Body:    []byte{},
			Stats:   Stats{Completed: true, GotNothing: true},
		}, failureNone, nil
	case failureConnect:
		return nil, failureConnect, newConnectError(err)
	default:
		return nil, failureFatal, c.executionError(plan, c.timeoutCause(plan, err))
	}
}

func (c *client) timeoutCause(plan *requestPlan, err error) error {
	if !isTimeout(err) {
		return err
	}
	return &timeoutError{
		message: err.Error(),
		timeout: plan.timeout,
		wrapped: err,
	}
}

func (c *client) executionError(plan *requestPlan, cause error) ClientError {
	return NewExecutionError(plan.command, plan.url, plan.paramsJSON, cause)
}

func (c *client) clientFor(plan *requestPlan) *nethttp.Client {
	if plan.followRedirects {
		return c.followClient
	}
	return c.directClient
}

// runRequestInterceptors executes all request interceptors
func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes all response interceptors
func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}
