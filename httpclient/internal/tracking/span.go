// Package tracking records OpenTelemetry spans and metrics for WebDriver commands.
package tracking

import (
	"context"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "webdriver-bricks/httpclient"

	attrCommandAttempts  = "webdriver.command.attempts"
	attrCommandCompleted = "webdriver.command.completed"
	attrCommandOutcome   = "webdriver.command.outcome"
	attrRequestID        = "webdriver.request_id"

	// Outcome values shared by spans and metrics
	OutcomeSuccess    = "success"
	OutcomeGotNothing = "got_nothing"
	OutcomeExhausted  = "exhausted"
	OutcomeError      = "error"
)

// CommandResult summarises a finished command for span and metric recording
type CommandResult struct {
	StatusCode int
	Attempts   int
	Completed  bool
	Outcome    string
	RequestID  string
	// ErrorType is the ClientError type of a failed command, empty otherwise
	ErrorType string
	Err       error
}

// StartCommandSpan starts a client span named after the HTTP method, matching the
// OTel HTTP client convention.
func StartCommandSpan(ctx context.Context, method, rawURL string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(requestAttributes(method, rawURL)...),
	)
}

// EndCommandSpan annotates span with the command result and ends it
func EndCommandSpan(span trace.Span, res CommandResult) {
	if span == nil {
		return
	}
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.Int(attrCommandAttempts, res.Attempts),
		attribute.Bool(attrCommandCompleted, res.Completed),
		attribute.String(attrCommandOutcome, res.Outcome),
	}
	if res.StatusCode > 0 {
		attrs = append(attrs, semconv.HTTPResponseStatusCode(res.StatusCode))
	}
	if res.RequestID != "" {
		attrs = append(attrs, attribute.String(attrRequestID, res.RequestID))
	}
	if res.ErrorType != "" {
		attrs = append(attrs, semconv.ErrorTypeKey.String(res.ErrorType))
	}
	span.SetAttributes(attrs...)

	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		return
	}
	if res.StatusCode >= 500 {
		span.SetStatus(codes.Error, strconv.Itoa(res.StatusCode))
	}
}

// AddRetryEvent marks a refused connection attempt on the span
func AddRetryEvent(span trace.Span, attempt int, err error) {
	if span == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.Int("attempt", attempt)}
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	span.AddEvent("connect_retry", trace.WithAttributes(attrs...))
}

func requestAttributes(method, rawURL string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(method),
		semconv.URLFull(redactURL(rawURL)),
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return attrs
	}
	if host := u.Hostname(); host != "" {
		attrs = append(attrs, semconv.ServerAddress(host))
	}
	if port := u.Port(); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			attrs = append(attrs, semconv.ServerPort(p))
		}
	}
	return attrs
}

// redactURL drops userinfo; grid URLs often embed access keys
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}
