package httpclient

import (
	"context"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"
)

const (
	msgRequest   = "WebDriver request"
	msgResponse  = "WebDriver response"
	msgRetry     = "WebDriver connection refused, retrying"
	msgExhausted = "WebDriver connection attempts exhausted"
	msgFailure   = "WebDriver command failed"
)

// logRequest logs the outgoing attempt. Payloads go to a separate debug event.
func (c *client) logRequest(req *nethttp.Request, body []byte, traceID string) {
	event := c.logger.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID)

	if len(req.Header) > 0 {
		event = event.Int("header_count", len(req.Header))
	}
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg(msgRequest)

	if !c.config.LogPayloads {
		return
	}

	preview, truncated := c.payloadPreview(body)
	c.logger.Debug().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("request_id", traceID).
		Interface("headers", flattenHeaders(req.Header)).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(msgRequest)
}

// logResponse logs the command outcome
func (c *client) logResponse(resp *Response, traceID string) {
	event := c.logger.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Str("request_id", traceID)

	if resp.Stats.Attempts > 1 {
		event = event.Int("attempts", resp.Stats.Attempts)
	}
	if resp.Stats.GotNothing {
		event = event.Str("got_nothing", "true")
	}
	if len(resp.Body) > 0 {
		event = event.Int("body_size", len(resp.Body))
	}
	event.Msg(msgResponse)

	if !c.config.LogPayloads {
		return
	}

	preview, truncated := c.payloadPreview(resp.Body)
	c.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Str("request_id", traceID).
		Interface("headers", flattenHeaders(resp.Headers)).
		Int("body_size", len(resp.Body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(msgResponse)
}

func (c *client) logRetry(ctx context.Context, plan *requestPlan, attempt int, next time.Duration, err error, traceID string) {
	c.logger.WithContext(ctx).Warn().
		Err(err).
		Str("method", plan.method).
		Str("url", plan.url).
		Str("request_id", traceID).
		Int("attempt", attempt).
		Int("max_attempts", plan.maxAttempts).
		Dur("retry_in", next).
		Msg(msgRetry)
}

func (c *client) logExhausted(ctx context.Context, plan *requestPlan, attempts int, traceID string) {
	c.logger.WithContext(ctx).Warn().
		Str("method", plan.method).
		Str("url", plan.url).
		Str("request_id", traceID).
		Int("attempts", attempts).
		Msg(msgExhausted)
}

func (c *client) logFailure(ctx context.Context, plan *requestPlan, attempts int, err error, traceID string) {
	c.logger.WithContext(ctx).Error().
		Err(err).
		Str("method", plan.method).
		Str("url", plan.url).
		Str("request_id", traceID).
		Int("attempts", attempts).
		Msg(msgFailure)
}

func (c *client) payloadPreview(body []byte) (preview []byte, truncated bool) {
	limit := c.config.MaxPayloadLogBytes
	if limit <= 0 {
		limit = DefaultMaxPayloadLogBytes
	}
	if len(body) > limit {
		return body[:limit], true
	}
	return body, false
}

// flattenHeaders joins multi-value headers so the logger's field filter sees plain strings
func flattenHeaders(h nethttp.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
