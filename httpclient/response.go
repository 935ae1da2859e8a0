package httpclient

import (
	"encoding/json"
	"fmt"
)

// Info keys mirror the transfer metadata a curl-based client exposes
const (
	InfoURL          = "url"
	InfoHTTPCode     = "http_code"
	InfoContentType  = "content_type"
	InfoTotalTime    = "total_time"
	InfoSizeDownload = "size_download"
	InfoAttempts     = "attempts"
	InfoCompleted    = "completed"
	InfoProtocol     = "protocol"
	InfoRequestID    = "request_id"
)

// RawBody returns the whitespace-trimmed body as a string
func (r *Response) RawBody() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Info returns the transport metadata as a flat mapping. total_time is in seconds.
func (r *Response) Info() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	return map[string]any{
		InfoURL:          r.Stats.EffectiveURL,
		InfoHTTPCode:     r.StatusCode,
		InfoContentType:  r.Stats.ContentType,
		InfoTotalTime:    r.Stats.ElapsedTime.Seconds(),
		InfoSizeDownload: r.Stats.ContentLength,
		InfoAttempts:     r.Stats.Attempts,
		InfoCompleted:    r.Stats.Completed,
		InfoProtocol:     r.Stats.Proto,
		InfoRequestID:    r.Stats.RequestID,
	}
}

// Decode unmarshals the body into v
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return NewValidationError("response body is empty", "body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return NewValidationError(fmt.Sprintf("response body is not valid JSON: %v", err), "body")
	}
	return nil
}

// Value unmarshals the "value" member of a W3C WebDriver reply into v
func (r *Response) Value(v any) error {
	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := r.Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Value) == 0 {
		return NewValidationError("response has no value member", "value")
	}
	if err := json.Unmarshal(envelope.Value, v); err != nil {
		return NewValidationError(fmt.Sprintf("value member cannot be decoded: %v", err), "value")
	}
	return nil
}

// Err converts a non-2xx reply into an HTTPError carrying the W3C error code when the
// body has one. The executor never does this itself.
func (r *Response) Err() error {
	if r == nil || IsSuccessStatus(r.StatusCode) {
		return nil
	}

	message := fmt.Sprintf("WebDriver command failed with status %d", r.StatusCode)
	var reply struct {
		Value struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		} `json:"value"`
	}
	if json.Unmarshal(r.Body, &reply) == nil && reply.Value.Error != "" {
		message = reply.Value.Error
		if reply.Value.Message != "" {
			message += ": " + reply.Value.Message
		}
	}
	return NewHTTPError(message, r.StatusCode, r.Body)
}
