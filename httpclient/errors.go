package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ClientError represents the typed errors returned by the WebDriver transport
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	NetworkError     ErrorType = "network"
	TimeoutError     ErrorType = "timeout"
	HTTPError        ErrorType = "http"
	ValidationError  ErrorType = "validation"
	InterceptorError ErrorType = "interceptor"
	// ExecutionError is a fatal transport failure: anything other than a refused
	// connection or an empty reply.
	ExecutionError ErrorType = "execution"
)

const (
	msgCouldNotConnect = "could not connect"
	executionErrorKind = "Transport"
)

// networkError represents network-related errors
type networkError struct {
	message string
	wrapped error
	connect bool
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType {
	return NetworkError
}

func (e *networkError) Unwrap() error {
	return e.wrapped
}

// timeoutError represents timeout-related errors
type timeoutError struct {
	message string
	timeout time.Duration
	wrapped error
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType {
	return TimeoutError
}

func (e *timeoutError) Unwrap() error {
	return e.wrapped
}

// httpError represents HTTP status-related errors
type httpError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType {
	return HTTPError
}

func (e *httpError) StatusCode() int {
	return e.statusCode
}

func (e *httpError) Body() []byte {
	return e.body
}

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

// interceptorError represents interceptor-related errors
type interceptorError struct {
	message string
	wrapped error
	stage   string
}

func (e *interceptorError) Error() string {
	return fmt.Sprintf("interceptor error: %s (stage: %s): %v", e.message, e.stage, e.wrapped)
}

func (e *interceptorError) Type() ErrorType {
	return InterceptorError
}

func (e *interceptorError) Unwrap() error {
	return e.wrapped
}

// executionError is raised when a WebDriver command fails at the transport level.
// The message names the command so callers can tell which call in a test broke.
type executionError struct {
	method  string
	url     string
	params  []byte
	wrapped error
}

func (e *executionError) Error() string {
	msg := fmt.Sprintf("%s error thrown for http %s to %s", executionErrorKind, e.method, e.url)
	if len(e.params) > 0 {
		msg += " with params: " + string(e.params)
	}
	if e.wrapped != nil {
		msg += "\n\n" + e.wrapped.Error()
	}
	return msg
}

func (e *executionError) Type() ErrorType {
	return ExecutionError
}

func (e *executionError) Unwrap() error {
	return e.wrapped
}

// Method returns the HTTP method of the failed command
func (e *executionError) Method() string { return e.method }

// URL returns the target of the failed command
func (e *executionError) URL() string { return e.url }

// Params returns the JSON-encoded parameters of the failed command, if any
func (e *executionError) Params() []byte { return e.params }

// NewNetworkError creates a new network error
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{
		message: message,
		wrapped: wrapped,
	}
}

// newConnectError marks a refused or unreachable connection, the only retryable failure
func newConnectError(wrapped error) ClientError {
	return &networkError{
		message: msgCouldNotConnect,
		wrapped: wrapped,
		connect: true,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &timeoutError{
		message: message,
		timeout: timeout,
	}
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{
		message:    message,
		statusCode: statusCode,
		body:       body,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{
		message: message,
		field:   field,
	}
}

// NewInterceptorError creates a new interceptor error
func NewInterceptorError(message, stage string, wrapped error) ClientError {
	return &interceptorError{
		message: message,
		wrapped: wrapped,
		stage:   stage,
	}
}

// NewExecutionError creates the fatal transport error for a command. params is the
// JSON form of the command parameters and may be nil.
func NewExecutionError(method, url string, params []byte, wrapped error) ClientError {
	return &executionError{
		method:  method,
		url:     url,
		params:  params,
		wrapped: wrapped,
	}
}

// IsErrorType reports whether any error in err's chain is a ClientError of errorType
func IsErrorType(err error, errorType ErrorType) bool {
	for err != nil {
		if clientErr, ok := err.(ClientError); ok && clientErr.Type() == errorType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsHTTPStatusError checks if an error is an HTTP error with a specific status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode() == statusCode
	}
	return false
}

// IsConnectFailure reports whether err is a refused or unreachable connection
func IsConnectFailure(err error) bool {
	var netErr *networkError
	return errors.As(err, &netErr) && netErr.connect
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
