package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	testConnectionFailed = "connection failed"
	testSessionURL       = "http://grid:4444/session"
)

func TestErrorTypeFormatting(t *testing.T) {
	tests := []struct {
		name     string
		error    ClientError
		contains []string
	}{
		{
			name:     "network error without wrapped error",
			error:    NewNetworkError(testConnectionFailed, nil),
			contains: []string{"network error", testConnectionFailed},
		},
		{
			name:     "network error with wrapped error",
			error:    NewNetworkError(testConnectionFailed, errors.New("underlying issue")),
			contains: []string{"network error", testConnectionFailed, "underlying issue"},
		},
		{
			name:     "timeout error",
			error:    NewTimeoutError("command timeout", 60*time.Second),
			contains: []string{"timeout error", "command timeout", "1m0s"},
		},
		{
			name:     "http error",
			error:    NewHTTPError("no such element", 404, []byte(`{"value":{}}`)),
			contains: []string{"HTTP error", "no such element", "404"},
		},
		{
			name:     "validation error with field",
			error:    NewValidationError("URL must be absolute", "url"),
			contains: []string{"validation error", "URL must be absolute", "url"},
		},
		{
			name:     "validation error without field",
			error:    NewValidationError("invalid request", ""),
			contains: []string{"validation error", "invalid request"},
		},
		{
			name:     "interceptor error",
			error:    NewInterceptorError("processing failed", "request", errors.New("signing error")),
			contains: []string{"interceptor error", "processing failed", "request", "signing error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.error.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestExecutionErrorMessage(t *testing.T) {
	t.Run("with params", func(t *testing.T) {
		err := NewExecutionError("POST", testSessionURL, []byte(`{"desiredCapabilities":{}}`), errors.New("tls: handshake failure"))
		assert.Equal(t,
			"Transport error thrown for http POST to "+testSessionURL+` with params: {"desiredCapabilities":{}}`+"\n\ntls: handshake failure",
			err.Error())
	})

	t.Run("without params", func(t *testing.T) {
		err := NewExecutionError("DELETE", testSessionURL+"/abc", nil, errors.New("boom"))
		assert.Equal(t, "Transport error thrown for http DELETE to "+testSessionURL+"/abc\n\nboom", err.Error())
	})

	t.Run("accessors", func(t *testing.T) {
		err := NewExecutionError("PUT", testSessionURL, []byte(`[1]`), nil)
		var execErr *executionError
		assert.True(t, errors.As(err, &execErr))
		assert.Equal(t, "PUT", execErr.Method())
		assert.Equal(t, testSessionURL, execErr.URL())
		assert.Equal(t, []byte(`[1]`), execErr.Params())
		assert.Equal(t, "Transport error thrown for http PUT to "+testSessionURL+" with params: [1]", err.Error())
	})
}

func TestErrorTypeIdentification(t *testing.T) {
	tests := []struct {
		err      ClientError
		expected ErrorType
	}{
		{NewNetworkError("x", nil), NetworkError},
		{newConnectError(nil), NetworkError},
		{NewTimeoutError("x", time.Second), TimeoutError},
		{NewHTTPError("x", 500, nil), HTTPError},
		{NewValidationError("x", "f"), ValidationError},
		{NewInterceptorError("x", "response", nil), InterceptorError},
		{NewExecutionError("GET", testSessionURL, nil, nil), ExecutionError},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Type())
			assert.True(t, IsErrorType(tt.err, tt.expected))
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	root := errors.New("root cause")

	assert.ErrorIs(t, NewNetworkError("x", root), root)
	assert.ErrorIs(t, NewInterceptorError("x", "request", root), root)
	assert.ErrorIs(t, NewExecutionError("GET", testSessionURL, nil, root), root)
	assert.ErrorIs(t, &timeoutError{message: "x", wrapped: root}, root)
	assert.NoError(t, errors.Unwrap(NewTimeoutError("x", time.Second)))
}

func TestErrorChaining(t *testing.T) {
	timeout := NewTimeoutError("deadline", time.Second)
	exec := NewExecutionError("GET", testSessionURL, nil, timeout)
	wrapped := fmt.Errorf("navigating: %w", exec)

	assert.True(t, IsErrorType(wrapped, ExecutionError))
	assert.True(t, IsErrorType(wrapped, TimeoutError))
	assert.False(t, IsErrorType(wrapped, NetworkError))
	assert.False(t, IsErrorType(nil, ExecutionError))
}

func TestHTTPErrorHelpers(t *testing.T) {
	err := NewHTTPError("stale element reference", 404, []byte("body"))

	var httpErr *httpError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.StatusCode())
	assert.Equal(t, []byte("body"), httpErr.Body())

	assert.True(t, IsHTTPStatusError(err, 404))
	assert.False(t, IsHTTPStatusError(err, 500))
	assert.False(t, IsHTTPStatusError(errors.New("plain"), 404))

	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(204))
	assert.False(t, IsSuccessStatus(302))
	assert.False(t, IsSuccessStatus(500))
}

func TestIsConnectFailure(t *testing.T) {
	assert.True(t, IsConnectFailure(newConnectError(syscall.ECONNREFUSED)))
	assert.True(t, IsConnectFailure(fmt.Errorf("wrapped: %w", newConnectError(nil))))
	assert.False(t, IsConnectFailure(NewNetworkError(testConnectionFailed, nil)))
	assert.False(t, IsConnectFailure(errors.New(testConnectionFailed)))
}

type fakeNetTimeout struct{}

func (fakeNetTimeout) Error() string   { return "i/o timeout" }
func (fakeNetTimeout) Timeout() bool   { return true }
func (fakeNetTimeout) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	dialRefused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name     string
		err      error
		expected failureKind
	}{
		{name: "nil", err: nil, expected: failureNone},
		{name: "connection refused", err: dialRefused, expected: failureConnect},
		{name: "host unreachable", err: fmt.Errorf("post: %w", syscall.EHOSTUNREACH), expected: failureConnect},
		{name: "network unreachable", err: syscall.ENETUNREACH, expected: failureConnect},
		{name: "other dial failure", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("socket: too many open files")}, expected: failureConnect},
		{name: "empty reply", err: fmt.Errorf("Post %q: %w", testSessionURL, io.EOF), expected: failureGotNothing},
		{name: "dns failure", err: &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "grid"}}, expected: failureFatal},
		{name: "dial timeout", err: &net.OpError{Op: "dial", Net: "tcp", Err: fakeNetTimeout{}}, expected: failureFatal},
		{name: "connection reset on read", err: &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, expected: failureFatal},
		{name: "tls failure", err: errors.New("tls: failed to verify certificate"), expected: failureFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyTransportError(tt.err))
		})
	}
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "none", failureNone.String())
	assert.Equal(t, "got_nothing", failureGotNothing.String())
	assert.Equal(t, "connect", failureConnect.String())
	assert.Equal(t, "fatal", failureFatal.String())
}
