package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// failureKind is the outcome class of a single transport attempt
type failureKind int

const (
	failureNone failureKind = iota
	// failureGotNothing: the remote end closed the connection without sending a reply.
	// Treated as success with an empty body.
	failureGotNothing
	// failureConnect: the connection was refused or the host was unreachable. Retryable.
	failureConnect
	// failureFatal: everything else, including DNS, TLS and timeouts.
	failureFatal
)

func (k failureKind) String() string {
	switch k {
	case failureNone:
		return "none"
	case failureGotNothing:
		return "got_nothing"
	case failureConnect:
		return "connect"
	default:
		return "fatal"
	}
}

// classifyTransportError maps an error returned by http.Client.Do (or by reading the
// response body) onto the retry policy.
func classifyTransportError(err error) failureKind {
	if err == nil {
		return failureNone
	}

	if isTimeout(err) || errors.Is(err, context.Canceled) {
		return failureFatal
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return failureFatal
	}

	if errors.Is(err, io.EOF) {
		return failureGotNothing
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return failureConnect
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return failureConnect
	}

	return failureFatal
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
