// Package netutil classifies transport errors from calls to the Bot API.
package netutil

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// ShouldRetry reports whether err is a transient transport failure: a
// timeout, a failed dial, a DNS miss or a connection dropped mid-flight.
// Cancellation by the caller is never retried.
func ShouldRetry(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case Unsent(err):
		return true
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Unsent reports whether err proves the request never reached the server,
// which makes even a non-idempotent call such as sendMediaGroup safe to repeat.
func Unsent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
