package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	post := func(err error) error {
		return &url.Error{Op: "Post", URL: "https://api.telegram.org/bot/sendMessage", Err: err}
	}
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"canceled", post(context.Canceled), false},
		{"deadline", post(context.DeadlineExceeded), true},
		{"timeout", post(timeoutErr{}), true},
		{"dial", post(&net.OpError{Op: "dial", Err: errors.New("refused")}), true},
		{"dns", post(&net.DNSError{Name: "api.telegram.org"}), true},
		{"reset", post(&net.OpError{Op: "read", Err: syscall.ECONNRESET}), true},
		{"eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), true},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Errorf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUnsent(t *testing.T) {
	if !Unsent(&net.OpError{Op: "dial", Err: errors.New("x")}) {
		t.Fatal("dial error must count as unsent")
	}
	if !Unsent(fmt.Errorf("wrap: %w", syscall.ECONNREFUSED)) {
		t.Fatal("refused connection must count as unsent")
	}
	if Unsent(&net.OpError{Op: "read", Err: syscall.ECONNRESET}) {
		t.Fatal("reset after write may have reached the server")
	}
	if Unsent(nil) {
		t.Fatal("nil is not an error")
	}
}
