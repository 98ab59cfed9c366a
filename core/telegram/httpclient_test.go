package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type flakyTransport struct {
	err   error
	calls int
}

func (f *flakyTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	return nil, f.err
}

func roundTrip(t *testing.T, method string, err error) int {
	t.Helper()
	base := &flakyTransport{err: err}
	rt := &retryTransport{base: base, maxRetries: 2}
	req, reqErr := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/"+method, nil)
	if reqErr != nil {
		t.Fatalf("new request: %v", reqErr)
	}
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatalf("%s: expected error", method)
	}
	return base.calls
}

func TestRetryTransportDoesNotRepeatDeliveredSends(t *testing.T) {
	readTimeout := &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}}

	if calls := roundTrip(t, "sendMediaGroup", readTimeout); calls != 1 {
		t.Fatalf("sendMediaGroup retried after read timeout: %d calls", calls)
	}
	if calls := roundTrip(t, "getUpdates", readTimeout); calls != 3 {
		t.Fatalf("getUpdates calls = %d, want 3", calls)
	}
}

func TestRetryTransportRepeatsUnsentSends(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	if calls := roundTrip(t, "sendMessage", dial); calls != 3 {
		t.Fatalf("sendMessage calls = %d, want 3", calls)
	}
}

func TestPostsContent(t *testing.T) {
	cases := map[string]bool{
		"/bot1:x/sendMessage":         true,
		"/bot1:x/sendMediaGroup":      true,
		"/bot1:x/copyMessage":         true,
		"/bot1:x/answerCallbackQuery": false,
		"/bot1:x/getUpdates":          false,
	}
	for path, want := range cases {
		req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org"+path, nil)
		if got := postsContent(req); got != want {
			t.Fatalf("postsContent(%s) = %v, want %v", path, got, want)
		}
	}
}

func TestBuildHTTPClientOutlastsLongPoll(t *testing.T) {
	client := BuildHTTPClient(ClientOptions{PollTimeout: 50 * time.Second})
	rt, ok := client.Transport.(*retryTransport)
	if !ok {
		t.Fatalf("transport = %T", client.Transport)
	}
	base := rt.base.(*http.Transport)
	if base.ResponseHeaderTimeout <= 50*time.Second || client.Timeout <= base.ResponseHeaderTimeout {
		t.Fatalf("header timeout %v, client timeout %v", base.ResponseHeaderTimeout, client.Timeout)
	}
	if rt.maxRetries != 2 || rt.backoff != time.Second {
		t.Fatalf("retry defaults = %d %v", rt.maxRetries, rt.backoff)
	}
}

func TestRetryTransportReplaysBody(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	base := &bodyRecorder{failures: 1, err: dial}
	rt := &retryTransport{base: base, maxRetries: 2}
	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/sendMessage", strings.NewReader("chat_id=1"))
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(base.bodies) != 2 || base.bodies[1] != "chat_id=1" {
		t.Fatalf("bodies = %q", base.bodies)
	}
}

type bodyRecorder struct {
	failures int
	err      error
	bodies   []string
}

func (b *bodyRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	data, _ := io.ReadAll(req.Body)
	b.bodies = append(b.bodies, string(data))
	if len(b.bodies) <= b.failures {
		return nil, b.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
}
