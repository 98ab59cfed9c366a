package telegram

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/postbot/core/telegram/netutil"
)

// ClientOptions tunes the Bot API HTTP client. Zero values select defaults.
type ClientOptions struct {
	// PollTimeout is the long polling timeout passed to getUpdates. The
	// server holds that request open this long, so response deadlines are
	// derived from it.
	PollTimeout time.Duration
	// Retries is the number of extra round trips after a network failure (2).
	Retries int
	// Backoff is multiplied by the attempt number between round trips (1s).
	Backoff time.Duration
}

// BuildHTTPClient returns an HTTP client for Bot API calls.
func BuildHTTPClient(opts ClientOptions) *http.Client {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultLongPollTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = 2
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: opts.PollTimeout + 10*time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   opts.PollTimeout + 20*time.Second,
		Transport: &retryTransport{base: transport, maxRetries: opts.Retries, backoff: opts.Backoff},
	}
}

// retryTransport repeats round trips that failed at the network level.
// Calls that post content are repeated only when the request provably
// never left, so a channel post is not duplicated by a timeout after
// Telegram accepted it.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for n := 1; err != nil && n <= t.maxRetries && retryable(req, err); n++ {
		if !wait(req.Context(), t.backoff*time.Duration(n)) {
			return nil, req.Context().Err()
		}
		next, rewindErr := rewind(req)
		if rewindErr != nil {
			return nil, err
		}
		resp, err = t.base.RoundTrip(next)
	}
	return resp, err
}

// rewind clones req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	if req.GetBody == nil {
		return nil, errNoRewind
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}

var errNoRewind = errors.New("telegram: request body cannot be replayed")

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func retryable(req *http.Request, err error) bool {
	if postsContent(req) {
		return netutil.Unsent(err)
	}
	return netutil.ShouldRetry(err)
}

// postsContent reports whether req is a Bot API method that creates a message.
func postsContent(req *http.Request) bool {
	if req == nil || req.URL == nil {
		return false
	}
	path := req.URL.Path
	method := path[strings.LastIndexByte(path, '/')+1:]
	return strings.HasPrefix(method, "send") || method == "copyMessage" || method == "forwardMessage"
}
