// Package transport provides http.RoundTripper wrappers for upstream provider calls.
package transport

import (
	"log"
	"net/http"
	"time"

	"github.com/cchalm/relaychat/internal/telemetry"
)

// LoggingTransport logs one line per upstream call with its status and latency. Only the method, host and path of
// the request are logged; headers and bodies carry credentials and conversation text. It makes exactly one attempt
// per request
type LoggingTransport struct {
	base http.RoundTripper
	logf func(format string, args ...any)
	now  func() time.Time
}

func WithLogging(base http.RoundTripper) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{base: base, logf: log.Printf, now: time.Now}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := t.now()
	requestID := telemetry.RequestID(req.Context())

	resp, err := t.base.RoundTrip(req)
	elapsed := t.now().Sub(start)
	if err != nil {
		t.logf("[%s] upstream %s %s%s failed after %s: %v", requestID, req.Method, req.URL.Host, req.URL.Path, elapsed, err)
		return resp, err
	}

	t.logf("[%s] upstream %s %s%s -> %d in %s", requestID, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, elapsed)
	if resp.StatusCode == http.StatusTooManyRequests {
		if retryAfter := resp.Header.Get("retry-after"); retryAfter != "" {
			t.logf("[%s] upstream rate limited, retry-after %s", requestID, retryAfter)
		}
	}
	return resp, nil
}

// NewHTTPClient returns a client for provider SDKs that logs each upstream call. A zero timeout means none; the
// caller's context still bounds every request
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: WithLogging(nil),
		Timeout:   timeout,
	}
}
