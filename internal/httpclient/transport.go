package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"vtscan/internal/logging"
)

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logging.Logger
}

// WrapTransportWithLogging wraps a transport so every request emits a debug
// line with method, URL, status and timing. Request headers are never logged,
// which keeps the API key out of the transport trace.
func WrapTransportWithLogging(base http.RoundTripper, logger logging.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if logging.IsNil(logger) {
		return base
	}
	return &loggingRoundTripper{base: base, logger: logger}
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		t.logger.Debug("http %s %s failed after %s: %v", req.Method, req.URL.Redacted(), elapsed, err)
		return nil, err
	}
	t.logger.Debug("http %s %s -> %d in %s", req.Method, req.URL.Redacted(), resp.StatusCode, elapsed)
	return resp, nil
}
