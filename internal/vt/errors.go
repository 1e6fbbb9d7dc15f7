package vt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound reports that VirusTotal has no record of the hash.
var ErrNotFound = errors.New("file not found in VirusTotal database")

const maxErrorBody = 512

// APIError reports a non-success HTTP status from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func newAPIError(statusCode int, body []byte) *APIError {
	b := strings.TrimSpace(string(body))
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody] + "... (truncated)"
	}
	return &APIError{StatusCode: statusCode, Body: b}
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("virustotal: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("virustotal: unexpected status %d: %s", e.StatusCode, e.Body)
}

// RequestError wraps a transport-level failure (DNS, TLS, refused or reset
// connections) so callers can tell it apart from an API rejection.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("virustotal: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that an analysis stayed unfinished past the wait
// ceiling. The analysis keeps running server-side; only the wait ended.
type TimeoutError struct {
	AnalysisID string
	Waited     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis timeout after %s - file is still being processed", e.Waited.Round(time.Second))
}

// ParseError reports a response that was not JSON or did not carry the
// expected shape.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("virustotal: malformed response: %s", e.Reason)
}

// IsNotFound reports whether err means the hash is unknown to VirusTotal.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout reports whether err is an analysis wait timeout.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsRequestError reports whether err was a transport failure rather than an
// API response.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}
