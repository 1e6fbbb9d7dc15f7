package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vtscan/internal/logging"
)

// DefaultBodyLimit caps how much of an API response is read into memory.
const DefaultBodyLimit int64 = 10 << 20

// New returns an http.Client configured for outbound API calls.
//
// A timeout <= 0 leaves the client without a global deadline; callers are
// then expected to bound each request through its context. File uploads can
// carry hundreds of megabytes, so one global timeout does not fit every
// operation.
func New(timeout time.Duration, logger logging.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: WrapTransportWithLogging(Transport(), logger),
	}
}

// Transport returns an http.Transport clone suitable for outbound calls.
// Proxy settings from the environment are honored.
func Transport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{}
	}
	return base.Clone()
}

// ResponseTooLargeError reports that the response body exceeded the limit.
type ResponseTooLargeError struct {
	Limit int64
}

func (e ResponseTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeded limit of %d bytes", e.Limit)
}

// IsResponseTooLarge reports whether the error indicates a response limit violation.
func IsResponseTooLarge(err error) bool {
	var limitErr ResponseTooLargeError
	return errors.As(err, &limitErr)
}

// ReadAllWithLimit reads the response body up to the provided limit.
// If limit <= 0, it behaves like io.ReadAll.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	lr := &io.LimitedReader{R: r, N: limit + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ResponseTooLargeError{Limit: limit}
	}
	return data, nil
}
