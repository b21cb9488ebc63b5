package printer

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput reports a printer address that cannot become a URL.
	ErrInvalidInput = errors.New("invalid printer address")

	// ErrTimeout reports a request that did not finish within its timeout.
	ErrTimeout = errors.New("printer request timed out")

	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("printer unreachable")
)

// NetworkError wraps a connection-level failure (refused, unreachable, DNS).
type NetworkError struct {
	URL   string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// HTTPStatusError is returned when the printer answers with a non-2xx status.
type HTTPStatusError struct {
	URL  string
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}
