package fetch

import (
	"errors"
	"fmt"
)

// ErrNetwork indicates a transport-level failure (DNS, connect,
// timeout) before any status code was received.
var ErrNetwork = errors.New("network error")

// bodyExcerptLen caps how much of an upstream error body is carried in
// diagnostics.
const bodyExcerptLen = 1000

// StatusError is returned when an upstream call completes with a
// non-200 status. It carries the original status code and a truncated
// body excerpt for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// AsStatusError returns the StatusError wrapped in err, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// excerpt truncates an upstream body for inclusion in a StatusError.
func excerpt(body []byte) string {
	if len(body) > bodyExcerptLen {
		body = body[:bodyExcerptLen]
	}
	return string(body)
}
