package fmi

import (
	"errors"
	"fmt"
)

// ErrNoDataAvailable is returned when a query matched no place, no station,
// or only stations whose observations were all blank.
var ErrNoDataAvailable = errors.New("fmi: no weather data available")

// ClientError means FMI rejected the request itself (unknown place, bad
// coordinates, malformed parameters).
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("fmi: client error [%d]: %s", e.StatusCode, e.Message)
}

// ServerError is an upstream failure. The body is kept verbatim.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("fmi: server error [%d]: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the caller may retry the request with backoff.
func (e *ServerError) Retryable() bool {
	return true
}

// DecodeError means the response did not have the expected coverage
// document structure.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fmi: decode: %s: %v", e.Reason, e.Err)
	}
	return "fmi: decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErrorf(err error, format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Err: err}
}
