package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidArgument is returned before any network call when a request is
// malformed (non-positive page or size, non-positive id, bad aggregation
// bounds).
var ErrInvalidArgument = errors.New("invalid argument")

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures (no response).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents responses that do not match the expected shape.
	ErrorClassDecode ErrorClass = "decode"
)

// RequestFailedError is returned when the server answered with a
// non-success status.
type RequestFailedError struct {
	Status int
	Body   string
	URL    string
}

// Error implements the error interface.
func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("GET %s failed: %d %s", e.URL, e.Status, e.Body)
}

// Class returns the error class for the response status.
func (e *RequestFailedError) Class() ErrorClass {
	if e.Status >= 500 {
		return ErrorClassServer
	}
	return ErrorClassClient
}

// IsNotFound reports whether the server answered 404.
func (e *RequestFailedError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// DecodeFailedError is returned when a response body does not match the
// expected JSON shape.
type DecodeFailedError struct {
	URL    string
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *DecodeFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.URL, e.Detail, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.URL, e.Detail)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeFailedError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a RequestFailedError with status 404.
func IsNotFound(err error) bool {
	var reqErr *RequestFailedError
	return errors.As(err, &reqErr) && reqErr.IsNotFound()
}

// Classify returns the error class of err, or "" if err is not a request
// failure known to this package.
func Classify(err error) ErrorClass {
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.Class()
	}
	var decErr *DecodeFailedError
	if errors.As(err, &decErr) {
		return ErrorClassDecode
	}
	if err != nil && !errors.Is(err, ErrInvalidArgument) {
		return ErrorClassNetwork
	}
	return ""
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
