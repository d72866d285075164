// Package churchtools provides an HTTP client for the ChurchTools REST API
// with session authentication, automatic retry, rate limiting, pagination,
// and error classification.
package churchtools

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, churchtools.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("churchtools: bad request")
	ErrUnauthorized = errors.New("churchtools: unauthorized")
	ErrForbidden    = errors.New("churchtools: forbidden")
	ErrNotFound     = errors.New("churchtools: not found")
	ErrThrottled    = errors.New("churchtools: throttled")
	ErrServerError  = errors.New("churchtools: server error")

	// ErrAuthFailed means neither the persisted session nor the standing
	// login token produced a usable session. Fatal for the current pass.
	ErrAuthFailed = errors.New("churchtools: authentication failed")
)

// APIError wraps a sentinel error with HTTP status code and the API error
// message body for debugging.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	return fmt.Sprintf("churchtools: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// isRetryable reports whether the given HTTP status code should be retried.
func isRetryable(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
