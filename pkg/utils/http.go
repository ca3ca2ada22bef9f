// Package utils provides common utility functions.
package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultUserAgent identifies outbound requests.
const DefaultUserAgent = "aipost/1.0"

// ErrUnexpectedStatusCode is wrapped by every StatusError.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// StatusError is returned when a remote API answers with a non-success status.
// Body holds the response body verbatim.
type StatusError struct {
	Op         string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d - %s", e.Op, e.StatusCode, e.Body)
}

// Unwrap lets callers match with errors.Is(err, ErrUnexpectedStatusCode).
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatusCode
}

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct {
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper.
func NewHTTPHelper(userAgent string) *HTTPHelper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPHelper{userAgent: userAgent}
}

// BuildHeaders creates HTTP headers with defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Set("User-Agent", h.userAgent)
	headers.Set("Accept", "application/json")

	// Custom headers win over defaults
	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// ReadBody reads at most limit bytes of the response body.
func ReadBody(resp *http.Response, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// IsSuccess reports whether status is one of the accepted codes.
func IsSuccess(status int, accepted ...int) bool {
	for _, code := range accepted {
		if status == code {
			return true
		}
	}

	return false
}
