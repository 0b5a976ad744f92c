package platform

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("platform rejected the API token")
	ErrNotFound     = errors.New("platform entity not found")
)

// APIError is returned for every non-200 platform response
type APIError struct {
	Method     string
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("platform API error (%s, %d)", e.Method, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " - " + e.Details
	}
	return msg
}

// Unwrap lets errors.Is match ErrUnauthorized and ErrNotFound by status code
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}
