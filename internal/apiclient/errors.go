package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is matched by every 401 response.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ValidationError is returned before any request is sent.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return "invalid request: " + e.Detail }

// DetailOf returns the user-facing message carried by err, or fallback.
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Detail
	}
	return fallback
}
