package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the API.
type Error struct {
	// Operation that failed, e.g. "ListRunners"
	Operation  string
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s failed (%d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed (%d %s): %s", e.Operation, e.StatusCode, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 from the API.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == status
	}
	return false
}
