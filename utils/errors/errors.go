package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotFound     = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrConflict     = NewAPIError("CONFLICT", "Resource already exists", http.StatusConflict)
	ErrInternal     = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)

	// ErrGeocodeFailed is the user-facing outcome when a postal code does
	// not resolve to a coordinate.
	ErrGeocodeFailed = NewAPIError("GEOCODE_FAILED", "Invalid zip code. Please try again.", http.StatusUnprocessableEntity)
	// ErrNoPlacesFound is the user-facing outcome when a search succeeds
	// but returns nothing.
	ErrNoPlacesFound = NewAPIError("SEARCH_FAILED", "No coffee shops found in this area.", http.StatusUnprocessableEntity)
)

// SearchFailed wraps an upstream search failure with its reason.
func SearchFailed(reason string) *APIError {
	return NewAPIError("SEARCH_FAILED", fmt.Sprintf("Search failed: %s", reason), http.StatusUnprocessableEntity)
}

// Reason extracts the human-readable part of an error for message building.
func Reason(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Message
	}
	return err.Error()
}

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}
