// backend/shared/go-utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors shared by the listings services.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMissingID        = errors.New("missing id")
	ErrMissingFields    = errors.New("missing required fields: title, price, status, priceUnit")
	ErrEmptyUpload      = errors.New("No file data received")
	ErrAddressTooShort  = errors.New("Address must be at least 3 characters long")
	ErrNoCoordinates    = errors.New("No coordinates found for this address")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// AppError carries the HTTP outcome of a failed service call to the controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewClientError builds a 400 AppError.
func NewClientError(code, message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: code, Message: message, Err: err}
}

func NewNotFoundError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: message, Err: err}
}

// NewUpstreamError builds a 500 AppError. The underlying message is kept in
// the public message so callers can diagnose storage or third-party failures.
func NewUpstreamError(prefix string, err error) *AppError {
	msg := prefix
	if err != nil {
		msg = prefix + ": " + err.Error()
	}
	return &AppError{StatusCode: http.StatusInternalServerError, Code: ErrCodeExternalServiceFailure, Message: msg, Err: err}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
