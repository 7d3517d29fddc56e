// backend/shared/go-utils/response.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload         = "invalid_payload"
	ErrCodeValidation             = "validation_error"
	ErrCodeMissingFields          = "missing_fields"
	ErrCodeMissingID              = "missing_id"
	ErrCodeEmptyUpload            = "empty_upload"
	ErrCodeAddressTooShort        = "address_too_short"
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInternal               = "internal_server_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeMethodNotAllowed       = "method_not_allowed"
	ErrCodeExternalServiceFailure = "external_service_failure"
)

// ErrorResponse is the body of every failed request. `error` always carries
// the human readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode builds a JSON error response with a standard
// code and message. The optional `details` is included if non-nil.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errBody := ErrorResponse{
		Error: publicMessage,
		Code:  errorCode,
	}
	if details != nil {
		errBody.Details = details
	}
	_ = json.NewEncoder(w).Encode(errBody)

	// devErr is optional; only handle if provided
	entry := Logger.WithFields(logrus.Fields{"status": status})
	if len(devErrs) > 0 && devErrs[0] != nil {
		entry = entry.WithField("error", devErrs[0].Error())
	}
	if status >= http.StatusInternalServerError {
		entry.Error(publicMessage)
	} else {
		entry.Warn(publicMessage)
	}
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondEmpty writes a bodiless status, used for pre-flight requests.
func RespondEmpty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
