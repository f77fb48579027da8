package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeValidation         = "validation_error"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeTokenMissing       = "token_missing"
	ErrCodeTokenExpired       = "token_expired"
	ErrCodeTokenRevoked       = "token_revoked"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeInternal           = "internal_server_error"
)

// ErrorResponse is the body of every non-2xx response. Errors holds the
// ordered password-policy violations when there are any.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details any      `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// RespondErrorWithCode writes a JSON error body and logs it. devErrs are
// logged only, never sent to the client.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	writeError(w, status, ErrorResponse{Code: errorCode, Message: publicMessage, Details: details}, devErrs...)
}

// RespondErrorList is RespondErrorWithCode with a list of human-readable
// reasons attached under "errors".
func RespondErrorList(w http.ResponseWriter, status int, errorCode, publicMessage string, errs []string) {
	writeError(w, status, ErrorResponse{Code: errorCode, Message: publicMessage, Errors: errs})
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse, devErrs ...error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)

	fields := logrus.Fields{"status": status, "code": body.Code}
	if len(devErrs) > 0 && devErrs[0] != nil {
		fields["error"] = devErrs[0].Error()
	}
	entry := Logger.WithFields(fields)
	if status >= http.StatusInternalServerError {
		entry.Error(body.Message)
	} else {
		entry.Warn(body.Message)
	}
}

// RespondWithJSON writes a successful JSON response.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
