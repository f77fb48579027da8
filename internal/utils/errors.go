package utils

import (
	"errors"
	"strings"
)

// Domain-level errors returned by services. Controllers translate them to
// HTTP statuses with errors.Is.
var (
	ErrValidation     = errors.New("validation_error")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrAuthentication = errors.New("invalid_credentials")

	ErrTokenMissing = errors.New("token_missing")
	ErrTokenExpired = errors.New("token_expired")
	ErrTokenInvalid = errors.New("token_invalid")
	ErrTokenRevoked = errors.New("token_revoked")

	ErrPasswordMismatch = errors.New("password_confirmation_mismatch")
	ErrPasswordReused   = errors.New("password_reused")
)

// PasswordPolicyError lists every password rule a candidate violated, in
// evaluation order.
type PasswordPolicyError struct {
	Errors []string
}

func (e *PasswordPolicyError) Error() string {
	return "password policy violated: " + strings.Join(e.Errors, "; ")
}

func (e *PasswordPolicyError) Unwrap() error {
	return ErrValidation
}
