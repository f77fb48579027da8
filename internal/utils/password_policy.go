package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 20

	// PasswordSymbols is the set of accepted special characters.
	PasswordSymbols = "!@#$%^&*-"
)

const (
	MsgPasswordTooShort = "Password must be at least 8 characters long"
	MsgPasswordTooLong  = "Password should not be more than 20 characters long"
	MsgPasswordNoDigit  = "Password must contain at least one digit"
	MsgPasswordNoUpper  = "Password must contain at least one uppercase letter"
	MsgPasswordNoLower  = "Password must contain at least one lowercase letter"
	MsgPasswordNoSymbol = "Password must contain at least one special symbol"
)

// ValidatePassword checks candidate against the password policy and returns
// every violated rule, in a fixed order.
func ValidatePassword(candidate string) (bool, []string) {
	errs := []string{}

	n := utf8.RuneCountInString(candidate)
	if n < PasswordMinLength {
		errs = append(errs, MsgPasswordTooShort)
	}
	if n > PasswordMaxLength {
		errs = append(errs, MsgPasswordTooLong)
	}

	var hasDigit, hasUpper, hasLower, hasSymbol bool
	for _, r := range candidate {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasDigit {
		errs = append(errs, MsgPasswordNoDigit)
	}
	if !hasUpper {
		errs = append(errs, MsgPasswordNoUpper)
	}
	if !hasLower {
		errs = append(errs, MsgPasswordNoLower)
	}
	if !hasSymbol {
		errs = append(errs, MsgPasswordNoSymbol)
	}

	return len(errs) == 0, errs
}
