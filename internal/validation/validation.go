// Package validation holds the pure input predicates used at registration.
package validation

import (
	"regexp"
	"strings"
)

// emailRx requires a non-empty local part, a single @, and a domain
// containing a dot, with no whitespace anywhere. Syntactic check only;
// no DNS or mailbox verification.
var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

const specialChars = ".!@#$%^&*"

// IsValidEmail reports whether s is a well-formed email address.
func IsValidEmail(s string) bool {
	return emailRx.MatchString(s)
}

// IsStrongPassword reports whether p satisfies the password policy:
// at least 6 characters, with at least one uppercase letter, one
// lowercase letter, one digit, and one of ".!@#$%^&*". All five
// conditions are mandatory. Classification is ASCII-only.
func IsStrongPassword(p string) bool {
	if len(p) < minPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range p {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case strings.ContainsRune(specialChars, ch):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}
