package validation

import (
	"regexp"
	"unicode"
)

// Validation rule patterns and limits
var (
	// Generic email shape check, the student-domain binding is stricter
	// and lives in the identity package.
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Student identifier pattern, exactly 8 digits
	IdentifierPattern = regexp.MustCompile(`^\d{8}$`)
)

const (
	PasswordMinLength = 8
	NameMinLength     = 3
	NameMaxLength     = 255
)

// ContainsDigit reports whether s has at least one decimal digit.
func ContainsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
