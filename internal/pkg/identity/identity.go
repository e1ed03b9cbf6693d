// Package identity enforces the binding between a student email address
// and the student ID it carries as its numeric prefix.
package identity

import (
	"errors"
	"regexp"
)

// Student emails are <8 digits>@stud.fci-cu.edu.eg, nothing else.
var emailPattern = regexp.MustCompile(`^(\d{8})@stud\.fci-cu\.edu\.eg$`)

var (
	// ErrInvalidFormat means the email does not match the student email format.
	ErrInvalidFormat = errors.New("email must be in the format: studentID@stud.fci-cu.edu.eg")
	// ErrMismatchedID means the student ID differs from the one embedded in the email.
	ErrMismatchedID = errors.New("student ID must match the ID in the email")
)

// StudentIDFromEmail extracts the 8-digit student ID prefix from a student
// email. The second return value reports whether the email matched the
// student email format at all.
func StudentIDFromEmail(email string) (string, bool) {
	matches := emailPattern.FindStringSubmatch(email)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// Validate checks that email has the student email format and that its
// numeric prefix equals studentID. The format check short-circuits: a
// malformed email never reports a mismatch.
func Validate(email, studentID string) error {
	prefix, ok := StudentIDFromEmail(email)
	if !ok {
		return ErrInvalidFormat
	}
	if prefix != studentID {
		return ErrMismatchedID
	}
	return nil
}
