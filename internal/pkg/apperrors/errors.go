package apperrors

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenNotFound      = errors.New("token not found")
	ErrUnauthorized       = errors.New("unauthorized")
)

// User errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrStudentIDAlreadyExists = errors.New("student ID already exists")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNoChange         = errors.New("no changes to apply")
)

// ValidationError carries field-level messages for a 422 response. All
// failing fields are reported together.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed"
}

// Unwrap makes errors.Is(err, ErrValidationFailed) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a ValidationError from a field map.
func NewValidationError(fields map[string][]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
