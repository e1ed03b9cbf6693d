package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse is the 422 body: every failing field with its
// messages, collected rather than fail-fast.
type ValidationErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// NewValidationErrorResponse builds the standard 422 response.
func NewValidationErrorResponse(fields map[string][]string) *ValidationErrorResponse {
	return &ValidationErrorResponse{
		Success: false,
		Message: "The given data was invalid.",
		Errors:  fields,
	}
}

// ErrorResponse is the generic failure body for non-validation errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewErrorResponse builds a generic failure response.
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Success: false, Message: message}
}

// FormatBindingError converts gin binding failures into the 422 field map.
func FormatBindingError(err error) map[string][]string {
	fields := make(map[string][]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			fields[field] = append(fields[field], bindingErrorMessage(field, fe))
		}
		return fields
	}

	// Malformed JSON and friends have no field to blame.
	fields["request"] = append(fields["request"], "The request body is invalid.")
	return fields
}

func bindingErrorMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "The " + field + " field is required."
	case "email":
		return "The " + field + " must be a valid email address."
	case "min":
		return "The " + field + " must be at least " + fe.Param() + " characters."
	case "max":
		return "The " + field + " may not be greater than " + fe.Param() + " characters."
	default:
		return "The " + field + " is invalid."
	}
}
