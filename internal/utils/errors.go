package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx backend reply
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, message, code string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuthError checks if the error is an authentication error
func IsAuthError(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsForbiddenError checks if the error is a forbidden error
func IsForbiddenError(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// ErrorCode returns the backend error tag carried by err, if any.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// ValidationKind classifies a registration validation failure.
type ValidationKind int

const (
	// GenericField is any field error that is not a uniqueness conflict.
	GenericField ValidationKind = iota
	// DuplicateEmail means the e-mail is already registered.
	DuplicateEmail
	// DuplicateTaxID means the CPF is already registered.
	DuplicateTaxID
	// DuplicateOther is a uniqueness conflict on another field.
	DuplicateOther
)

// String returns the label of the kind.
func (k ValidationKind) String() string {
	switch k {
	case DuplicateEmail:
		return "duplicate-email"
	case DuplicateTaxID:
		return "duplicate-tax-id"
	case DuplicateOther:
		return "duplicate-other"
	default:
		return "generic-field"
	}
}

// Modal reports whether the error is presented as a blocking dialog rather
// than inline under the field.
func (k ValidationKind) Modal() bool {
	return k == DuplicateEmail || k == DuplicateTaxID
}

// ValidationError is a tagged field validation failure produced at the API
// boundary.
type ValidationError struct {
	Kind    ValidationKind      `json:"kind"`
	Field   string              `json:"field"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s' (%s): %s", e.Field, e.Kind, e.Message)
	}
	return fmt.Sprintf("validation error (%s): %s", e.Kind, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(kind ValidationKind, field, message string) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Field:   field,
		Message: message,
	}
}

// AsValidationError unwraps a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
