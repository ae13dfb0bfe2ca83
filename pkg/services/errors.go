// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/convert"
	"github.com/dukex/blueprint/pkg/platform"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest  = errors.New("invalid request")
	ErrEmptyDocument   = errors.New("document is empty")
	ErrInvalidDocument = convert.ErrInvalidDocument

	// Lookup Errors (404 Not Found).
	ErrUnknownPlatform     = platform.ErrUnknownPlatform
	ErrUnsupportedPlatform = convert.ErrUnsupportedPlatform
)

// Error codes reported in ServiceError.Code.
const (
	CodeInvalidRequest      = "invalid_request"
	CodeInvalidDocument     = "invalid_document"
	CodeUnknownPlatform     = "unknown_platform"
	CodeUnsupportedPlatform = "unsupported_platform"
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrInvalidDocument)
}

// IsNotFoundError checks if an error names a platform that has no catalog or
// codec and should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUnknownPlatform) ||
		errors.Is(err, ErrUnsupportedPlatform) ||
		errors.Is(err, catalog.ErrNoCatalog)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// wrapError classifies err into a ServiceError for op. Errors that are not
// client errors are returned wrapped but unclassified.
func wrapError(op string, err error) error {
	switch {
	case errors.Is(err, ErrUnknownPlatform):
		return &ServiceError{Op: op, Code: CodeUnknownPlatform, Err: err}
	case errors.Is(err, ErrUnsupportedPlatform), errors.Is(err, catalog.ErrNoCatalog):
		return &ServiceError{Op: op, Code: CodeUnsupportedPlatform, Err: err}
	case errors.Is(err, ErrEmptyDocument):
		return NewValidationError(op, CodeInvalidDocument, "request carries no document", err)
	case errors.Is(err, ErrInvalidDocument):
		return NewValidationError(op, CodeInvalidDocument, "", err)
	case errors.Is(err, ErrInvalidRequest):
		return NewValidationError(op, CodeInvalidRequest, "", err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
