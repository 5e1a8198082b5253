// Package errors provides unified error handling across the one-on-one setup pipeline.
//
// Each failure in the generation pipeline is categorized so the caller's
// final report can name, per artifact, exactly what went wrong. The
// categories drive isolation: serializer-fatal errors stop only their own
// artifact, recoverable ones (icon conversion) are logged and generation
// continues on the template fallback.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of failure
type ErrorCode string

const (
	// A required template, identifier, or setting is missing or malformed.
	// Fatal for the affected artifact only.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// One icon rendition failed to convert. Recovered locally: the
	// affected artifact keeps its template icon.
	ErrCodeConversion ErrorCode = "CONVERSION_ERROR"

	// A template's structure does not match the expected schema.
	// Fatal for the one serializer consuming it.
	ErrCodeTemplateFormat ErrorCode = "TEMPLATE_FORMAT_ERROR"

	// The workspace numbering search ran out of candidate names.
	ErrCodeNameConflictExhausted ErrorCode = "NAME_CONFLICT_EXHAUSTED"

	// Collaborator and I/O failures
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeNetworkFailure ErrorCode = "NETWORK_FAILURE"
	ErrCodeSecretFailure  ErrorCode = "SECRET_FAILURE"
	ErrCodeBridgeFailure  ErrorCode = "BRIDGE_FAILURE"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityWarning ErrorSeverity = "warning"
	SeverityError   ErrorSeverity = "error"
)

// AppError represents a standardized pipeline error
type AppError struct {
	Code     ErrorCode
	Message  string
	Details  string
	Severity ErrorSeverity
	Cause    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new pipeline error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: severityFor(code),
	}
}

// Wrap wraps an existing error with pipeline error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: severityFor(code),
		Cause:    err,
	}
}

func severityFor(code ErrorCode) ErrorSeverity {
	if code == ErrCodeConversion {
		return SeverityWarning
	}
	return SeverityError
}

// IsCode reports whether err (anywhere in its chain) carries the given code
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetAppError extracts an AppError from an error, or wraps it as a bridge failure
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeBridgeFailure, "unexpected failure")
}

// Common constructors

func ConfigurationError(message string) *AppError {
	return NewAppError(ErrCodeConfiguration, message)
}

func ConversionError(rendition string, err error) *AppError {
	return Wrap(err, ErrCodeConversion, fmt.Sprintf("failed to convert %s rendition", rendition))
}

func TemplateFormatError(field string) *AppError {
	return NewAppError(ErrCodeTemplateFormat, fmt.Sprintf("template missing expected field %q", field))
}

func NameConflictExhausted(name string) *AppError {
	return NewAppError(ErrCodeNameConflictExhausted, fmt.Sprintf("no free name found for %q", name))
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("storage operation failed: %s", operation))
}

func NetworkError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeNetworkFailure, fmt.Sprintf("network operation failed: %s", operation))
}

func SecretError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeSecretFailure, fmt.Sprintf("secret retrieval failed: %s", operation))
}

func BridgeError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeBridgeFailure, fmt.Sprintf("automation bridge failed: %s", operation))
}
