// Package errors provides the typed error taxonomy of the dossier tooling.
//
// The deduplication engine itself never errors: normalizers have defined
// fallbacks for malformed input and the matcher treats "no match" as a
// first-class return value. The taxonomy here covers the surfaces around
// the engine — loading dossier files, parsing blueprints, validating
// configuration — where actionable failures do occur.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryDedup         ErrorCategory = "dedup"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeOutOfRange   ErrorCode = "out_of_range"
	CodeDuplicateID  ErrorCode = "duplicate_id"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Dedup errors
	CodeProcessingError ErrorCode = "processing_error"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// DossierError is the base error type for all application errors
type DossierError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// stackTracer is implemented by errors created through github.com/pkg/errors
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Error implements the error interface
func (e *DossierError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *DossierError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *DossierError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryDedup, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *DossierError) WithContext(key string, value interface{}) *DossierError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *DossierError) WithSuggestion(suggestion string) *DossierError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DossierError
func New(category ErrorCategory, code ErrorCode, message string) *DossierError {
	return &DossierError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// Wrap wraps an existing error with DossierError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *DossierError {
	if err == nil {
		return nil
	}

	return &DossierError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStackTrace(),
	}
}

func captureStackTrace() errors.StackTrace {
	if tracer, ok := errors.New("").(stackTracer); ok {
		return tracer.StackTrace()
	}
	return nil
}

// FileError creates an error for file access problems
func FileError(code ErrorCode, path string, cause error) *DossierError {
	return Wrap(cause, CategoryFile, code,
		fmt.Sprintf("file error for %s", path)).
		WithContext("path", path)
}

// ParseError creates an error for blueprint parsing problems
func ParseError(code ErrorCode, source string, cause error) *DossierError {
	return Wrap(cause, CategoryParse, code,
		fmt.Sprintf("failed to parse %s", source)).
		WithContext("source", source)
}

// ValidationError creates an error for invalid input data
func ValidationError(code ErrorCode, field string, value interface{}, cause error) *DossierError {
	e := Wrap(cause, CategoryValidation, code,
		fmt.Sprintf("validation failed for %s", field))
	if e == nil {
		e = New(CategoryValidation, code, fmt.Sprintf("validation failed for %s", field))
	}
	return e.WithContext("field", field).WithContext("value", value)
}

// ConfigError creates an error for invalid configuration
func ConfigError(code ErrorCode, setting string, cause error) *DossierError {
	e := Wrap(cause, CategoryConfiguration, code,
		fmt.Sprintf("invalid configuration: %s", setting))
	if e == nil {
		e = New(CategoryConfiguration, code, fmt.Sprintf("invalid configuration: %s", setting))
	}
	return e.WithContext("setting", setting)
}

// DedupError creates an error for deduplication processing failures
func DedupError(code ErrorCode, stage string, cause error) *DossierError {
	e := Wrap(cause, CategoryDedup, code,
		fmt.Sprintf("deduplication failed at %s", stage))
	if e == nil {
		e = New(CategoryDedup, code, fmt.Sprintf("deduplication failed at %s", stage))
	}
	return e.WithContext("stage", stage)
}

// IsCategory reports whether err is a DossierError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var dossierErr *DossierError
	if errors.As(err, &dossierErr) {
		return dossierErr.Category == category
	}
	return false
}

// GetExitCode extracts the exit code from an error, defaulting to 1
func GetExitCode(err error) int {
	var dossierErr *DossierError
	if errors.As(err, &dossierErr) {
		return dossierErr.GetExitCode()
	}
	return 1
}
