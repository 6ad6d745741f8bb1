package engine

import (
	"errors"
	"fmt"
)

// ErrorClass classifies an engine error for propagation decisions.
type ErrorClass string

const (
	// ErrorClassFatal indicates a startup-time configuration error. The run
	// does not start. Examples: missing root directory, unparsable exclusion
	// pattern.
	ErrorClassFatal ErrorClass = "fatal"

	// ErrorClassReportable indicates a normal, per-entry outcome that is
	// surfaced to the operator but never aborts the run.
	ErrorClassReportable ErrorClass = "reportable"
)

// Error codes for programmatic handling.
const (
	// ErrCodeRootNotFound indicates the supplied root directory does not
	// exist or is not a directory.
	ErrCodeRootNotFound = "ROOT_NOT_FOUND"

	// ErrCodeBadPattern indicates a malformed exclusion pattern.
	ErrCodeBadPattern = "BAD_PATTERN"

	// ErrCodeTimeout indicates an entry did not materialize within its wait
	// budget.
	ErrCodeTimeout = "TIMEOUT"
)

// Error is a classified engine error with context.
type Error struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Code is an error code for programmatic handling.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Path is the filesystem path involved, if applicable.
	Path string `json:"path,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// WithPath attaches a filesystem path to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// NewFatalError creates a fatal startup error.
func NewFatalError(code, message string, err error) *Error {
	return &Error{
		Class:   ErrorClassFatal,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewReportableError creates a reportable per-entry error.
func NewReportableError(code, message string, err error) *Error {
	return &Error{
		Class:   ErrorClassReportable,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsFatal reports whether err is (or wraps) a fatal engine error.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassFatal
	}
	return false
}
