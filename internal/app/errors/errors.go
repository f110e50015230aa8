package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types
var (
	// Startup errors, fatal for the bridge
	ErrInvalidConfig    = New("invalid configuration")
	ErrModelLoad        = New("model load failed")
	ErrProviderNotFound = New("provider not found")

	// Per-request errors, the bridge reports them and keeps going
	ErrTranscription   = New("transcription failed")
	ErrAudioConversion = New("audio conversion failed")
	ErrHelperExited    = New("engine helper exited")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// WithCause returns an error that matches e under Is and carries cause.
func (e *Error) WithCause(cause error) error {
	if cause == nil {
		return e
	}
	return &Error{message: e.message, cause: cause}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// IsFatal reports whether err belongs to the startup tier: bad configuration
// or a model that could not be loaded.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, ErrInvalidConfig) || Is(err, ErrModelLoad) || Is(err, ErrProviderNotFound)
}
