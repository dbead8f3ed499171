// Package errors provides sentinel errors and wrapping helpers shared
// across the daemon's ambient packages (config, pidfile, destination).
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions multiple packages need to recognize by
// identity rather than by message text.
var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing configuration")

	// File/IO errors
	ErrFileNotFound     = errors.New("file not found")
	ErrFileAccessDenied = errors.New("file access denied")

	// Connection errors
	ErrConnectionFailed = errors.New("connection failed")

	// Process lifecycle errors
	ErrPidFileLocked = errors.New("pid file held by another process")
)

// Wrap wraps an error with additional context. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with formatted context. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether err matches target, per the standard library's
// chain-unwrapping rules.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain assignable to target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// MultiError aggregates errors from operations that can fail in more than
// one independent way, such as closing several sources during shutdown.
type MultiError struct {
	errors []error
}

// NewMultiError creates an empty MultiError.
func NewMultiError() *MultiError {
	return &MultiError{}
}

// Add appends err, ignoring nil.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// HasErrors reports whether any error has been added.
func (m *MultiError) HasErrors() bool {
	return len(m.errors) > 0
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return ""
	}
	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}
	return fmt.Sprintf("multiple errors occurred: %v", m.errors)
}

// Errors returns every collected error.
func (m *MultiError) Errors() []error {
	return m.errors
}

// ErrorOrNil returns nil if no errors were collected, otherwise m itself.
func (m *MultiError) ErrorOrNil() error {
	if m.HasErrors() {
		return m
	}
	return nil
}
