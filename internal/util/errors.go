// Package util provides shared utility types for the dispatch framework.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., EndpointNotFoundError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrAmbiguous    = errors.New("ambiguous registration")
	ErrFrozen       = errors.New("registry is frozen")
)

// EndpointNotFoundError indicates that no endpoint matched a request.
// This is a defined "no match" outcome, not a failure: callers map it
// to their own not-found behavior.
type EndpointNotFoundError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("no endpoint found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *EndpointNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*EndpointNotFoundError)
	return ok
}

// NewEndpointNotFoundError creates a new EndpointNotFoundError.
func NewEndpointNotFoundError(method, path string) *EndpointNotFoundError {
	return &EndpointNotFoundError{Method: method, Path: path}
}

// AmbiguousRegistrationError indicates that two endpoints were registered
// with the same template, method, and indistinguishable consumes
// predicates. Duplicate registrations are rejected at registration time
// so that dispatch behavior never silently depends on registration order.
type AmbiguousRegistrationError struct {
	Template string
	Method   string
	Consumes string
}

// Error implements the error interface.
func (e *AmbiguousRegistrationError) Error() string {
	return fmt.Sprintf("duplicate endpoint registration for %s %s (consumes %s)",
		e.Method, e.Template, e.Consumes)
}

// Is checks if the error matches the target.
func (e *AmbiguousRegistrationError) Is(target error) bool {
	if target == ErrAmbiguous {
		return true
	}
	_, ok := target.(*AmbiguousRegistrationError)
	return ok
}

// NewAmbiguousRegistrationError creates a new AmbiguousRegistrationError.
func NewAmbiguousRegistrationError(template, method, consumes string) *AmbiguousRegistrationError {
	return &AmbiguousRegistrationError{Template: template, Method: method, Consumes: consumes}
}

// TemplateError indicates that a path template could not be parsed or
// that an embedded variable pattern failed to compile. Fatal at
// registration time.
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid path template %q: %s: %v", e.Template, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid path template %q: %s", e.Template, e.Message)
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *TemplateError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	_, ok := target.(*TemplateError)
	return ok || errors.Is(e.Cause, target)
}

// NewTemplateError creates a new TemplateError.
func NewTemplateError(template, message string) *TemplateError {
	return &TemplateError{Template: template, Message: message}
}

// NewTemplateErrorWithCause creates a new TemplateError wrapping a cause.
func NewTemplateErrorWithCause(template, message string, cause error) *TemplateError {
	return &TemplateError{Template: template, Message: message, Cause: cause}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
