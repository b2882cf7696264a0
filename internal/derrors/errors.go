// Package derrors provides custom error types for the Nacre suggestion engine.
// These error types enable better error handling and more informative error
// messages throughout the engine; completion entry points themselves never
// surface them to a keystroke.
package derrors

import (
	"fmt"
)

// NacreError is the base interface for all Nacre errors
type NacreError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all Nacre errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ParseError represents errors reported by the parser collaborator
type ParseError struct {
	baseError
	// Offset is the byte offset of the failure in the parsed line
	Offset int
}

// NewParseError creates a new parse error
func NewParseError(offset int, message string, cause error) *ParseError {
	return &ParseError{
		baseError: baseError{
			code:    "PARSE_ERROR",
			message: message,
			cause:   cause,
		},
		Offset: offset,
	}
}

// ConfigurationError represents errors in engine configuration files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ExecutionError represents failures of read-only helper commands run
// against the live session
type ExecutionError struct {
	baseError
	Command string
}

// NewExecutionError creates a new execution error
func NewExecutionError(command string, message string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError: baseError{
			code:    "EXEC_ERROR",
			message: message,
			cause:   cause,
		},
		Command: command,
	}
}

// ValidationError represents errors during configuration validation
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			code:    "VALIDATION_ERROR",
			message: message,
			cause:   cause,
		},
		Field: field,
	}
}

// NotFoundError represents a missing resource (command, class, namespace)
type NotFoundError struct {
	baseError
	Resource string
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(resource string, message string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			code:    "NOT_FOUND",
			message: message,
		},
		Resource: resource,
	}
}
