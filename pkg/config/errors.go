package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue indicates a field holds an out-of-range or unknown value.
	ErrInvalidValue = errors.New("invalid field value")

	// ErrUnknownKey indicates an override key that maps to no config field.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// ValidationError wraps configuration validation errors with field context.
type ValidationError struct {
	Section string // config section, e.g. "queue"
	Field   string // field name within the section
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %v", e.Section, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Section, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error for a section field.
func NewValidationError(section, field string, err error) *ValidationError {
	return &ValidationError{Section: section, Field: field, Err: err}
}

// LoadError wraps configuration loading errors with file context.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a load error for a config file.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
