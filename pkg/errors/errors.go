// Package errors provides custom error types for the smactrace system.
// These errors enable programmatic error checking across the reconciliation
// pipeline and let the batch layer tell per-file data problems apart from
// caller configuration mistakes.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is the standard library errors.As.
var As = errors.As

// Common sentinel errors for the smactrace system
var (
	// ErrConfiguration indicates a missing directory or dataset binding
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound indicates that a glob produced no candidate files
	ErrNotFound = errors.New("not found")

	// ErrFileAccess indicates that a log file could not be opened or read
	ErrFileAccess = errors.New("file access")

	// ErrMissingCompanion indicates that a required paired file is absent
	ErrMissingCompanion = errors.New("missing companion file")

	// ErrEmptySelection indicates that no row survived the response filter
	ErrEmptySelection = errors.New("empty selection")

	// ErrParse indicates a malformed field, line, or row
	ErrParse = errors.New("parse error")

	// ErrDuplicateColumn indicates a column name collision that could not be resolved
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ConfigurationError represents a missing or invalid caller binding.
type ConfigurationError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: message}
}

// NotFoundError represents an empty candidate set for a glob pattern.
type NotFoundError struct {
	Resource string
	Pattern  string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found matching %s", e.Resource, e.Pattern)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, pattern string) *NotFoundError {
	return &NotFoundError{Resource: resource, Pattern: pattern}
}

// FileAccessError represents a log file that could not be opened or read.
type FileAccessError struct {
	Operation string // "open", "read", "stat", "write"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *FileAccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("cannot %s %s", e.Operation, e.Path)
}

// Unwrap implements errors.Unwrap
func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FileAccessError) Is(target error) bool {
	return target == ErrFileAccess
}

// NewFileAccessError creates a new FileAccessError
func NewFileAccessError(operation, path string, err error) *FileAccessError {
	return &FileAccessError{Operation: operation, Path: path, Err: err}
}

// MissingCompanionError represents a paired file that could not be located.
type MissingCompanionError struct {
	Path    string // the primary file
	Pattern string // the companion pattern that matched nothing
}

// Error implements the error interface
func (e *MissingCompanionError) Error() string {
	return fmt.Sprintf("no companion file %s for %s", e.Pattern, e.Path)
}

// Is implements errors.Is support
func (e *MissingCompanionError) Is(target error) bool {
	return target == ErrMissingCompanion
}

// NewMissingCompanionError creates a new MissingCompanionError
func NewMissingCompanionError(path, pattern string) *MissingCompanionError {
	return &MissingCompanionError{Path: path, Pattern: pattern}
}

// EmptySelectionError represents a best-record computation over no rows.
type EmptySelectionError struct {
	Path   string
	Column string
	Lower  float64
	Upper  float64
}

// Error implements the error interface
func (e *EmptySelectionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("no row of %s has %s in (%g, %g)", e.Path, e.Column, e.Lower, e.Upper)
	}
	return fmt.Sprintf("no row has %s in (%g, %g)", e.Column, e.Lower, e.Upper)
}

// Is implements errors.Is support
func (e *EmptySelectionError) Is(target error) bool {
	return target == ErrEmptySelection
}

// NewEmptySelectionError creates a new EmptySelectionError
func NewEmptySelectionError(path, column string, lower, upper float64) *EmptySelectionError {
	return &EmptySelectionError{Path: path, Column: column, Lower: lower, Upper: upper}
}

// ParseError represents an error when parsing optimizer log formats
type ParseError struct {
	Format  string // "runs", "paramstrings", "trajectory", "validation", "callstrings"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s file %s at line %d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// DuplicateColumnError represents a column identity assigned twice.
type DuplicateColumnError struct {
	Column string
	Raw    string // raw compound name that produced the collision, if known
}

// Error implements the error interface
func (e *DuplicateColumnError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("duplicate column %q (from %q)", e.Column, e.Raw)
	}
	return fmt.Sprintf("duplicate column %q", e.Column)
}

// Is implements errors.Is support
func (e *DuplicateColumnError) Is(target error) bool {
	return target == ErrDuplicateColumn
}

// NewDuplicateColumnError creates a new DuplicateColumnError
func NewDuplicateColumnError(column, raw string) *DuplicateColumnError {
	return &DuplicateColumnError{Column: column, Raw: raw}
}

// IOError represents an error while persisting reconciled tables
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFileAccess checks if an error is a file access error
func IsFileAccess(err error) bool {
	return errors.Is(err, ErrFileAccess)
}

// IsMissingCompanion checks if an error is a missing companion error
func IsMissingCompanion(err error) bool {
	return errors.Is(err, ErrMissingCompanion)
}

// IsEmptySelection checks if an error is an empty selection error
func IsEmptySelection(err error) bool {
	return errors.Is(err, ErrEmptySelection)
}

// IsParse checks if an error is a parse error
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsDuplicateColumn checks if an error is a duplicate column error
func IsDuplicateColumn(err error) bool {
	return errors.Is(err, ErrDuplicateColumn)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Canceled marks a context error as a cancellation. The result matches both
// ErrCanceled and err.
func Canceled(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCanceled, err)
}

// IsFileLevel reports whether err is scoped to a single log file. The batch
// layer skips such files; every other error aborts the batch.
func IsFileLevel(err error) bool {
	return IsFileAccess(err) ||
		IsMissingCompanion(err) ||
		IsEmptySelection(err) ||
		IsParse(err) ||
		IsDuplicateColumn(err)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}
