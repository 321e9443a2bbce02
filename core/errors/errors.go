// Package errors provides standardized error types and helpers for SpanRelocator.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates an argument a caller passed cannot be processed
	ErrInvalidInput = errors.New("invalid input")
	// ErrSchema indicates an annotation record does not match the record layout
	ErrSchema = errors.New("schema error")
	// ErrDuplicateID indicates the same annotation id was used more than once
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// SchemaError describes one unparseable annotation record.
type SchemaError struct {
	Line    int    // 1-based line number in the source
	Field   string // Column that failed, empty when the whole line is at fault
	Message string // Human-readable cause
	Err     error  // Underlying error, if any
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *SchemaError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSchema
}

// InputError reports an argument that a single operation refuses to process.
type InputError struct {
	Param   string // Parameter name (e.g., "query", "cutoff")
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *InputError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// DuplicateIDError reports an annotation id that appears on more than one output line.
type DuplicateIDError struct {
	ID    string // The repeated identifier
	Lines []int  // 1-based output lines carrying the id
}

func (e *DuplicateIDError) Error() string {
	if len(e.Lines) == 0 {
		return fmt.Sprintf("duplicate id %s", e.ID)
	}
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = strconv.Itoa(l)
	}
	return fmt.Sprintf("duplicate id %s on lines %s", e.ID, strings.Join(lines, ", "))
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "layout", "XML")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewSchema creates a SchemaError
func NewSchema(line int, field, message string) *SchemaError {
	return &SchemaError{
		Line:    line,
		Field:   field,
		Message: message,
	}
}

// NewInput creates an InputError
func NewInput(param, message string) *InputError {
	return &InputError{
		Param:   param,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
