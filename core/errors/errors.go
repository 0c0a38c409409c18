// Package errors provides standardized error types and helpers for the bitext codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidTag indicates a malformed language tag string
	ErrInvalidTag = errors.New("invalid language tag")
	// ErrInvalidFilename indicates a corpus filename that doesn't match the expected pattern
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrNotOpen indicates iteration or write attempted on an unopened reader/writer
	ErrNotOpen = errors.New("not open")
	// ErrMalformedRecord indicates a corpus line that is neither a record nor a footer
	ErrMalformedRecord = errors.New("malformed record")
	// ErrMissingFooter indicates a line corpus whose last line is not a footer
	ErrMissingFooter = errors.New("missing footer")
	// ErrResourceUnavailable indicates an underlying file that can't be opened or created
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// TagError represents a malformed language tag with context
type TagError struct {
	Input   string // Full string being parsed
	Subtag  string // Offending subtag, if isolated
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *TagError) Error() string {
	if e.Subtag != "" {
		return fmt.Sprintf("invalid language subtag %q in %q: %s", e.Subtag, e.Input, e.Message)
	}
	return fmt.Sprintf("invalid language tag %q: %s", e.Input, e.Message)
}

func (e *TagError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidTag, e.Err}
	}
	return []error{ErrInvalidTag}
}

// FilenameError represents a corpus filename that doesn't match its expected pattern
type FilenameError struct {
	Filename string // Offending filename
	Pattern  string // Expected pattern (e.g. "<datasource>.<id>.<src>__<tgt>.jtm")
	Err      error  // Underlying error, if any
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("filename %q does not match pattern %q", e.Filename, e.Pattern)
}

func (e *FilenameError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidFilename, e.Err}
	}
	return []error{ErrInvalidFilename}
}

// NotOpenError represents use of a reader or writer before Open
type NotOpenError struct {
	Resource string // "reader" or "writer"
	Path     string // Backing path, if known
}

func (e *NotOpenError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s for %s is not open", e.Resource, e.Path)
	}
	return fmt.Sprintf("%s is not open", e.Resource)
}

func (e *NotOpenError) Unwrap() error {
	return ErrNotOpen
}

// RecordError represents a corpus record that failed to parse
type RecordError struct {
	Path    string // File path, if applicable
	Line    int    // 1-based line number, 0 if unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record at %s:%d: %s", e.Path, e.Line, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("malformed record in %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("malformed record: %s", e.Message)
}

func (e *RecordError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedRecord, e.Err}
	}
	return []error{ErrMalformedRecord}
}

// FooterError represents a missing or unparsable corpus footer
type FooterError struct {
	Path    string // Corpus file path
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *FooterError) Error() string {
	return fmt.Sprintf("no usable footer in %s: %s", e.Path, e.Message)
}

func (e *FooterError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMissingFooter, e.Err}
	}
	return []error{ErrMissingFooter}
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

func (e *IOError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrResourceUnavailable, e.Err}
	}
	return []error{ErrResourceUnavailable}
}

// Helper functions for creating common errors

// NewTag creates a TagError
func NewTag(input, subtag, message string) *TagError {
	return &TagError{
		Input:   input,
		Subtag:  subtag,
		Message: message,
	}
}

// NewFilename creates a FilenameError
func NewFilename(filename, pattern string) *FilenameError {
	return &FilenameError{
		Filename: filename,
		Pattern:  pattern,
	}
}

// NewNotOpen creates a NotOpenError
func NewNotOpen(resource, path string) *NotOpenError {
	return &NotOpenError{
		Resource: resource,
		Path:     path,
	}
}

// NewRecord creates a RecordError
func NewRecord(path string, line int, message string) *RecordError {
	return &RecordError{
		Path:    path,
		Line:    line,
		Message: message,
	}
}

// NewFooter creates a FooterError
func NewFooter(path, message string) *FooterError {
	return &FooterError{
		Path:    path,
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

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
