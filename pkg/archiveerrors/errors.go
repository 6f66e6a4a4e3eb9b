// Package archiveerrors provides the structured error taxonomy shared by every
// stage of the archive pipeline.
//
// # Overview
//
// Each failure is tagged with exactly one ErrorType describing the domain it
// originated in:
//   - ErrorTypeIO: open/read/write/flush failures on the archive or destination
//   - ErrorTypeArchiveFormat: corrupt central directory, unlocatable entry
//   - ErrorTypeEncoding: invalid UTF-8 entry name or text content
//   - ErrorTypeSerialization: columnar batch construction or encoding failures
//   - ErrorTypeCustom: caller-supplied message
//
// Errors carry the wrapped cause, key-value details and the call stack at the
// point of creation. Components return them to their immediate caller and never
// retry; the boundary layer folds them into caller-visible classes.
//
// # Basic Usage
//
//	f, err := os.Open(path)
//	if err != nil {
//	    return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to open archive").
//	        WithDetail("path", path)
//	}
//
//	if archiveerrors.IsType(err, archiveerrors.ErrorTypeEncoding) {
//	    // entry name or content was not valid UTF-8
//	}
package archiveerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the failure domain of an error.
type ErrorType string

const (
	// ErrorTypeIO represents file open, read, write and flush failures
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeArchiveFormat represents corrupt archives and unlocatable entries
	ErrorTypeArchiveFormat ErrorType = "archive_format"
	// ErrorTypeEncoding represents invalid UTF-8 names or text content
	ErrorTypeEncoding ErrorType = "encoding"
	// ErrorTypeSerialization represents columnar construction and encoding failures
	ErrorTypeSerialization ErrorType = "serialization"
	// ErrorTypeCustom represents caller-supplied errors
	ErrorTypeCustom ErrorType = "custom"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: the failure domain
//   - Message: human-readable description
//   - Cause: the underlying error, if any
//   - Details: key-value pairs such as the archive path or entry name
//   - Stack: call stack at the point of creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface. The message always starts with the
// error type so diagnostics keep the taxonomy after boundary conversion.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. It can be chained.
//
// Example:
//
//	err := archiveerrors.New(archiveerrors.ErrorTypeEncoding, "entry name is not valid UTF-8").
//	    WithDetail("index", 3)
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with a type and message, preserving the
// original error as the cause. If the error is already a structured Error its
// stack trace is kept. Returns nil if err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Custom creates an ErrorTypeCustom error carrying a caller-supplied message.
func Custom(message string) *Error {
	return &Error{
		Type:    ErrorTypeCustom,
		Message: message,
		Stack:   captureStack(2),
	}
}

// IsType reports whether the outermost structured error in err's chain has
// the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost structured error in err's chain.
// Errors that never passed through this package report ErrorTypeCustom.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeCustom
	}
	return e.Type
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
