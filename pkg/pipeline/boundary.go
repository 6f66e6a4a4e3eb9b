package pipeline

import (
	"errors"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// Class is the coarse error class exposed to callers.
type Class string

const (
	// ClassIO covers failures of the backing storage.
	ClassIO Class = "io"
	// ClassValue covers every other failure.
	ClassValue Class = "value"
)

// BoundaryError is the only error type returned by this package.
type BoundaryError struct {
	Class   Class
	Message string
	cause   error
}

func (e *BoundaryError) Error() string {
	return e.Message
}

// Unwrap returns the internal error.
func (e *BoundaryError) Unwrap() error {
	return e.cause
}

// ClassOf maps an internal error type to its boundary class.
func ClassOf(t archiveerrors.ErrorType) Class {
	if t == archiveerrors.ErrorTypeIO {
		return ClassIO
	}
	return ClassValue
}

// toBoundary converts err exactly once; nil stays nil.
func toBoundary(err error) error {
	if err == nil {
		return nil
	}
	var be *BoundaryError
	if errors.As(err, &be) {
		return be
	}
	return &BoundaryError{
		Class:   ClassOf(archiveerrors.TypeOf(err)),
		Message: err.Error(),
		cause:   err,
	}
}

// IsIO reports whether err crossed the boundary as an I/O failure.
func IsIO(err error) bool {
	var be *BoundaryError
	return errors.As(err, &be) && be.Class == ClassIO
}
