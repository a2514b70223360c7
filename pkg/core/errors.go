package core

import (
	"errors"
	"fmt"

	"github.com/dayflow/dayflow-go/pkg/storage"
)

// Predefined errors for common failure scenarios.
var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoCaptions indicates that a video produced no captions to merge.
	ErrNoCaptions = errors.New("no captions detected")

	// ErrNoObservations indicates that there were no observations to build
	// a timeline from.
	ErrNoObservations = errors.New("no observations")

	// ErrNotFound indicates that a requested unit has no stored results.
	ErrNotFound = storage.ErrNotFound

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")
)

// TimelineError wraps errors with operation context.
//
// Example:
//
//	err := &TimelineError{
//	    Op:  "ProcessVideo",
//	    Err: ErrNoCaptions,
//	}
//	// Error() returns: "dayflow: ProcessVideo: no captions detected"
type TimelineError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "dayflow: <Op>: <Err>"
func (e *TimelineError) Error() string {
	return fmt.Sprintf("dayflow: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *TimelineError) Unwrap() error {
	return e.Err
}

// NewTimelineError creates a new TimelineError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewTimelineError("ProcessVideo", err)
//	}
func NewTimelineError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TimelineError{
		Op:  op,
		Err: err,
	}
}

// storageError marks err as a storage failure while keeping it unwrappable.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewTimelineError(op, fmt.Errorf("%w: %w", ErrStorageOperation, err))
}
