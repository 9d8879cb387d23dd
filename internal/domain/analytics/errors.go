package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a write was rejected before any store
// mutation because a required field was missing.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrStorageUnavailable indicates the persistence layer was unreachable.
// Events must never be dropped silently, so callers decide whether to
// retry or surface the failure.
var ErrStorageUnavailable = errors.New("analytics storage unavailable")

// StorageError wraps a driver failure so callers can match it with
// errors.Is(err, ErrStorageUnavailable) while keeping the root cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches ErrStorageUnavailable so the sentinel works through wrapping.
func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// NewStorageError wraps err as a StorageError for operation op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// InvalidArgumentError carries the field that failed validation.
type InvalidArgumentError struct {
	Field string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Is matches ErrInvalidArgument so the sentinel works through wrapping.
func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// RequireField returns an InvalidArgumentError when value is empty.
func RequireField(field, value string) error {
	if value == "" {
		return &InvalidArgumentError{Field: field}
	}
	return nil
}
