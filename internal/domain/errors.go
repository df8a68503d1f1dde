package domain

import (
	"errors"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrStorage       = errors.New("storage write failed")
	ErrConfiguration = errors.New("configuration required")
)

// Domain error types
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// StorageError indicates a durable write that did not complete;
	// in-memory state may be ahead of disk.
	StorageError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *StorageError) Error() string    { return e.Message }

// Is allows errors.Is() to match against the sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *StorageError) Is(target error) bool    { return target == ErrStorage }
