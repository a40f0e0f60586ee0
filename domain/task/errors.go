package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations. The typed errors below match them
// through errors.Is.
var (
	// ErrValidation is returned when input is rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an update targets an absent task.
	ErrNotFound = errors.New("task not found")

	// ErrPersistence is returned when the durable store could not be read or written.
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the task id that was not found.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a storage failure. In-memory state is never rolled
// back when one of these is reported after a mutation.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrPersistence, e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Kind returns a short machine-readable name for err, used by transports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "internal_error"
	}
}

// FromKind rebuilds an error reported by Kind on the other side of a
// transport. The result still matches the sentinels through errors.Is.
func FromKind(kind, message string) error {
	if kind == "" {
		return nil
	}
	return &remoteError{kind: kind, message: message}
}

type remoteError struct {
	kind    string
	message string
}

func (e *remoteError) Error() string {
	return e.message
}

func (e *remoteError) Is(target error) bool {
	switch e.kind {
	case "validation_error":
		return target == ErrValidation
	case "not_found":
		return target == ErrNotFound
	case "persistence_error":
		return target == ErrPersistence
	}
	return false
}
