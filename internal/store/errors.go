package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates an operation referenced an id that does not exist
type NotFoundError struct {
	Kind Kind
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ConflictError indicates a concurrent structural mutation was detected.
// The caller should re-read and retry the whole operation.
type ConflictError struct {
	Kind    Kind
	ID      uuid.UUID
	Message string
	Cause   error
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("conflict on %s %s", e.Kind, e.ID)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
