package core

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed mutation input. Nothing is written when
// one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation that referenced a nonexistent id.
type NotFoundError struct {
	Table string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Table, e.ID)
}

// PreconditionError reports a mutation that would violate a referential
// invariant, such as deleting a wallet with transactions. The operation is
// aborted with no state change.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// StorageError reports that the underlying persistence failed. The core
// does not retry; the caller may retry the whole operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DeserializationError reports a stored record that failed to parse on
// read. The read of that single record is skipped; the rest of the table
// read continues.
type DeserializationError struct {
	Table string
	ID    string
	Err   error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %s %q: %v", e.Table, e.ID, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
