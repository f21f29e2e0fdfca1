package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup for an item that does not exist. Read and
// delete paths translate it to an empty result or a false return; bulk
// resolution reports it per item.
var ErrNotFound = errors.New("not found")

// UnavailableError means a workspace's database could not be opened or
// brought to the current schema. All operations on that workspace fail
// until the underlying cause is resolved; there is no fallback store.
type UnavailableError struct {
	Workspace string
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("workspace %q storage unavailable: %v", e.Workspace, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// OperationError wraps an engine-level fault from a single operation whose
// transaction was rolled back. The caller may retry.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// opErr wraps an engine fault with the attempted operation's description.
func opErr(op string, err error) error {
	return &OperationError{Op: op, Err: err}
}

// ValidationError reports caller-supplied arguments that violate a
// precondition. It is raised before any transaction opens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
