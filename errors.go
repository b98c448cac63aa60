package engram

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error engram returns is, or wraps, one of these
// sentinels — callers should branch with errors.Is, not string matching.
var (
	// ErrInvalidInput is returned when a caller-supplied argument is
	// malformed: empty content, importance outside [0,1], an unknown
	// memory type.
	ErrInvalidInput = errors.New("engram: invalid input")

	// ErrNotFound is returned when an id-targeted operation names a memory
	// that does not exist.
	ErrNotFound = errors.New("engram: not found")

	// ErrStorageFailure is returned when the underlying Store fails for
	// reasons outside the caller's control (disk I/O, connection loss).
	ErrStorageFailure = errors.New("engram: storage failure")

	// ErrConfigError is returned when a Config fails validation or an
	// unknown preset name is requested.
	ErrConfigError = errors.New("engram: invalid configuration")
)

// EngramError wraps a taxonomy sentinel with the operation that produced it.
type EngramError struct {
	Op  string // operation name, e.g. "Add", "Recall", "Consolidate"
	Err error  // one of the sentinels above, or a wrapped storage error
}

func (e *EngramError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("engram: %v", e.Err)
	}
	return fmt.Sprintf("engram: %s: %v", e.Op, e.Err)
}

func (e *EngramError) Unwrap() error {
	return e.Err
}

func (e *EngramError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps err with operation context. Returns nil if err is nil.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngramError{Op: op, Err: err}
}

// invalidInput builds an ErrInvalidInput wrapped with op and a reason.
func invalidInput(op, reason string) error {
	return &EngramError{Op: op, Err: fmt.Errorf("%w: %s", ErrInvalidInput, reason)}
}

// notFound builds an ErrNotFound wrapped with op and the missing id.
func notFound(op, id string) error {
	return &EngramError{Op: op, Err: fmt.Errorf("%w: %s", ErrNotFound, id)}
}
