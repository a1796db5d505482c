package segments

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a segment ID does not exist.
var ErrNotFound = errors.New("segment not found")

// ValidationError reports input rejected before it reaches the store. The
// triggering operation has no effect and can be retried with corrected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure from the backing store. The operation's effect
// is treated as not having happened; callers surface it as a non-fatal
// notification and do not retry automatically.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("segment store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
