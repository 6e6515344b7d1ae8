package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for an unknown request, status or token.
var ErrNotFound = errors.New("record not found")

// ErrStageConflict is returned when a stage advance targets a stage that was
// already sent. Reconciliation treats it as "someone else got there first"
// and skips the unit.
var ErrStageConflict = errors.New("stage already sent")

// ErrChannelUnavailable is returned by a delivery channel that cannot be used
// right now. It is always recovered inside the dispatch engine.
var ErrChannelUnavailable = errors.New("channel unavailable")

// ValidationError reports a rejected settings patch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure. It is fatal for the current unit of
// work only; siblings in a reconciliation pass keep going.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
