// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrObservation is the sentinel error wrapped by ObservationError.
	ErrObservation = errors.New("observation failed")

	// ErrAction is the sentinel error wrapped by ActionError.
	ErrAction = errors.New("action failed")
)

// ObservationError reports a failed inspect query that was not a plain
// "not found". No further action is attempted after one.
type ObservationError struct {
	// Op describes the query (e.g. "inspect container web").
	Op string
	// Cause is the underlying engine error, stderr included.
	Cause error
}

// Error implements the error interface.
func (e *ObservationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns ErrObservation so callers can use errors.Is.
func (e *ObservationError) Unwrap() error { return ErrObservation }

// ActionError reports a failed side-effecting engine command. The
// reconciliation sequence is aborted at that step; earlier actions are not
// undone, so the resulting state may be partially applied.
type ActionError struct {
	// Action describes the step (e.g. "remove container web").
	Action string
	// Cause is the underlying engine error, stderr included.
	Cause error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Cause)
}

// Unwrap returns ErrAction so callers can use errors.Is.
func (e *ActionError) Unwrap() error { return ErrAction }
