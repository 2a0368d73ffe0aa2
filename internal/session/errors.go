package session

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState  = errors.New("session: invalid state")
	ErrStartRejected = errors.New("session: start rejected")
	ErrBindFailed    = errors.New("session: renderer bind failed")
)

// InvalidStateError reports an operation invoked in a state that forbids it,
// with a distinct reason per condition.
type InvalidStateError struct {
	Op     string
	State  State
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session: %s invalid in state %s: %s", e.Op, e.State, e.Reason)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}
