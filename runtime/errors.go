package runtime

import (
	"errors"
	"fmt"
)

// ErrFlushLimit is reported when re-renders keep dirtying each other past
// the configured number of flush passes.
var ErrFlushLimit = errors.New("re-renders did not settle")

// ErrNoDispatcher is returned by Trigger when the host document cannot
// dispatch events.
var ErrNoDispatcher = errors.New("host document cannot dispatch events")

// ReconciliationError reports a virtual tree that cannot be applied: an
// unknown component or a malformed binding. Nothing is mutated when it is
// raised.
type ReconciliationError struct {
	Component string // owning component, empty at the root
	Path      string // position of the offending node
	Reason    string
}

func (e *ReconciliationError) Error() string {
	owner := e.Component
	if owner == "" {
		owner = "<root>"
	}
	return fmt.Sprintf("reconcile %s at %s: %s", owner, e.Path, e.Reason)
}

// RenderError wraps a failure of a component's factory or render function.
// The instance keeps its last good output.
type RenderError struct {
	Component string
	Instance  uint64
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s#%d: %v", e.Component, e.Instance, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// HandlerError wraps a failure returned or raised by an event handler.
type HandlerError struct {
	Symbol string
	Event  string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s (%s): %v", e.Symbol, e.Event, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// panicError turns a recovered value into an error, keeping error chains.
func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
