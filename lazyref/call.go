package lazyref

import (
	"context"
	"fmt"

	"github.com/vcrobe/lazydom/store"
)

// Func is the shape of an invocable target.
type Func func(ctx context.Context, c *Call) error

// Call carries the captured scope and the triggering event into a Func.
type Call struct {
	Symbol string
	// Event is the host event that caused the invocation, if any.
	Event any

	scope []any
}

// NewCall creates a call over scope.
func NewCall(symbol string, scope []any, event any) *Call {
	return &Call{Symbol: symbol, Event: event, scope: scope}
}

// Scope returns the captured values in capture order.
func (c *Call) Scope() []any { return c.scope }

// Len returns the number of captured values.
func (c *Call) Len() int { return len(c.scope) }

// Expect panics with a store.AccessError unless exactly n values were
// captured.
func (c *Call) Expect(n int) {
	if len(c.scope) != n {
		panic(&store.AccessError{
			Op:     "scope",
			Detail: fmt.Sprintf("%s: expected %d captured values, got %d", c.Symbol, n, len(c.scope)),
		})
	}
}

// Arg returns captured value i as T. A missing value or a value of another
// type panics with a store.AccessError.
func Arg[T any](c *Call, i int) T {
	if i < 0 || i >= len(c.scope) {
		panic(&store.AccessError{
			Op:     "scope",
			Detail: fmt.Sprintf("%s: index %d out of range [0,%d)", c.Symbol, i, len(c.scope)),
		})
	}
	v, ok := c.scope[i].(T)
	if !ok {
		var zero T
		panic(&store.AccessError{
			Op:     "scope",
			Detail: fmt.Sprintf("%s: value %d is %T, not %T", c.Symbol, i, c.scope[i], zero),
		})
	}
	return v
}

// AsFunc converts a resolved target into a Func.
func AsFunc(symbol string, target any) (Func, error) {
	switch fn := target.(type) {
	case Func:
		return fn, nil
	case func(context.Context, *Call) error:
		return fn, nil
	case func(context.Context, *Call):
		return func(ctx context.Context, c *Call) error {
			fn(ctx, c)
			return nil
		}, nil
	}
	return nil, &ResolutionError{Symbol: symbol, Err: fmt.Errorf("%w: %T", ErrNotCallable, target)}
}
