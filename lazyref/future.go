package lazyref

import "context"

// Future is the pending result of a resolution.
type Future struct {
	done   chan struct{}
	target any
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func completed(target any, err error) *Future {
	f := newFuture()
	f.complete(target, err)
	return f
}

func (f *Future) complete(target any, err error) {
	f.target = target
	f.err = err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Ready reports whether the result is available.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome. It must only be called after Done is closed.
func (f *Future) Result() (any, error) {
	return f.target, f.err
}

// Wait blocks until the result is available or ctx ends.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.target, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
