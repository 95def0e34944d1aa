package lazyref

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader produces the target of a symbol.
type Loader interface {
	Load(ctx context.Context, symbol string) (any, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, symbol string) (any, error)

func (f LoaderFunc) Load(ctx context.Context, symbol string) (any, error) {
	return f(ctx, symbol)
}

// Resolver memoizes loaded symbols and shares in-flight loads.
type Resolver struct {
	loader Loader
	group  singleflight.Group
	loads  atomic.Int64

	mu    sync.RWMutex
	cache map[string]any
}

// NewResolver creates a resolver backed by loader.
func NewResolver(loader Loader) *Resolver {
	return &Resolver{loader: loader, cache: make(map[string]any)}
}

// Resolve returns the target for symbol. A symbol is loaded at most once;
// concurrent callers wait on the same load. The load itself is detached
// from ctx cancellation so one impatient caller cannot fail the others;
// ctx only bounds how long this caller waits.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (any, error) {
	if target, ok := r.cached(symbol); ok {
		return target, nil
	}
	if r.loader == nil {
		return nil, &ResolutionError{Symbol: symbol, Err: ErrNoLoader}
	}
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(symbol, func() (any, error) {
		if target, ok := r.cached(symbol); ok {
			return target, nil
		}
		r.loads.Add(1)
		target, err := r.loader.Load(loadCtx, symbol)
		if err != nil {
			return nil, resolutionError(symbol, err)
		}
		r.mu.Lock()
		r.cache[symbol] = target
		r.mu.Unlock()
		return target, nil
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, &ResolutionError{Symbol: symbol, Err: ctx.Err()}
	}
}

// Loads returns how many times the underlying loader was called.
func (r *Resolver) Loads() int64 { return r.loads.Load() }

func (r *Resolver) cached(symbol string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.cache[symbol]
	return target, ok
}
