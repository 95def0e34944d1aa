package lazyref

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/vcrobe/lazydom/store"
)

// memo holds the resolved target shared by a reference and its siblings.
type memo struct {
	mu     sync.Mutex
	target any
	done   bool
}

func (m *memo) get() (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target, m.done
}

func (m *memo) set(target any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.done {
		m.target = target
		m.done = true
	}
}

// Ref is a lazy symbol reference.
type Ref struct {
	symbol   string
	deferred bool
	scope    []any
	memo     *memo
}

// Runtime creates a reference to an in-memory target. It resolves
// synchronously and never consults a loader.
func Runtime(symbol string, target any, scope ...any) *Ref {
	r := &Ref{symbol: symbol, scope: scope, memo: &memo{}}
	r.memo.set(target)
	return r
}

// Deferred creates a reference to a symbol produced by a Loader.
func Deferred(symbol string, scope ...any) *Ref {
	return &Ref{symbol: symbol, deferred: true, scope: scope, memo: &memo{}}
}

// Symbol returns the referenced symbol name.
func (r *Ref) Symbol() string { return r.symbol }

// IsDeferred reports whether the reference was created by Deferred.
func (r *Ref) IsDeferred() bool { return r.deferred }

// Scope returns the captured values in capture order.
func (r *Ref) Scope() []any { return r.scope }

// WithScope returns a reference to the same symbol with another scope. The
// siblings share their resolution.
func (r *Ref) WithScope(scope ...any) *Ref {
	return &Ref{symbol: r.symbol, deferred: r.deferred, scope: scope, memo: r.memo}
}

// Resolved returns the target when it is already available.
func (r *Ref) Resolved() (any, bool) {
	return r.memo.get()
}

// Resolve returns the target, loading it through res when needed.
func (r *Ref) Resolve(ctx context.Context, res *Resolver) (any, error) {
	if target, ok := r.Resolved(); ok {
		return target, nil
	}
	if res == nil {
		return nil, &ResolutionError{Symbol: r.symbol, Err: ErrNoLoader}
	}
	target, err := res.Resolve(ctx, r.symbol)
	if err != nil {
		return nil, err
	}
	r.memo.set(target)
	return target, nil
}

// Start begins resolving in the background. An already resolved reference
// yields a completed future without starting a goroutine.
func (r *Ref) Start(ctx context.Context, res *Resolver) *Future {
	if target, ok := r.Resolved(); ok {
		return completed(target, nil)
	}
	f := newFuture()
	go func() {
		f.complete(r.Resolve(ctx, res))
	}()
	return f
}

// Invoke calls a resolved target with the captured scope.
func (r *Ref) Invoke(ctx context.Context, target any, event any) error {
	fn, err := AsFunc(r.symbol, target)
	if err != nil {
		return err
	}
	return fn(ctx, NewCall(r.symbol, r.scope, event))
}

// Validate reports a store.AccessError when a captured value cannot be
// serialized. Serializable values are nil, booleans, numbers, strings,
// stores, lists and maps or slices built from those.
func (r *Ref) Validate() error {
	for i, v := range r.scope {
		if err := checkSerializable(v); err != nil {
			return &store.AccessError{
				Op:     "scope",
				Detail: fmt.Sprintf("%s: captured value %d: %v", r.symbol, i, err),
			}
		}
	}
	return nil
}

func (r *Ref) String() string {
	return fmt.Sprintf("%s[%d]", r.symbol, len(r.scope))
}

func checkSerializable(v any) error {
	switch x := v.(type) {
	case nil, bool, string, int, int8, int16, int32, int64, uint, uint8,
		uint16, uint32, uint64, float32, float64, *store.Store, *store.List:
		return nil
	case map[string]any:
		for k, item := range x {
			if err := checkSerializable(item); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		return nil
	case []any:
		for i, item := range x {
			if err := checkSerializable(item); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("map key type %s is not string", rv.Type().Key())
		}
		iter := rv.MapRange()
		for iter.Next() {
			if err := checkSerializable(iter.Value().Interface()); err != nil {
				return fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := checkSerializable(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%T is not serializable", v)
}
