package lazyref

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry is an in-process symbol table.
type Registry struct {
	mu      sync.RWMutex
	symbols map[string]any
}

var _ Loader = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{symbols: make(map[string]any)}
}

// Register binds symbol to target. Registering a symbol twice panics.
func (r *Registry) Register(symbol string, target any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.symbols[symbol]; exists {
		panic(fmt.Sprintf("lazyref: symbol %q registered twice", symbol))
	}
	r.symbols[symbol] = target
}

// Load returns the registered target.
func (r *Registry) Load(_ context.Context, symbol string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.symbols[symbol]
	if !ok {
		return nil, &ResolutionError{Symbol: symbol, Err: ErrSymbolNotFound}
	}
	return target, nil
}

// Symbols returns the registered symbol names sorted.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.symbols))
	for s := range r.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
