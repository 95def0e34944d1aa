package runtime

import (
	"fmt"
	"maps"

	"github.com/vcrobe/lazydom/vdom"
)

// Registry maps component names to kinds, so trees can reference
// components by name.
type Registry struct {
	kinds map[string]*Kind
}

// NewRegistry creates a registry holding kinds.
func NewRegistry(kinds ...*Kind) (*Registry, error) {
	r := &Registry{kinds: make(map[string]*Kind)}
	for _, k := range kinds {
		if err := r.Register(k); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds k under its component name.
func (r *Registry) Register(k *Kind) error {
	name := k.ComponentName()
	if other, ok := r.kinds[name]; ok && other != k {
		return fmt.Errorf("component %q already registered", name)
	}
	r.kinds[name] = k
	return nil
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	if r == nil {
		return nil, false
	}
	k, ok := r.kinds[name]
	return k, ok
}

// kindName references a component by name until the renderer resolves it.
type kindName string

func (n kindName) ComponentName() string { return string(n) }

// Named invokes a component by its registered name. The name is resolved
// when the tree is reconciled; an unknown name is a ReconciliationError.
func Named(name string, props Props, children ...*vdom.VNode) *vdom.VNode {
	return &vdom.VNode{
		Tag:       name,
		Component: kindName(name),
		Props:     maps.Clone(props),
		Children:  children,
	}
}
