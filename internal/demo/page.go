// Package demo renders the example components into in-memory documents for
// the lazydom command.
package demo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/vcrobe/lazydom/appcomponents"
	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/snapshot"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// ErrNoMatch is returned when a selector matches no element.
var ErrNoMatch = errors.New("selector matched no element")

// Components lists the names Tree accepts besides registered tags.
var Components = []string{"hello", "greeter", "counter", "deferred-counter", "items"}

// Tree returns the virtual tree for a demo component. Names outside
// Components are looked up in the component registry when rendered.
func Tree(name string, props runtime.Props) *vdom.VNode {
	switch name {
	case "hello":
		return appcomponents.HelloWorld.New(props)
	case "greeter":
		return appcomponents.Greeter.New(props)
	case "counter":
		return appcomponents.Counter.New(props)
	case "deferred-counter":
		return appcomponents.DeferredCounter.New(props)
	case "items":
		if _, ok := props["items"].(*store.Store); !ok {
			props = maps.Clone(props)
			if props == nil {
				props = runtime.Props{}
			}
			props["items"] = appcomponents.NewItemsState(
				map[string]any{"done": true, "title": "Task 1"},
				map[string]any{"done": false, "title": "Task 2"},
			)
		}
		return appcomponents.Items.New(props)
	}
	return runtime.Named(name, props)
}

// Page is one component mounted into its own document. A Page serializes
// access to its renderer, so it may be shared between requests.
type Page struct {
	mu   sync.Mutex
	doc  *dom.Doc
	host dom.Node
	r    *runtime.Renderer
}

// NewPage renders the named component into the body of a new document.
func NewPage(ctx context.Context, name string, props runtime.Props, opts ...runtime.Option) (*Page, error) {
	reg, err := appcomponents.NewRegistry()
	if err != nil {
		return nil, err
	}
	doc := dom.NewDoc()
	host := doc.CreateElement("div")
	host.SetAttribute("id", "app")
	if err := doc.Body().InsertBefore(host, nil); err != nil {
		return nil, err
	}
	opts = append([]runtime.Option{runtime.WithRegistry(reg)}, opts...)
	r, err := runtime.Render(ctx, host, Tree(name, props), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return &Page{doc: doc, host: host, r: r}, nil
}

// HTML serializes the whole document.
func (p *Page) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return dom.HTML(p.doc.Root())
}

// AppHTML serializes the mounted component only.
func (p *Page) AppHTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return dom.InnerHTML(p.host)
}

// Click dispatches a click on the first element matching selector and
// waits for the page to settle.
func (p *Page) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	node := dom.Query(p.host, selector)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return p.r.Trigger(ctx, node, "click")
}

// Snapshot captures every reference bound in the page.
func (p *Page) Snapshot() (*snapshot.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot.Capture(p.r.Refs())
}

// Close unmounts the component.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r.Unmount(p.host)
}

// Resume restores a snapshot and invokes its reference at index, loading
// the target through res. It returns the captured values afterwards, with
// stores and lists in plain form.
func Resume(ctx context.Context, s *snapshot.Snapshot, index int, res *lazyref.Resolver) ([]any, error) {
	refs, err := snapshot.Restore(s)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(refs) {
		return nil, fmt.Errorf("snapshot %s has no reference %d", s.ID, index)
	}
	ref := refs[index]
	target, err := ref.Resolve(ctx, res)
	if err != nil {
		return nil, err
	}
	if err := ref.Invoke(ctx, target, nil); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", ref.Symbol(), err)
	}
	out := make([]any, 0, len(ref.Scope()))
	for _, v := range ref.Scope() {
		switch x := v.(type) {
		case *store.Store:
			out = append(out, x.Snapshot())
		case *store.List:
			out = append(out, x.Snapshot())
		default:
			out = append(out, v)
		}
	}
	return out, nil
}
