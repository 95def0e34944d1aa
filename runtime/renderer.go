package runtime

import (
	"context"
	"log/slog"

	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// Renderer mounts virtual trees into host nodes and keeps them current.
type Renderer struct {
	ctx       context.Context
	logger    *slog.Logger
	onError   func(error)
	resolver  *lazyref.Resolver
	registry  *Registry
	styles    StyleInjector
	metrics   *Metrics
	maxPasses int

	doc       dom.Document
	graph     *store.Graph
	nextID    store.ConsumerID
	instances map[store.ConsumerID]*instance
	hosts     map[dom.Node]*instance
	roots     map[dom.Node][]*mounted
	pending   map[store.ConsumerID]*instance
	// stack holds the instances whose render functions are running.
	stack      []*instance
	flushing   bool
	batchDepth int
	calls      []*pendingCall
	loaded     chan struct{}
	styleRefs  map[*Kind]int
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		ctx:       context.Background(),
		logger:    slog.Default(),
		maxPasses: DefaultMaxFlushPasses,
		instances: make(map[store.ConsumerID]*instance),
		hosts:     make(map[dom.Node]*instance),
		roots:     make(map[dom.Node][]*mounted),
		pending:   make(map[store.ConsumerID]*instance),
		loaded:    make(chan struct{}, 1),
		styleRefs: make(map[*Kind]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onError == nil {
		r.onError = func(err error) {
			r.logger.Error("render pipeline error", "error", err)
		}
	}
	r.graph = store.NewGraph(r.markDirty)
	return r
}

// Render mounts tree into host with a new renderer and settles: it returns
// once the initial mount, the re-renders it chained and any handler loads
// it started are done.
func Render(ctx context.Context, host dom.Node, tree *vdom.VNode, opts ...Option) (*Renderer, error) {
	r := NewRenderer(append([]Option{WithContext(ctx)}, opts...)...)
	if err := r.Mount(host, tree); err != nil {
		return r, err
	}
	return r, r.Settle(ctx)
}

// Mount reconciles tree against what the renderer previously mounted into
// host. A root of the same kind (or tag) and key is updated in place;
// anything else is replaced. An invalid tree is reported, returned and
// leaves host untouched.
func (r *Renderer) Mount(host dom.Node, tree *vdom.VNode) error {
	r.doc = host.OwnerDocument()
	if r.styles == nil {
		r.styles = NewDocumentStyles(r.doc)
	}
	next := vdom.Normalize([]*vdom.VNode{tree})
	if err := r.validate(next, nil, "root"); err != nil {
		r.report(err)
		return err
	}
	r.roots[host] = r.reconcileChildren(host, r.roots[host], next, nil)
	r.logger.Debug("mounted tree", "host", host.Tag(), "instances", len(r.instances))
	if r.batchDepth == 0 {
		r.Flush()
	}
	return nil
}

// Unmount tears down everything mounted into host.
func (r *Renderer) Unmount(host dom.Node) {
	roots, ok := r.roots[host]
	if !ok {
		return
	}
	for _, m := range roots {
		r.teardown(m)
		r.removeNode(host, m.node)
	}
	delete(r.roots, host)
	r.logger.Debug("unmounted tree", "host", host.Tag(), "instances", len(r.instances))
}

// Batch runs fn and flushes once afterwards, coalescing the store writes of
// every handler dispatched inside fn.
func (r *Renderer) Batch(fn func()) {
	r.batchDepth++
	defer func() {
		r.batchDepth--
		if r.batchDepth == 0 {
			r.Flush()
		}
	}()
	fn()
}

// Trigger dispatches an event of the given type at node and settles.
// The host document must be able to dispatch events, as dom.Doc can.
func (r *Renderer) Trigger(ctx context.Context, node dom.Node, eventType string) error {
	d, ok := node.OwnerDocument().(interface {
		Dispatch(target dom.Node, ev *dom.Event)
	})
	if !ok {
		return ErrNoDispatcher
	}
	prev := r.ctx
	r.ctx = ctx
	d.Dispatch(node, dom.NewEvent(eventType))
	r.ctx = prev
	return r.Settle(ctx)
}

// Graph exposes the dependency graph for inspection.
func (r *Renderer) Graph() *store.Graph { return r.graph }

// Resolver returns the resolver used for deferred references, or nil.
func (r *Renderer) Resolver() *lazyref.Resolver { return r.resolver }

// InstanceState returns the state of the component instance whose host
// element is node. Nodes that never hosted an instance report Unmounted.
func (r *Renderer) InstanceState(node dom.Node) State {
	if inst, ok := r.hosts[node]; ok {
		return inst.state
	}
	return Unmounted
}

// Instances returns the number of mounted component instances.
func (r *Renderer) Instances() int { return len(r.instances) }

// Refs returns the references bound to live elements, in document order.
func (r *Renderer) Refs() []*lazyref.Ref {
	var out []*lazyref.Ref
	var walk func(list []*mounted)
	walk = func(list []*mounted) {
		for _, m := range list {
			for _, event := range sortedKeys(m.bindings) {
				out = append(out, m.bindings[event].ref)
			}
			if m.inst != nil {
				walk(m.inst.children)
			} else {
				walk(m.children)
			}
		}
	}
	for _, roots := range r.roots {
		walk(roots)
	}
	return out
}

func (r *Renderer) report(err error) {
	r.onError(err)
}
