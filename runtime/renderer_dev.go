//go:build dev

package runtime

import (
	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/vdom"
)

// callFactory invokes a component factory in development mode.
// In dev mode, panics propagate to aid debugging and fast failure.
func (r *Renderer) callFactory(inst *instance) (*RenderDescriptor, error) {
	return inst.kind.factory(&Setup{inst: inst}, inst.props), nil
}

// callRender invokes a render function in development mode.
func (r *Renderer) callRender(inst *instance, rc *RenderContext) (*vdom.VNode, error) {
	return inst.desc.render(rc), nil
}

// callHandler invokes a resolved handler in development mode.
func (r *Renderer) callHandler(ref *lazyref.Ref, target any, ev *dom.Event) error {
	return ref.Invoke(r.ctx, target, ev)
}

// callCleanup runs an OnUnmount callback in development mode.
func (r *Renderer) callCleanup(inst *instance, fn func()) {
	fn()
}
