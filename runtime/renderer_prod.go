//go:build !dev

package runtime

import (
	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/vdom"
)

// callFactory invokes a component factory in production mode.
// In production mode, panics are recovered and returned as errors so one
// component cannot take down the tree.
func (r *Renderer) callFactory(inst *instance) (desc *RenderDescriptor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()
	return inst.kind.factory(&Setup{inst: inst}, inst.props), nil
}

// callRender invokes a render function in production mode.
func (r *Renderer) callRender(inst *instance, rc *RenderContext) (out *vdom.VNode, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()
	return inst.desc.render(rc), nil
}

// callHandler invokes a resolved handler in production mode.
func (r *Renderer) callHandler(ref *lazyref.Ref, target any, ev *dom.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()
	return ref.Invoke(r.ctx, target, ev)
}

// callCleanup runs an OnUnmount callback in production mode.
func (r *Renderer) callCleanup(inst *instance, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.report(&RenderError{Component: inst.name(), Instance: uint64(inst.id), Err: panicError(rec)})
		}
	}()
	fn()
}
