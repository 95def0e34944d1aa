package runtime

import (
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// RenderContext is handed to a render function for one pass. Reads made
// through it are recorded as dependencies of the rendering instance.
type RenderContext struct {
	r    *Renderer
	inst *instance
}

var _ store.Tracker = (*RenderContext)(nil)

// TrackRead records that the instance read prop of src.
func (rc *RenderContext) TrackRead(src store.Source, prop string) {
	rc.r.graph.Track(rc.inst.id, src, prop)
}

// Read returns a tracked view of s.
func (rc *RenderContext) Read(s *store.Store) *store.View {
	return s.Track(rc)
}

// ReadList returns a tracked view of l.
func (rc *RenderContext) ReadList(l *store.List) *store.ListView {
	return l.Track(rc)
}

// Props returns the props of the current invocation.
func (rc *RenderContext) Props() Props {
	return rc.inst.props
}

// Prop returns a single prop.
func (rc *RenderContext) Prop(name string) any {
	return rc.inst.props[name]
}

// PropStore returns a tracked view of a store-valued prop, or nil.
func (rc *RenderContext) PropStore(name string) *store.View {
	if s, ok := rc.inst.props[name].(*store.Store); ok {
		return rc.Read(s)
	}
	return nil
}

// PropList returns a tracked view of a list-valued prop, or nil.
func (rc *RenderContext) PropList(name string) *store.ListView {
	if l, ok := rc.inst.props[name].(*store.List); ok {
		return rc.ReadList(l)
	}
	return nil
}

// Children returns the slot content the component was invoked with.
func (rc *RenderContext) Children() []*vdom.VNode {
	return rc.inst.slot
}
