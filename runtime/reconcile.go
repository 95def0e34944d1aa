package runtime

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/events"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// styleScopeAttr marks the host element of a component with styles.
const styleScopeAttr = "q:sstyle"

// validate checks a normalized child list before anything touches the host.
// Component nodes referencing a kind by name are resolved in place.
func (r *Renderer) validate(list []*vdom.VNode, owner *instance, path string) error {
	for i, v := range list {
		at := fmt.Sprintf("%s/%s[%d]", path, v.Tag, i)
		switch {
		case v.IsText():
		case v.IsComponent():
			kind, err := r.resolveKind(v)
			if err != nil {
				return r.reconcileError(owner, at, err.Error())
			}
			v.Component = kind
			v.Tag = kind.HostTag()
		default:
			if v.Tag == "" {
				return r.reconcileError(owner, at, "element without tag")
			}
			for _, key := range sortedKeys(v.Attributes) {
				if !events.IsBinding(key) {
					continue
				}
				if _, ok := events.Name(key); !ok {
					return r.reconcileError(owner, at, fmt.Sprintf("malformed binding key %q", key))
				}
				switch ref := v.Attributes[key].(type) {
				case nil:
				case *lazyref.Ref:
					if ref == nil {
						return r.reconcileError(owner, at, fmt.Sprintf("nil reference bound to %q", key))
					}
				default:
					return r.reconcileError(owner, at, fmt.Sprintf("%q is bound to %T, not a reference", key, ref))
				}
			}
			if err := r.validate(vdom.Normalize(v.Children), owner, at); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) resolveKind(v *vdom.VNode) (*Kind, error) {
	switch c := v.Component.(type) {
	case *Kind:
		return c, nil
	case kindName:
		if k, ok := r.registry.Lookup(string(c)); ok {
			return k, nil
		}
		return nil, fmt.Errorf("unknown component %q", string(c))
	}
	return nil, fmt.Errorf("unsupported component %T", v.Component)
}

func (r *Renderer) reconcileError(owner *instance, path, reason string) error {
	err := &ReconciliationError{Path: path, Reason: reason}
	if owner != nil {
		err.Component = owner.name()
	}
	return err
}

// reconcileChildren patches parent's managed children from old to next and
// returns the new mounted list. Keyed nodes match by key, the rest match by
// position among unkeyed siblings. A match of another type is replaced.
func (r *Renderer) reconcileChildren(parent dom.Node, old []*mounted, next []*vdom.VNode, owner *instance) []*mounted {
	keyed := make(map[string]*mounted)
	var unkeyed []*mounted
	for _, m := range old {
		if m.v.Key != "" {
			keyed[m.v.Key] = m
		} else {
			unkeyed = append(unkeyed, m)
		}
	}
	used := make(map[*mounted]bool, len(old))
	out := make([]*mounted, 0, len(next))
	for _, v := range next {
		var match *mounted
		if v.Key != "" {
			match = keyed[v.Key]
		} else if len(unkeyed) > 0 {
			match = unkeyed[0]
			unkeyed = unkeyed[1:]
		}
		if match != nil && !used[match] && compatible(match, v) {
			used[match] = true
			r.patch(match, v, owner)
			out = append(out, match)
			continue
		}
		out = append(out, r.create(v, owner))
	}
	for _, m := range old {
		if !used[m] {
			r.teardown(m)
			r.removeNode(parent, m.node)
		}
	}
	r.placeChildren(parent, out)
	return out
}

func compatible(m *mounted, v *vdom.VNode) bool {
	if m.v.Key != v.Key {
		return false
	}
	switch {
	case v.IsText():
		return m.v.IsText()
	case v.IsComponent():
		return m.inst != nil && m.inst.kind == v.Component
	}
	return m.inst == nil && !m.v.IsText() && m.v.Tag == v.Tag
}

// placeChildren orders parent's children to match list, walking from the
// end so nodes already in place are never moved.
func (r *Renderer) placeChildren(parent dom.Node, list []*mounted) {
	current := parent.ChildNodes()
	var ref dom.Node
	for i := len(list) - 1; i >= 0; i-- {
		node := list[i].node
		if next, ok := nextSibling(current, node); !ok || next != ref {
			if err := parent.InsertBefore(node, ref); err != nil {
				r.logger.Warn("failed to place node", "tag", node.Tag(), "error", err)
			}
			r.metrics.domOp("insert")
			current = parent.ChildNodes()
		}
		ref = node
	}
}

func nextSibling(children []dom.Node, node dom.Node) (dom.Node, bool) {
	for i, c := range children {
		if c == node {
			if i+1 < len(children) {
				return children[i+1], true
			}
			return nil, true
		}
	}
	return nil, false
}

func (r *Renderer) create(v *vdom.VNode, owner *instance) *mounted {
	m := &mounted{v: v}
	switch {
	case v.IsText():
		m.node = r.doc.CreateTextNode(v.Content)
	case v.IsComponent():
		kind := v.Component.(*Kind)
		m.node = r.doc.CreateElement(kind.HostTag())
		m.inst = r.newInstance(kind, v, m.node, owner)
		r.mountInstance(m.inst)
	default:
		m.node = r.doc.CreateElement(v.Tag)
		r.patchAttributes(m, v.Attributes, owner)
		m.children = r.reconcileChildren(m.node, nil, vdom.Normalize(v.Children), owner)
	}
	return m
}

func (r *Renderer) patch(m *mounted, v *vdom.VNode, owner *instance) {
	prev := m.v
	m.v = v
	switch {
	case v.IsText():
		if m.node.Text() != v.Content {
			m.node.SetText(v.Content)
			r.metrics.domOp("set_text")
		}
	case v.IsComponent():
		inst := m.inst
		if propsEqual(prev.Props, v.Props) && slotEqual(prev.Children, v.Children) {
			return
		}
		inst.props = v.Props
		inst.slot = v.Children
		r.renderInstance(inst)
	default:
		r.patchAttributes(m, v.Attributes, owner)
		m.children = r.reconcileChildren(m.node, m.children, vdom.Normalize(v.Children), owner)
	}
}

func propsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !vdom.ValueEqual(av, bv) {
			return false
		}
	}
	return true
}

func slotEqual(a, b []*vdom.VNode) bool {
	return vdom.Equal(vdom.Fragment(a...), vdom.Fragment(b...))
}

// patchAttributes brings the element's attributes and bindings in line with
// attrs. Values are compared against the host, so an unchanged attribute
// costs no mutation. true renders as an empty attribute; false and nil
// remove it.
func (r *Renderer) patchAttributes(m *mounted, attrs map[string]any, owner *instance) {
	names := make(map[string]struct{}, len(attrs))
	for k := range attrs {
		names[k] = struct{}{}
	}
	for _, k := range m.node.AttributeNames() {
		names[k] = struct{}{}
	}
	for event := range m.bindings {
		names[events.Attr(event)] = struct{}{}
	}
	for _, key := range slices.Sorted(maps.Keys(names)) {
		if event, ok := events.Name(key); ok {
			ref, _ := attrs[key].(*lazyref.Ref)
			r.bind(m, event, ref, owner)
			continue
		}
		value, present := attrValue(attrs[key])
		cur, has := m.node.Attribute(key)
		switch {
		case !present && has:
			m.node.RemoveAttribute(key)
			r.metrics.domOp("remove_attr")
		case present && (!has || cur != value):
			m.node.SetAttribute(key, value)
			r.metrics.domOp("set_attr")
		}
	}
}

func attrValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", x
	}
	return store.Format(v), true
}

// bind points the element's binding for event at ref, installing the host
// listener only the first time. A nil ref removes the binding.
func (r *Renderer) bind(m *mounted, event string, ref *lazyref.Ref, owner *instance) {
	b := m.bindings[event]
	switch {
	case ref == nil && b != nil:
		b.live = false
		delete(m.bindings, event)
		if remove := m.removers[event]; remove != nil {
			remove()
			r.metrics.domOp("unlisten")
		}
		delete(m.removers, event)
	case ref == nil:
	case b != nil:
		b.ref = ref
		b.owner = owner
	default:
		if m.bindings == nil {
			m.bindings = make(map[string]*binding)
			m.removers = make(map[string]func())
		}
		m.bindings[event] = &binding{event: event, ref: ref, owner: owner, live: true}
		m.removers[event] = r.listen(m, event)
	}
}

// teardown releases everything under m without detaching m.node itself.
func (r *Renderer) teardown(m *mounted) {
	for _, event := range sortedKeys(m.bindings) {
		m.bindings[event].live = false
		m.removers[event]()
		r.metrics.domOp("unlisten")
	}
	clear(m.bindings)
	clear(m.removers)
	if m.inst != nil {
		r.unmountInstance(m.inst)
		return
	}
	for _, c := range m.children {
		r.teardown(c)
	}
}

func (r *Renderer) removeNode(parent, node dom.Node) {
	if err := parent.RemoveChild(node); err != nil {
		r.logger.Warn("failed to remove node", "tag", node.Tag(), "error", err)
		return
	}
	r.metrics.domOp("remove")
}

func (r *Renderer) newInstance(kind *Kind, v *vdom.VNode, host dom.Node, parent *instance) *instance {
	r.nextID++
	inst := &instance{
		id:     r.nextID,
		kind:   kind,
		props:  v.Props,
		slot:   v.Children,
		host:   host,
		parent: parent,
	}
	if parent != nil {
		inst.depth = parent.depth + 1
	}
	return inst
}

func (r *Renderer) mountInstance(inst *instance) {
	inst.state = Mounting
	r.instances[inst.id] = inst
	r.hosts[inst.host] = inst

	desc, err := r.callFactory(inst)
	if err == nil && desc == nil {
		err = fmt.Errorf("factory returned no render descriptor")
	}
	if err != nil {
		inst.state = MountedClean
		r.metrics.renderFailed(inst.name())
		r.report(&RenderError{Component: inst.name(), Instance: uint64(inst.id), Err: err})
		return
	}
	inst.desc = desc
	r.attachStyles(inst)
	r.renderInstance(inst)
}

// renderInstance runs the render function and, when it produced a valid
// tree, patches the host. On failure the previous output stays in place.
func (r *Renderer) renderInstance(inst *instance) {
	if inst.desc == nil {
		inst.state = MountedClean
		return
	}
	start := time.Now()
	r.graph.Clear(inst.id)
	r.stack = append(r.stack, inst)
	out, err := r.callRender(inst, &RenderContext{r: r, inst: inst})
	r.stack = r.stack[:len(r.stack)-1]
	// Marks raised while reconciling below, by child instances, must leave
	// the instance dirty.
	inst.state = MountedClean
	if err != nil {
		r.metrics.renderFailed(inst.name())
		r.report(&RenderError{Component: inst.name(), Instance: uint64(inst.id), Err: err})
		return
	}
	next := vdom.Normalize([]*vdom.VNode{out})
	if err := r.validate(next, inst, inst.name()); err != nil {
		r.metrics.renderFailed(inst.name())
		r.report(err)
		return
	}
	inst.children = r.reconcileChildren(inst.host, inst.children, next, inst)
	r.metrics.rendered(inst.name(), time.Since(start))
}

func (r *Renderer) unmountInstance(inst *instance) {
	inst.state = Unmounting
	for _, c := range inst.children {
		r.teardown(c)
	}
	inst.children = nil
	r.graph.Clear(inst.id)
	r.cancel(inst)
	for i := len(inst.cleanups) - 1; i >= 0; i-- {
		r.callCleanup(inst, inst.cleanups[i])
	}
	inst.cleanups = nil
	r.releaseStyles(inst)
	delete(r.instances, inst.id)
	delete(r.hosts, inst.host)
	inst.state = Unmounted
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
