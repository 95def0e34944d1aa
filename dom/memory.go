package dom

import (
	"errors"
	"slices"
	"sort"
)

var (
	// ErrNotChild is returned when a reference or removed node is not a child.
	ErrNotChild = errors.New("dom: node is not a child of this node")
	// ErrForeignNode is returned when a node from another document is inserted.
	ErrForeignNode = errors.New("dom: node belongs to another document")
	// ErrHierarchy is returned when an insertion would create a cycle or
	// give a text node children.
	ErrHierarchy = errors.New("dom: hierarchy request error")
)

// Compile-time assertions.
var (
	_ Document = (*Doc)(nil)
	_ Node     = (*Element)(nil)
)

// Doc is an in-memory document. It counts every mutation applied to attached
// or detached nodes so callers can assert how much work a render performed.
type Doc struct {
	root      *Element
	head      *Element
	body      *Element
	mutations int
	listeners int
}

// NewDoc creates a document with an html root holding head and body.
func NewDoc() *Doc {
	d := &Doc{}
	d.root = d.newElement("html")
	d.head = d.newElement("head")
	d.body = d.newElement("body")
	d.root.children = []*Element{d.head, d.body}
	d.head.parent = d.root
	d.body.parent = d.root
	return d
}

// Root returns the html element.
func (d *Doc) Root() *Element { return d.root }

// Head returns the head element.
func (d *Doc) Head() Node { return d.head }

// Body returns the body element.
func (d *Doc) Body() *Element { return d.body }

// CreateElement creates a detached element.
func (d *Doc) CreateElement(tag string) Node {
	return d.newElement(tag)
}

// CreateTextNode creates a detached text node.
func (d *Doc) CreateTextNode(text string) Node {
	return &Element{doc: d, typ: TextNode, tag: TextTag, text: text}
}

// Mutations returns the number of mutations applied so far.
func (d *Doc) Mutations() int { return d.mutations }

// ResetMutations zeroes the mutation counter.
func (d *Doc) ResetMutations() { d.mutations = 0 }

// ListenerCount returns the number of registered, not yet removed listeners.
func (d *Doc) ListenerCount() int { return d.listeners }

// Dispatch delivers ev to target and then to each ancestor until a listener
// stops propagation.
func (d *Doc) Dispatch(target Node, ev *Event) {
	ev.Target = target
	for n := target; n != nil; n = n.Parent() {
		el, ok := n.(*Element)
		if !ok {
			return
		}
		ev.CurrentTarget = el
		for _, entry := range slices.Clone(el.listeners[ev.Type]) {
			if !entry.removed {
				entry.fn(ev)
			}
		}
		if ev.stopped {
			return
		}
	}
}

func (d *Doc) newElement(tag string) *Element {
	return &Element{doc: d, typ: ElementNode, tag: tag}
}

type listenerEntry struct {
	fn      Listener
	removed bool
}

// Element is an in-memory element or text node.
type Element struct {
	doc       *Doc
	typ       NodeType
	tag       string
	text      string
	attrs     map[string]string
	parent    *Element
	children  []*Element
	listeners map[string][]*listenerEntry
}

func (e *Element) Type() NodeType { return e.typ }

func (e *Element) Tag() string { return e.tag }

func (e *Element) OwnerDocument() Document { return e.doc }

func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) ChildNodes() []Node {
	out := make([]Node, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

func (e *Element) InsertBefore(child, ref Node) error {
	c, ok := child.(*Element)
	if !ok || c.doc != e.doc {
		return ErrForeignNode
	}
	if e.typ == TextNode {
		return ErrHierarchy
	}
	for p := e; p != nil; p = p.parent {
		if p == c {
			return ErrHierarchy
		}
	}
	if ref != nil {
		r, ok := ref.(*Element)
		if !ok || r.parent != e {
			return ErrNotChild
		}
		if r == c {
			return nil
		}
	}
	if c.parent != nil {
		c.parent.detach(c)
	}
	idx := len(e.children)
	if ref != nil {
		idx = slices.Index(e.children, ref.(*Element))
	}
	e.children = slices.Insert(e.children, idx, c)
	c.parent = e
	e.doc.mutations++
	return nil
}

func (e *Element) RemoveChild(child Node) error {
	c, ok := child.(*Element)
	if !ok || c.parent != e {
		return ErrNotChild
	}
	e.detach(c)
	e.doc.mutations++
	return nil
}

func (e *Element) detach(c *Element) {
	if i := slices.Index(e.children, c); i >= 0 {
		e.children = slices.Delete(e.children, i, i+1)
	}
	c.parent = nil
}

func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) SetAttribute(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	e.doc.mutations++
}

func (e *Element) RemoveAttribute(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	e.doc.mutations++
}

func (e *Element) AttributeNames() []string {
	names := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e *Element) Text() string { return e.text }

func (e *Element) SetText(text string) {
	e.text = text
	e.doc.mutations++
}

func (e *Element) AddEventListener(eventType string, l Listener) func() {
	if e.listeners == nil {
		e.listeners = make(map[string][]*listenerEntry)
	}
	entry := &listenerEntry{fn: l}
	e.listeners[eventType] = append(e.listeners[eventType], entry)
	e.doc.mutations++
	e.doc.listeners++
	return func() {
		if entry.removed {
			return
		}
		entry.removed = true
		list := e.listeners[eventType]
		if i := slices.Index(list, entry); i >= 0 {
			e.listeners[eventType] = slices.Delete(list, i, i+1)
		}
		if len(e.listeners[eventType]) == 0 {
			delete(e.listeners, eventType)
		}
		e.doc.mutations++
		e.doc.listeners--
	}
}

// ListenerTypes returns the event types with at least one listener.
func (e *Element) ListenerTypes() []string {
	types := make([]string, 0, len(e.listeners))
	for t := range e.listeners {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
