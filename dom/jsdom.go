//go:build js && wasm

package dom

import (
	"sort"
	"strconv"
	"syscall/js"
)

// nodeIDProp is the JS property holding the wrapper id of a node, so the
// same JS object always maps back to the same Go wrapper.
const nodeIDProp = "__lazydomID"

// JSDocument adapts the browser document to Document.
type JSDocument struct {
	doc   js.Value
	nodes map[int]*jsNode
	next  int
}

var _ Document = (*JSDocument)(nil)

// NewJSDocument wraps js.Global().document.
func NewJSDocument() *JSDocument {
	return &JSDocument{
		doc:   js.Global().Get("document"),
		nodes: make(map[int]*jsNode),
	}
}

// QuerySelector returns the first element matching the CSS selector, or nil.
func (d *JSDocument) QuerySelector(selector string) Node {
	v := d.doc.Call("querySelector", selector)
	if !v.Truthy() {
		return nil
	}
	return d.wrap(v)
}

func (d *JSDocument) CreateElement(tag string) Node {
	return d.wrap(d.doc.Call("createElement", tag))
}

func (d *JSDocument) CreateTextNode(text string) Node {
	return d.wrap(d.doc.Call("createTextNode", text))
}

func (d *JSDocument) Head() Node {
	return d.wrap(d.doc.Get("head"))
}

func (d *JSDocument) wrap(v js.Value) *jsNode {
	if id := v.Get(nodeIDProp); id.Type() == js.TypeNumber {
		if n, ok := d.nodes[id.Int()]; ok {
			return n
		}
	}
	d.next++
	n := &jsNode{doc: d, v: v}
	v.Set(nodeIDProp, d.next)
	d.nodes[d.next] = n
	return n
}

type jsNode struct {
	doc *JSDocument
	v   js.Value
}

func (n *jsNode) Type() NodeType {
	// Node.TEXT_NODE
	if n.v.Get("nodeType").Int() == 3 {
		return TextNode
	}
	return ElementNode
}

func (n *jsNode) Tag() string {
	if n.Type() == TextNode {
		return TextTag
	}
	return js.Global().Get("String").New(n.v.Get("tagName")).Call("toLowerCase").String()
}

func (n *jsNode) OwnerDocument() Document { return n.doc }

func (n *jsNode) Parent() Node {
	p := n.v.Get("parentNode")
	if !p.Truthy() {
		return nil
	}
	return n.doc.wrap(p)
}

func (n *jsNode) ChildNodes() []Node {
	list := n.v.Get("childNodes")
	out := make([]Node, list.Length())
	for i := range out {
		out[i] = n.doc.wrap(list.Index(i))
	}
	return out
}

func (n *jsNode) InsertBefore(child, ref Node) error {
	c, ok := child.(*jsNode)
	if !ok {
		return ErrForeignNode
	}
	refValue := js.Null()
	if ref != nil {
		r, ok := ref.(*jsNode)
		if !ok {
			return ErrForeignNode
		}
		refValue = r.v
	}
	n.v.Call("insertBefore", c.v, refValue)
	return nil
}

func (n *jsNode) RemoveChild(child Node) error {
	c, ok := child.(*jsNode)
	if !ok {
		return ErrForeignNode
	}
	n.v.Call("removeChild", c.v)
	if id := c.v.Get(nodeIDProp); id.Type() == js.TypeNumber && !c.v.Get("isConnected").Bool() {
		delete(n.doc.nodes, id.Int())
	}
	return nil
}

func (n *jsNode) Attribute(name string) (string, bool) {
	if !n.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return n.v.Call("getAttribute", name).String(), true
}

func (n *jsNode) SetAttribute(name, value string) {
	n.v.Call("setAttribute", name, value)
	// Form state lives in properties, not attributes.
	switch name {
	case "checked":
		n.v.Set("checked", true)
	case "value":
		n.v.Set("value", value)
	}
}

func (n *jsNode) RemoveAttribute(name string) {
	n.v.Call("removeAttribute", name)
	if name == "checked" {
		n.v.Set("checked", false)
	}
}

func (n *jsNode) AttributeNames() []string {
	attrs := n.v.Get("attributes")
	names := make([]string, attrs.Length())
	for i := range names {
		names[i] = attrs.Index(i).Get("name").String()
	}
	sort.Strings(names)
	return names
}

func (n *jsNode) Text() string {
	return n.v.Get("data").String()
}

func (n *jsNode) SetText(text string) {
	n.v.Set("data", text)
}

// AddEventListener wraps l in a js.Func. The returned remove function
// detaches the listener and releases the js.Func.
func (n *jsNode) AddEventListener(eventType string, l Listener) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := &Event{Type: eventType, CurrentTarget: n}
		if len(args) > 0 {
			raw := args[0]
			if t := raw.Get("target"); t.Truthy() {
				ev.Target = n.doc.wrap(t)
				if v := t.Get("value"); v.Type() == js.TypeString {
					ev.Detail = v.String()
				}
			}
		}
		l(ev)
		if ev.Stopped() && len(args) > 0 {
			args[0].Call("stopPropagation")
		}
		return nil
	})
	n.v.Call("addEventListener", eventType, cb)
	released := false
	return func() {
		if released {
			return
		}
		released = true
		n.v.Call("removeEventListener", eventType, cb)
		cb.Release()
	}
}

func (n *jsNode) String() string {
	return n.Tag() + "#" + strconv.Itoa(n.v.Get(nodeIDProp).Int())
}
