// Package dom defines the host tree the renderer mutates.
//
// The renderer never keeps DOM state of its own: every element, attribute,
// child ordering and listener lives behind the Node interface. Doc is the
// in-memory implementation used by tests and the command line tools; under
// js/wasm, JSDocument adapts the browser document.
package dom

// NodeType distinguishes element nodes from text nodes.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
)

// TextTag is the tag reported by text nodes.
const TextTag = "#text"

// Listener receives events dispatched to a node.
type Listener func(ev *Event)

// Node is a mutable host tree node.
type Node interface {
	// Type reports whether the node is an element or a text node.
	Type() NodeType
	// Tag returns the lower-case element name, or TextTag for text nodes.
	Tag() string
	// OwnerDocument returns the document that created the node.
	OwnerDocument() Document
	// Parent returns the parent node, or nil when detached.
	Parent() Node
	// ChildNodes returns a snapshot of the node's children in order.
	ChildNodes() []Node
	// InsertBefore inserts child before ref. A nil ref appends.
	// Inserting an attached node moves it.
	InsertBefore(child, ref Node) error
	// RemoveChild detaches child from the node.
	RemoveChild(child Node) error

	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	// AttributeNames returns the attribute names sorted.
	AttributeNames() []string

	// Text returns the content of a text node.
	Text() string
	// SetText replaces the content of a text node.
	SetText(text string)

	// AddEventListener registers l for events of the given type and returns
	// a function that removes it.
	AddEventListener(eventType string, l Listener) (remove func())
}

// Document creates nodes and exposes the document head for style injection.
type Document interface {
	CreateElement(tag string) Node
	CreateTextNode(text string) Node
	Head() Node
}

// Event is a host event travelling from its target up to the root.
type Event struct {
	Type          string
	Target        Node
	CurrentTarget Node
	// Detail carries event specific data such as an input value.
	Detail any

	stopped bool
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string) *Event {
	return &Event{Type: eventType}
}

// StopPropagation prevents the event from reaching ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}
