// Package vdom is the authoring surface for virtual trees.
//
// A render function returns a VNode tree built from these helpers. The tree
// lives for one render pass: the renderer reconciles it against the host and
// drops it.
package vdom

import (
	"fmt"
	"maps"
)

const (
	// TextTag marks a text node. Its text is in Content.
	TextTag = "#text"
	// FragmentTag marks a fragment, whose children are spliced into the
	// parent's child list.
	FragmentTag = "#fragment"
)

// Component is implemented by component kinds that a VNode can reference.
type Component interface {
	ComponentName() string
}

// VNode represents a virtual DOM node.
type VNode struct {
	Tag        string         // HTML tag name, TextTag or FragmentTag
	Key        string         // Optional reconciliation key among siblings
	Attributes map[string]any // Attributes and "on:<event>" bindings
	Children   []*VNode       // Child nodes
	Content    string         // Text of a text node
	Component  Component      // Set for component nodes
	Props      map[string]any // Props snapshot of a component node
}

// NewVNode creates a new VNode.
func NewVNode(tag string, attributes map[string]any, children []*VNode, content string) *VNode {
	return &VNode{
		Tag:        tag,
		Attributes: attributes,
		Children:   children,
		Content:    content,
	}
}

// H creates an element node.
func H(tag string, attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode(tag, attrs, children, "")
}

// Text creates a text node.
func Text(s string) *VNode {
	return &VNode{Tag: TextTag, Content: s}
}

// Textf creates a text node from a format string.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapping element.
func Fragment(children ...*VNode) *VNode {
	return &VNode{Tag: FragmentTag, Children: children}
}

// Keyed sets the reconciliation key of n and returns it.
func Keyed(key string, n *VNode) *VNode {
	n.Key = key
	return n
}

// IsText reports whether v is a text node.
func (v *VNode) IsText() bool { return v.Tag == TextTag }

// IsFragment reports whether v is a fragment.
func (v *VNode) IsFragment() bool { return v.Tag == FragmentTag }

// IsComponent reports whether v references a component.
func (v *VNode) IsComponent() bool { return v.Component != nil }

// Clone returns a shallow copy of v with its own attribute map.
func (v *VNode) Clone() *VNode {
	c := *v
	c.Attributes = maps.Clone(v.Attributes)
	c.Props = maps.Clone(v.Props)
	c.Children = append([]*VNode(nil), v.Children...)
	return &c
}

// Paragraph creates a <p> VNode with the given text as its child and allows passing attributes.
func Paragraph(text string, attrs map[string]any) *VNode {
	return H("p", attrs, Text(text))
}

// Span creates a <span> VNode holding text.
func Span(text string, attrs map[string]any) *VNode {
	return H("span", attrs, Text(text))
}

// InputText returns a VNode representing an <input type="text"> element.
func InputText(attrs map[string]any) *VNode {
	attrs = maps.Clone(attrs)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	attrs["type"] = "text"
	return H("input", attrs)
}

// Checkbox returns an <input type="checkbox"> whose checked attribute
// follows checked.
func Checkbox(checked bool, attrs map[string]any) *VNode {
	attrs = maps.Clone(attrs)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	attrs["type"] = "checkbox"
	attrs["checked"] = checked
	return H("input", attrs)
}

// Div creates a <div> VNode with the given children and allows passing attributes.
func Div(attrs map[string]any, children ...*VNode) *VNode {
	return H("div", attrs, children...)
}

// Button creates a <button> VNode. A non-empty content becomes its first
// child text node.
func Button(content string, attrs map[string]any, children ...*VNode) *VNode {
	if content != "" {
		children = append([]*VNode{Text(content)}, children...)
	}
	return H("button", attrs, children...)
}
