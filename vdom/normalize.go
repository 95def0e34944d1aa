package vdom

import (
	"reflect"

	"github.com/vcrobe/lazydom/lazyref"
)

// Normalize flattens fragments and drops nil entries, returning the child
// list as the host will see it. Nested children are left untouched.
func Normalize(children []*VNode) []*VNode {
	out := make([]*VNode, 0, len(children))
	var walk func(list []*VNode)
	walk = func(list []*VNode) {
		for _, c := range list {
			switch {
			case c == nil:
			case c.IsFragment():
				walk(c.Children)
			default:
				out = append(out, c)
			}
		}
	}
	walk(children)
	return out
}

// Equal reports whether two trees are structurally identical: same tags,
// keys, text, attributes, bindings and component props. Bindings compare
// equal when they name the same symbol over identical captured values.
func Equal(a, b *VNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || a.Key != b.Key || a.Content != b.Content {
		return false
	}
	if a.Component != b.Component {
		return false
	}
	if !valuesEqual(a.Attributes, b.Attributes) || !valuesEqual(a.Props, b.Props) {
		return false
	}
	ac, bc := Normalize(a.Children), Normalize(b.Children)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValueEqual(av, bv) {
			return false
		}
	}
	return true
}

// ValueEqual compares attribute or prop values. References compare by
// symbol and captured values; pointers compare by identity. Values holding
// something uncomparable, such as a struct with a slice in an interface
// field, compare deeply.
func ValueEqual(a, b any) bool {
	ra, aRef := a.(*lazyref.Ref)
	rb, bRef := b.(*lazyref.Ref)
	if aRef || bRef {
		if !aRef || !bRef {
			return false
		}
		if ra == rb {
			return true
		}
		if ra.Symbol() != rb.Symbol() || len(ra.Scope()) != len(rb.Scope()) {
			return false
		}
		for i := range ra.Scope() {
			if !ValueEqual(ra.Scope()[i], rb.Scope()[i]) {
				return false
			}
		}
		return true
	}
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
