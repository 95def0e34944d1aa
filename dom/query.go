package dom

import (
	"slices"
	"strings"
)

// selector is a compound simple selector: tag, #id and any number of .class.
type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) selector {
	var sel selector
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, ".#")
	if i < 0 {
		sel.tag = s
		return sel
	}
	sel.tag = s[:i]
	rest := s[i:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		rest = rest[end:]
		switch kind {
		case '#':
			sel.id = part
		case '.':
			sel.classes = append(sel.classes, part)
		}
	}
	return sel
}

func (sel selector) matches(n Node) bool {
	if n.Type() != ElementNode {
		return false
	}
	if sel.tag != "" && sel.tag != "*" && n.Tag() != sel.tag {
		return false
	}
	if sel.id != "" {
		if id, _ := n.Attribute("id"); id != sel.id {
			return false
		}
	}
	if len(sel.classes) > 0 {
		class, _ := n.Attribute("class")
		have := strings.Fields(class)
		for _, c := range sel.classes {
			if !slices.Contains(have, c) {
				return false
			}
		}
	}
	return true
}

// Query returns the first descendant of root matching the selector in
// document order, or nil. Supported selectors are compounds of a tag name,
// one #id and any number of .class parts, e.g. "button.decrement".
func Query(root Node, sel string) Node {
	all := queryAll(root, parseSelector(sel), true)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// QueryAll returns every descendant of root matching the selector.
func QueryAll(root Node, sel string) []Node {
	return queryAll(root, parseSelector(sel), false)
}

func queryAll(root Node, sel selector, first bool) []Node {
	var out []Node
	var walk func(n Node) bool
	walk = func(n Node) bool {
		for _, c := range n.ChildNodes() {
			if sel.matches(c) {
				out = append(out, c)
				if first {
					return true
				}
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return out
}
