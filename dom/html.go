package dom

import (
	"html"
	"strings"
)

// voidElements never carry children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// HTML serializes n and its subtree. Attributes are written in name order
// and attributes with empty values are written bare, so the output is
// stable across runs.
func HTML(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n Node) string {
	var sb strings.Builder
	for _, c := range n.ChildNodes() {
		writeNode(&sb, c)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	if n.Type() == TextNode {
		sb.WriteString(html.EscapeString(n.Text()))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag())
	for _, name := range n.AttributeNames() {
		v, _ := n.Attribute(name)
		sb.WriteByte(' ')
		sb.WriteString(name)
		if v != "" {
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(v))
			sb.WriteByte('"')
		}
	}
	sb.WriteByte('>')
	if voidElements[n.Tag()] {
		return
	}
	for _, c := range n.ChildNodes() {
		writeNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag())
	sb.WriteByte('>')
}

// TextContent concatenates the text of every text node under n.
func TextContent(n Node) string {
	if n.Type() == TextNode {
		return n.Text()
	}
	var sb strings.Builder
	for _, c := range n.ChildNodes() {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}
