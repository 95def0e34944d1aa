// Package appcomponents holds the demo components served by the lazydom
// command and mounted by the wasm entry point.
package appcomponents

import (
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/vdom"
)

// HelloWorld has no tag, so it mounts into a div.
var HelloWorld = runtime.Define("", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
	s.WithStyles(lazyref.Runtime("HelloWorld_styles", `{}`))
	return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
		return vdom.Span("Hello World", nil)
	})
})
