package appcomponents

import (
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/vdom"
)

// GreeterProps are the optional props of Greeter.
type GreeterProps struct {
	Salutation string `mapstructure:"salutation"`
	Name       string `mapstructure:"name"`
}

// Greeter renders "<salutation> <name> (<count>) " in an inner div, with a
// local counter.
var Greeter = runtime.Define("", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
	state := s.UseStore(map[string]any{"count": 0})
	return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
		var p GreeterProps
		if err := runtime.DecodeProps(rc.Props(), &p); err != nil {
			panic(err)
		}
		return vdom.Div(nil, vdom.Textf("%s %s (%d) ", p.Salutation, p.Name, rc.Read(state).Int("count")))
	})
})
