package appcomponents

import (
	"context"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// CounterUpdate is the symbol of the counter's click handler.
const CounterUpdate = "Counter_update"

// Counter binds its buttons to the in-memory handler.
var Counter = NewCounter(func() *lazyref.Ref {
	return lazyref.Runtime(CounterUpdate, lazyref.Func(counterUpdate))
})

// DeferredCounter binds its buttons to CounterUpdate, loaded through the
// renderer's loader on the first click of each instance.
var DeferredCounter = NewCounter(func() *lazyref.Ref {
	return lazyref.Deferred(CounterUpdate)
})

// NewCounter declares a my-counter component whose buttons invoke the
// reference built by newUpdate, once per instance. The handler is called
// with the counter props, its state store and the direction of the button.
func NewCounter(newUpdate func() *lazyref.Ref) *runtime.Kind {
	return runtime.Define("my-counter", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		update := newUpdate()
		var p struct {
			Value int `mapstructure:"value"`
		}
		if err := runtime.DecodeProps(props, &p); err != nil {
			panic(err)
		}
		state := s.UseStore(map[string]any{"count": p.Value})
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			scope := map[string]any(rc.Props())
			return vdom.Div(nil,
				vdom.Button("-", map[string]any{
					"class":    "decrement",
					"on:click": update.WithScope(scope, state, map[string]any{"dir": -1}),
				}),
				vdom.Span(rc.Read(state).String("count"), nil),
				vdom.Button("+", map[string]any{
					"class":    "increment",
					"on:click": update.WithScope(scope, state, map[string]any{"dir": 1}),
				}),
			)
		})
	})
}

// counterUpdate moves the count by dir times the step prop, which
// defaults to 1.
func counterUpdate(_ context.Context, c *lazyref.Call) error {
	c.Expect(3)
	props := lazyref.Arg[map[string]any](c, 0)
	state := lazyref.Arg[*store.Store](c, 1)
	args := lazyref.Arg[map[string]any](c, 2)

	step, ok := store.ToInt(props["step"])
	if !ok || step == 0 {
		step = 1
	}
	dir, _ := store.ToInt(args["dir"])
	state.Update("count", func(v any) any {
		n, _ := store.ToInt(v)
		return n + dir*step
	})
	return nil
}
