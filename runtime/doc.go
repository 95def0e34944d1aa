// Package runtime is the component render pipeline.
//
// Components are declared with Define. A factory runs once per instance to
// create local stores and register styles, then returns the render function
// through OnRender:
//
//	var Counter = runtime.Define("my-counter", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
//		state := s.UseStore(map[string]any{"count": props["value"]})
//		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
//			return vdom.Span(rc.Read(state).String("count"), nil)
//		})
//	})
//
// Render mounts a tree into a host node. Reads made through the
// RenderContext become dependency edges, and store writes mark exactly the
// dependent instances dirty. The Renderer re-renders dirty instances at the
// next flush, parents first, and patches the host in place.
//
// Event bindings are attributes named "on:<event>" holding a *lazyref.Ref.
// When the event fires, the reference is resolved and invoked with its
// captured scope. Store writes made by the handler are flushed right after.
//
// A Renderer is single-threaded: Mount, Flush, Settle and event dispatch
// must run on one goroutine.
package runtime
