package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// errorSink collects everything the renderer reports.
type errorSink struct {
	errs []error
}

func (s *errorSink) handle(err error) { s.errs = append(s.errs, err) }

func newHost(t *testing.T) (*dom.Doc, dom.Node) {
	t.Helper()
	doc := dom.NewDoc()
	app := doc.CreateElement("div")
	require.NoError(t, doc.Body().InsertBefore(app, nil))
	return doc, app
}

func addToCount(_ context.Context, c *lazyref.Call) error {
	c.Expect(2)
	state := lazyref.Arg[*store.Store](c, 0)
	delta := lazyref.Arg[int](c, 1)
	state.Update("count", func(v any) any {
		n, _ := store.ToInt(v)
		return n + delta
	})
	return nil
}

// counterKind renders a count with buttons that move it by step. update is
// the reference the buttons bind, rescoped per instance.
func counterKind(update *lazyref.Ref, renders *int) *runtime.Kind {
	return runtime.Define("my-counter", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		var p struct {
			Value int `mapstructure:"value"`
			Step  int `mapstructure:"step"`
		}
		if err := runtime.DecodeProps(props, &p); err != nil {
			panic(err)
		}
		state := s.UseStore(map[string]any{"count": p.Value})
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			if renders != nil {
				*renders++
			}
			return vdom.Fragment(
				vdom.Button("-", map[string]any{"class": "decrement", "on:click": update.WithScope(state, -p.Step)}),
				vdom.Span(rc.Read(state).String("count"), nil),
				vdom.Button("+", map[string]any{"class": "increment", "on:click": update.WithScope(state, p.Step)}),
			)
		})
	})
}

func TestRender_CounterDecrementsByStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	counter := counterKind(lazyref.Runtime("Counter_update", lazyref.Func(addToCount)), nil)

	// Act
	r, err := runtime.Render(ctx, app, counter.New(runtime.Props{"value": 15, "step": 5}))
	require.NoError(t, err)

	// Assert
	assert.Equal(t,
		`<my-counter><button class="decrement">-</button><span>15</span><button class="increment">+</button></my-counter>`,
		dom.InnerHTML(app))
	assert.Equal(t, 2, doc.ListenerCount())

	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button.decrement"), "click"))
	assert.Equal(t, "10", dom.TextContent(dom.Query(app, "span")))

	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button.increment"), "click"))
	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button.increment"), "click"))
	assert.Equal(t, "20", dom.TextContent(dom.Query(app, "span")))
}

func readerKind(prop string, renders *int) *runtime.Kind {
	return runtime.Define("", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			*renders++
			return vdom.Span(rc.PropStore("state").String(prop), nil)
		})
	})
}

func TestRenderer_OnlyDependentsRerender(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	state := store.New(map[string]any{"a": 1, "b": "x"})
	var aRenders, bRenders int
	a, b := readerKind("a", &aRenders), readerKind("b", &bRenders)
	r, err := runtime.Render(ctx, app, vdom.Fragment(
		a.New(runtime.Props{"state": state}),
		b.New(runtime.Props{"state": state}),
	))
	require.NoError(t, err)
	require.Equal(t, `<div><span>1</span></div><div><span>x</span></div>`, dom.InnerHTML(app))

	// Act
	state.Set("a", 2)
	assert.Equal(t, 1, r.Pending())
	r.Flush()

	// Assert
	assert.Equal(t, 2, aRenders)
	assert.Equal(t, 1, bRenders)
	assert.Len(t, r.Graph().Dependents(state, "a"), 1)
	assert.Len(t, r.Graph().Dependents(state, "b"), 1)
	assert.Equal(t, `<div><span>2</span></div><div><span>x</span></div>`, dom.InnerHTML(app))
}

func TestRenderer_UnchangedRerenderIsIdempotent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	state := store.New(map[string]any{"n": 1})
	renders := 0
	sign := runtime.Define("sign", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			renders++
			positive := rc.PropStore("state").Int("n") > 0
			return vdom.Div(map[string]any{"class": "sign", "data-positive": positive},
				vdom.Checkbox(positive, nil),
				vdom.Text("sign"),
			)
		})
	})
	r, err := runtime.Render(ctx, app, sign.New(runtime.Props{"state": state}))
	require.NoError(t, err)
	doc.ResetMutations()

	// Act
	state.Set("n", 2)
	r.Flush()
	require.NoError(t, r.Mount(app, sign.New(runtime.Props{"state": state})))

	// Assert
	assert.Equal(t, 2, renders)
	assert.Zero(t, doc.Mutations())
	assert.Equal(t, `<sign><div class="sign" data-positive><input checked type="checkbox">sign</div></sign>`, dom.InnerHTML(app))
}

func TestRenderer_MountUnmountRoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	cleaned := 0
	styled := runtime.Define("styled-counter", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		s.WithStyles(lazyref.Runtime("styled_css", "span { color: red; }"))
		s.OnUnmount(func() { cleaned++ })
		state := s.UseStore(map[string]any{"count": 0})
		inc := lazyref.Runtime("inc", lazyref.Func(addToCount), state, 1)
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			return vdom.Button(rc.Read(state).String("count"), map[string]any{"on:click": inc})
		})
	})
	r, err := runtime.Render(ctx, app, vdom.Fragment(styled.New(nil), styled.New(nil)))
	require.NoError(t, err)
	key := styled.StyleKey()
	require.Len(t, doc.Head().ChildNodes(), 1)
	assert.Equal(t, `<style q:style="`+key+`">span { color: red; }</style>`, dom.InnerHTML(doc.Head()))
	for _, host := range dom.QueryAll(app, "styled-counter") {
		v, _ := host.Attribute("q:sstyle")
		assert.Equal(t, key, v)
		assert.Equal(t, runtime.MountedClean, r.InstanceState(host))
	}
	hosts := dom.QueryAll(app, "styled-counter")

	// Act
	r.Unmount(app)

	// Assert
	assert.Empty(t, app.ChildNodes())
	assert.Empty(t, doc.Head().ChildNodes())
	assert.Zero(t, doc.ListenerCount())
	assert.Zero(t, r.Instances())
	assert.Equal(t, 2, cleaned)
	for _, host := range hosts {
		assert.Equal(t, runtime.Unmounted, r.InstanceState(host))
	}
}

func TestRenderer_KeyedReorderMovesNodes(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	state := store.New(map[string]any{"order": []any{"a", "b", "c"}})
	list := runtime.Define("ul", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			var items []*vdom.VNode
			rc.PropStore("state").List("order").Each(func(_ int, item any) {
				name := store.Format(item)
				items = append(items, vdom.Keyed(name, vdom.H("li", nil, vdom.Text(name))))
			})
			return vdom.Fragment(items...)
		})
	})
	r, err := runtime.Render(ctx, app, list.New(runtime.Props{"state": state}))
	require.NoError(t, err)
	before := dom.QueryAll(app, "li")
	doc.ResetMutations()

	// Act
	state.Set("order", []any{"c", "b", "a"})
	r.Flush()

	// Assert
	after := dom.QueryAll(app, "li")
	require.Len(t, after, 3)
	assert.Same(t, before[2], after[0])
	assert.Same(t, before[1], after[1])
	assert.Same(t, before[0], after[2])
	assert.Equal(t, 2, doc.Mutations())
	assert.Equal(t, "<ul><li>c</li><li>b</li><li>a</li></ul>", dom.InnerHTML(app))
}

func TestRenderer_UnmountCancelsPendingRerender(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	state := store.New(map[string]any{"a": 1})
	renders := 0
	reader := readerKind("a", &renders)
	r, err := runtime.Render(ctx, app, reader.New(runtime.Props{"state": state}))
	require.NoError(t, err)
	host := app.ChildNodes()[0]

	// Act
	r.Batch(func() {
		state.Set("a", 2)
		assert.Equal(t, runtime.MountedDirty, r.InstanceState(host))
		r.Unmount(app)
	})

	// Assert
	assert.Zero(t, r.Pending())
	assert.Equal(t, 1, renders)
	assert.Equal(t, runtime.Unmounted, r.InstanceState(host))
	assert.Empty(t, r.Graph().Dependents(state, "a"))
}

func TestRenderer_DeferredHandlerLoadsOnce(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	symbols := lazyref.NewRegistry()
	symbols.Register("Counter_update", lazyref.Func(addToCount))
	res := lazyref.NewResolver(symbols)
	counter := counterKind(lazyref.Deferred("Counter_update"), nil)
	r, err := runtime.Render(ctx, app, counter.New(runtime.Props{"value": 15, "step": 5}), runtime.WithResolver(res))
	require.NoError(t, err)
	assert.Zero(t, res.Loads())

	// Act
	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button.decrement"), "click"))
	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button.decrement"), "click"))

	// Assert
	assert.Equal(t, "5", dom.TextContent(dom.Query(app, "span")))
	assert.Equal(t, int64(1), res.Loads())
	assert.Zero(t, r.InFlight())
}

func waitLoaded(t *testing.T, r *runtime.Renderer) {
	t.Helper()
	select {
	case <-r.Loaded():
	case <-time.After(time.Second):
		t.Fatal("handler load did not finish")
	}
}

func TestRenderer_FlushAppliesFinishedLoads(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	symbols := lazyref.NewRegistry()
	symbols.Register("Counter_update", lazyref.Func(addToCount))
	counter := counterKind(lazyref.Deferred("Counter_update"), nil)
	r, err := runtime.Render(ctx, app, counter.New(runtime.Props{"value": 15, "step": 5}), runtime.WithLoader(symbols))
	require.NoError(t, err)

	// Act
	doc.Dispatch(dom.Query(app, "button.decrement"), dom.NewEvent("click"))
	waitLoaded(t, r)
	r.Flush()

	// Assert
	assert.Equal(t, "10", dom.TextContent(dom.Query(app, "span")))
	assert.Zero(t, r.InFlight())
}

// recorderKind renders three buttons that record their names. first and
// second bind a deferred reference whose load waits for release; now binds
// an in-memory one.
func recorderKind(release <-chan struct{}, got *[]string) (*runtime.Kind, lazyref.Loader) {
	record := func(_ context.Context, c *lazyref.Call) error {
		*got = append(*got, lazyref.Arg[string](c, 0))
		return nil
	}
	loader := lazyref.LoaderFunc(func(ctx context.Context, symbol string) (any, error) {
		<-release
		return lazyref.Func(record), nil
	})
	deferred := lazyref.Deferred("record")
	now := lazyref.Runtime("record_now", lazyref.Func(record))
	kind := runtime.Define("recorder", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			return vdom.Fragment(
				vdom.Button("1", map[string]any{"class": "first", "on:click": deferred.WithScope("first")}),
				vdom.Button("2", map[string]any{"class": "second", "on:click": deferred.WithScope("second")}),
				vdom.Button("3", map[string]any{"class": "now", "on:click": now.WithScope("now")}),
			)
		})
	})
	return kind, loader
}

func TestRenderer_LaterEventsApplyFinishedLoads(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	release := make(chan struct{})
	var got []string
	recorder, loader := recorderKind(release, &got)
	r, err := runtime.Render(ctx, app, recorder.New(nil), runtime.WithLoader(loader))
	require.NoError(t, err)

	// Act
	doc.Dispatch(dom.Query(app, "button.first"), dom.NewEvent("click"))
	require.Equal(t, 1, r.InFlight())
	close(release)
	waitLoaded(t, r)
	doc.Dispatch(dom.Query(app, "button.second"), dom.NewEvent("click"))

	// Assert
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Zero(t, r.InFlight())
}

func TestRenderer_ResolvedHandlersWaitBehindQueuedCalls(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	release := make(chan struct{})
	var got []string
	recorder, loader := recorderKind(release, &got)
	r, err := runtime.Render(ctx, app, recorder.New(nil), runtime.WithLoader(loader))
	require.NoError(t, err)

	// Act
	doc.Dispatch(dom.Query(app, "button.first"), dom.NewEvent("click"))
	doc.Dispatch(dom.Query(app, "button.now"), dom.NewEvent("click"))
	require.Equal(t, 2, r.InFlight())
	require.Empty(t, got)
	close(release)
	require.NoError(t, r.Settle(ctx))

	// Assert
	assert.Equal(t, []string{"first", "now"}, got)
	assert.Zero(t, r.InFlight())
}

func TestRenderer_DiscardsHandlerForUnmountedInstance(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	release := make(chan struct{})
	called := false
	loader := lazyref.LoaderFunc(func(ctx context.Context, symbol string) (any, error) {
		<-release
		return lazyref.Func(func(context.Context, *lazyref.Call) error {
			called = true
			return nil
		}), nil
	})
	clicker := runtime.Define("clicker", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			return vdom.Button("go", map[string]any{"on:click": lazyref.Deferred("slow")})
		})
	})
	r, err := runtime.Render(ctx, app, clicker.New(nil), runtime.WithLoader(loader))
	require.NoError(t, err)

	// Act
	doc.Dispatch(dom.Query(app, "button"), dom.NewEvent("click"))
	require.Equal(t, 1, r.InFlight())
	r.Unmount(app)
	close(release)
	require.NoError(t, r.Settle(ctx))

	// Assert
	assert.False(t, called)
	assert.Zero(t, r.InFlight())
}

func TestRenderer_ResolutionErrorDoesNotBlockRerenders(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	sink := &errorSink{}
	state := store.New(map[string]any{"a": 1})
	renders := 0
	reader := readerKind("a", &renders)
	broken := runtime.Define("broken", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			return vdom.Button("x", map[string]any{"on:click": lazyref.Deferred("missing")})
		})
	})
	r, err := runtime.Render(ctx, app,
		vdom.Fragment(broken.New(nil), reader.New(runtime.Props{"state": state})),
		runtime.WithLoader(lazyref.NewRegistry()),
		runtime.WithErrorHandler(sink.handle),
	)
	require.NoError(t, err)

	// Act
	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button"), "click"))
	state.Set("a", 7)
	require.NoError(t, r.Settle(ctx))

	// Assert
	require.Len(t, sink.errs, 1)
	var resErr *lazyref.ResolutionError
	require.ErrorAs(t, sink.errs[0], &resErr)
	assert.Equal(t, "missing", resErr.Symbol)
	assert.ErrorIs(t, sink.errs[0], lazyref.ErrSymbolNotFound)
	assert.Equal(t, 2, renders)
	assert.Equal(t, "7", dom.TextContent(dom.Query(app, "span")))
}

func TestRenderer_InvalidTreeLeavesHostUntouched(t *testing.T) {
	tests := []struct {
		name string
		tree *vdom.VNode
	}{
		{name: "unknown component", tree: runtime.Named("nope", nil)},
		{name: "binding to non reference", tree: vdom.Div(nil, vdom.Button("x", map[string]any{"on:click": "handler"}))},
		{name: "malformed binding key", tree: vdom.Button("x", map[string]any{"on:": lazyref.Runtime("h", nil)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			doc, app := newHost(t)
			sink := &errorSink{}
			r := runtime.NewRenderer(runtime.WithErrorHandler(sink.handle))
			doc.ResetMutations()

			// Act
			err := r.Mount(app, tt.tree)

			// Assert
			var recErr *runtime.ReconciliationError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, []error{err}, sink.errs)
			assert.Empty(t, app.ChildNodes())
			assert.Zero(t, doc.Mutations())
		})
	}
}

func TestRenderer_InvalidRenderOutputKeepsLastGoodOutput(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	sink := &errorSink{}
	state := store.New(map[string]any{"bad": false})
	flaky := runtime.Define("flaky", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			if rc.PropStore("state").Bool("bad") {
				return vdom.Div(nil, runtime.Named("missing", nil))
			}
			return vdom.Text("ok")
		})
	})
	r, err := runtime.Render(ctx, app, flaky.New(runtime.Props{"state": state}), runtime.WithErrorHandler(sink.handle))
	require.NoError(t, err)

	// Act
	state.Set("bad", true)
	r.Flush()

	// Assert
	require.Len(t, sink.errs, 1)
	var recErr *runtime.ReconciliationError
	require.ErrorAs(t, sink.errs[0], &recErr)
	assert.Equal(t, "flaky", recErr.Component)
	assert.Equal(t, "<flaky>ok</flaky>", dom.InnerHTML(app))

	state.Set("bad", false)
	r.Flush()
	assert.Len(t, r.Graph().Dependents(state, "bad"), 1)
}

func TestRenderer_NamedComponentsResolveThroughRegistry(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	hello := runtime.Define("hello-world", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			return vdom.Fragment(vdom.Text("Hello "), vdom.Fragment(rc.Children()...))
		})
	})
	reg, err := runtime.NewRegistry(hello)
	require.NoError(t, err)

	// Act
	_, err = runtime.Render(ctx, app, runtime.Named("hello-world", nil, vdom.Span("World", nil)), runtime.WithRegistry(reg))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "<hello-world>Hello <span>World</span></hello-world>", dom.InnerHTML(app))
}

func TestRenderer_ChildRerendersOnlyWhenPropsChange(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	state := store.New(map[string]any{"label": "a", "count": 1})
	childRenders := 0
	child := runtime.Define("child-view", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			childRenders++
			return vdom.Textf("count=%v", rc.Prop("count"))
		})
	})
	parent := runtime.Define("parent-view", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			view := rc.PropStore("state")
			return vdom.Fragment(
				vdom.Span(view.String("label"), nil),
				child.New(runtime.Props{"count": view.Int("count")}),
			)
		})
	})
	r, err := runtime.Render(ctx, app, parent.New(runtime.Props{"state": state}))
	require.NoError(t, err)

	// Act
	state.Set("label", "b")
	r.Flush()
	assert.Equal(t, 1, childRenders)
	state.Set("count", 2)
	r.Flush()

	// Assert
	assert.Equal(t, 2, childRenders)
	assert.Equal(t, "<parent-view><span>b</span><child-view>count=2</child-view></parent-view>", dom.InnerHTML(app))
}

func TestRenderer_BatchCoalescesHandlerWrites(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	renders := 0
	counter := counterKind(lazyref.Runtime("Counter_update", lazyref.Func(addToCount)), &renders)
	r, err := runtime.Render(ctx, app, counter.New(runtime.Props{"value": 0, "step": 1}))
	require.NoError(t, err)
	inc := dom.Query(app, "button.increment")

	// Act
	r.Batch(func() {
		for range 3 {
			doc.Dispatch(inc, dom.NewEvent("click"))
		}
		assert.Equal(t, 1, r.Pending())
	})

	// Assert
	assert.Equal(t, 2, renders)
	assert.Equal(t, "3", dom.TextContent(dom.Query(app, "span")))
}

func TestRenderer_SelfInvalidationDoesNotLoop(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	renders := 0
	stamp := runtime.Define("stamp", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		state := s.UseStore(map[string]any{"n": 0})
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			renders++
			n := rc.Read(state).Int("n")
			state.Set("n", n+1)
			return vdom.Textf("%d", n)
		})
	})

	// Act
	r, err := runtime.Render(ctx, app, stamp.New(nil))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, renders)
	assert.Zero(t, r.Pending())
	assert.Equal(t, "<stamp>0</stamp>", dom.InnerHTML(app))
}

func TestRenderer_ReportsFlushLimit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	sink := &errorSink{}
	state := store.New(map[string]any{"a": 0, "b": 0})
	// Each side copies the other plus one, so they never settle.
	pingPong := func(read, write string) *runtime.Kind {
		return runtime.Define("", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
			return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
				n := rc.Read(state).Int(read)
				state.Set(write, n+1)
				return vdom.Textf("%d", n)
			})
		})
	}

	// Act
	r, err := runtime.Render(ctx, app,
		vdom.Fragment(pingPong("a", "b").New(nil), pingPong("b", "a").New(nil)),
		runtime.WithMaxFlushPasses(4),
		runtime.WithErrorHandler(sink.handle),
	)

	// Assert
	require.NoError(t, err)
	require.Len(t, sink.errs, 1)
	assert.True(t, errors.Is(sink.errs[0], runtime.ErrFlushLimit))
	assert.Zero(t, r.Pending())
}

func TestRenderer_HandlerErrorsAreReported(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	sink := &errorSink{}
	boom := errors.New("boom")
	failing := runtime.Define("failing", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			return vdom.Button("x", map[string]any{
				"on:click": lazyref.Runtime("fail", lazyref.Func(func(context.Context, *lazyref.Call) error { return boom })),
			})
		})
	})
	r, err := runtime.Render(ctx, app, failing.New(nil), runtime.WithErrorHandler(sink.handle))
	require.NoError(t, err)

	// Act
	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button"), "click"))

	// Assert
	require.Len(t, sink.errs, 1)
	var hErr *runtime.HandlerError
	require.ErrorAs(t, sink.errs[0], &hErr)
	assert.Equal(t, "fail", hErr.Symbol)
	assert.Equal(t, "click", hErr.Event)
	assert.ErrorIs(t, sink.errs[0], boom)
}

func TestRenderer_RebindingKeepsSingleListener(t *testing.T) {
	// Arrange
	ctx := context.Background()
	doc, app := newHost(t)
	state := store.New(map[string]any{"which": "first"})
	var got []string
	record := lazyref.Runtime("record", lazyref.Func(func(_ context.Context, c *lazyref.Call) error {
		got = append(got, lazyref.Arg[string](c, 0))
		return nil
	}))
	switcher := runtime.Define("switcher", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			which := rc.Read(state).String("which")
			return vdom.Button(which, map[string]any{"on:click": record.WithScope(which)})
		})
	})
	r, err := runtime.Render(ctx, app, switcher.New(nil))
	require.NoError(t, err)

	// Act
	state.Set("which", "second")
	r.Flush()
	require.NoError(t, r.Trigger(ctx, dom.Query(app, "button"), "click"))

	// Assert
	assert.Equal(t, []string{"second"}, got)
	assert.Equal(t, 1, doc.ListenerCount())
}

func TestRenderer_ParentReplacingDirtyChildDropsItsRerender(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	state := store.New(map[string]any{"mode": "a", "n": 1})
	renders := map[string]int{}
	view := func(tag string) *runtime.Kind {
		return runtime.Define(tag, func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
			return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
				renders[tag]++
				return vdom.Textf("%d", rc.PropStore("state").Int("n"))
			})
		})
	}
	viewA, viewB := view("view-a"), view("view-b")
	switcher := runtime.Define("switcher", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			renders["switcher"]++
			if rc.PropStore("state").String("mode") == "a" {
				return viewA.New(runtime.Props{"state": state})
			}
			return viewB.New(runtime.Props{"state": state})
		})
	})
	r, err := runtime.Render(ctx, app, switcher.New(runtime.Props{"state": state}))
	require.NoError(t, err)
	childHost := dom.Query(app, "view-a")

	// Act
	r.Batch(func() {
		state.Set("n", 2)
		state.Set("mode", "b")
		assert.Equal(t, 2, r.Pending())
	})

	// Assert
	assert.Equal(t, map[string]int{"switcher": 2, "view-a": 1, "view-b": 1}, renders)
	assert.Equal(t, runtime.Unmounted, r.InstanceState(childHost))
	assert.Zero(t, r.Pending())
	assert.Equal(t, "<switcher><view-b>2</view-b></switcher>", dom.InnerHTML(app))
}

func TestRenderer_ConditionalReadsDropStaleDependencies(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	state := store.New(map[string]any{"useA": true, "a": "A", "b": "B"})
	renders := 0
	pick := runtime.Define("pick", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			renders++
			view := rc.Read(state)
			if view.Bool("useA") {
				return vdom.Text(view.String("a"))
			}
			return vdom.Text(view.String("b"))
		})
	})
	r, err := runtime.Render(ctx, app, pick.New(nil))
	require.NoError(t, err)
	require.Len(t, r.Graph().Dependents(state, "a"), 1)

	// Act
	state.Set("useA", false)
	r.Flush()
	state.Set("a", "changed")

	// Assert
	assert.Zero(t, r.Pending())
	assert.Empty(t, r.Graph().Dependents(state, "a"))
	assert.Len(t, r.Graph().Dependents(state, "b"), 1)
	assert.Equal(t, 2, renders)
	assert.Equal(t, "<pick>B</pick>", dom.InnerHTML(app))
}

type boxed struct {
	V any
}

func TestRenderer_UncomparablePropsDoNotEscapeFlush(t *testing.T) {
	// Arrange
	ctx := context.Background()
	_, app := newHost(t)
	state := store.New(map[string]any{"n": 1})
	childRenders := 0
	child := runtime.Define("boxed-view", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			childRenders++
			return vdom.Textf("%v", rc.Prop("box").(boxed).V)
		})
	})
	parent := runtime.Define("boxed-parent", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
		return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
			n := rc.Read(state).Int("n")
			return vdom.Fragment(
				vdom.Textf("%d ", n),
				child.New(runtime.Props{"box": boxed{V: []int{1}}}),
			)
		})
	})
	r, err := runtime.Render(ctx, app, parent.New(nil))
	require.NoError(t, err)

	// Act
	state.Set("n", 2)
	require.NotPanics(t, r.Flush)

	// Assert
	assert.Equal(t, 1, childRenders)
	assert.Equal(t, "<boxed-parent>2 <boxed-view>[1]</boxed-view></boxed-parent>", dom.InnerHTML(app))
}
