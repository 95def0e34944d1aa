package runtime

import (
	"fmt"
	"maps"
	"strconv"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// Props are the properties a component is invoked with.
type Props map[string]any

// Factory runs once per instance, on its first render.
type Factory func(s *Setup, props Props) *RenderDescriptor

// RenderFunc produces the instance's subtree for one render pass.
type RenderFunc func(rc *RenderContext) *vdom.VNode

// RenderDescriptor wraps the render function returned by a factory.
type RenderDescriptor struct {
	render RenderFunc
}

// OnRender wraps fn as the render function of a component.
func OnRender(fn RenderFunc) *RenderDescriptor {
	return &RenderDescriptor{render: fn}
}

var nextKindID atomic.Uint64

// Kind is a component declaration: an optional tag plus a factory.
type Kind struct {
	id      uint64
	tag     string
	factory Factory
}

var _ vdom.Component = (*Kind)(nil)

// Define declares a component. Instances mount into an element named tag,
// or into a div when tag is empty.
func Define(tag string, factory Factory) *Kind {
	if factory == nil {
		panic("runtime: Define with nil factory")
	}
	return &Kind{id: nextKindID.Add(1), tag: tag, factory: factory}
}

// ID returns the process-unique id of the kind.
func (k *Kind) ID() uint64 { return k.id }

// Tag returns the declared tag, possibly empty.
func (k *Kind) Tag() string { return k.tag }

// HostTag returns the element name instances mount into.
func (k *Kind) HostTag() string {
	if k.tag == "" {
		return "div"
	}
	return k.tag
}

// ComponentName returns the tag, or a generated name for unnamed kinds.
func (k *Kind) ComponentName() string {
	if k.tag != "" {
		return k.tag
	}
	return "component-" + strconv.FormatUint(k.id, 10)
}

// StyleKey returns the scope key of the kind's styles.
func (k *Kind) StyleKey() string {
	return "q-s" + strconv.FormatUint(k.id, 10)
}

// New invokes the component: it returns a VNode holding a shallow copy of
// props. Later changes to the props map are not observed; pass stores for
// reactive props. Children are handed to the instance as slot content.
func (k *Kind) New(props Props, children ...*vdom.VNode) *vdom.VNode {
	return &vdom.VNode{
		Tag:       k.HostTag(),
		Component: k,
		Props:     maps.Clone(props),
		Children:  children,
	}
}

// Setup is handed to a factory to declare per-instance resources.
type Setup struct {
	inst *instance
}

// UseStore creates a store owned by the instance.
func (s *Setup) UseStore(initial map[string]any) *store.Store {
	st := store.New(initial)
	s.inst.stores = append(s.inst.stores, st)
	return st
}

// WithStyles registers scoped styles for the component kind. The reference
// must resolve to a string of style text.
func (s *Setup) WithStyles(ref *lazyref.Ref) {
	s.inst.styleRefs = append(s.inst.styleRefs, ref)
}

// OnUnmount registers fn to run when the instance unmounts.
func (s *Setup) OnUnmount(fn func()) {
	s.inst.cleanups = append(s.inst.cleanups, fn)
}

// DecodeProps decodes plain props into the struct pointed to by out, using
// mapstructure tags. Missing props keep their zero values and numbers are
// converted between widths. Reactive props (stores, lists) are not copied
// into structs; read them with RenderContext.PropStore and PropList.
func DecodeProps(props Props, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create props decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(props)); err != nil {
		return fmt.Errorf("failed to decode props: %w", err)
	}
	return nil
}
