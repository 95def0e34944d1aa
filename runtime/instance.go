package runtime

import (
	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// State is the lifecycle state of a component instance.
type State int

const (
	Unmounted State = iota
	Mounting
	MountedClean
	MountedDirty
	Unmounting
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Mounting:
		return "mounting"
	case MountedClean:
		return "mounted-clean"
	case MountedDirty:
		return "mounted-dirty"
	case Unmounting:
		return "unmounting"
	}
	return "unknown"
}

// Mounted reports whether the state is one of the mounted states.
func (s State) Mounted() bool {
	return s == MountedClean || s == MountedDirty
}

type instance struct {
	id     store.ConsumerID
	kind   *Kind
	props  Props
	slot   []*vdom.VNode
	host   dom.Node
	parent *instance
	depth  int
	state  State

	desc      *RenderDescriptor
	stores    []*store.Store
	styleRefs []*lazyref.Ref
	styled    bool
	cleanups  []func()

	// children is the mounted render output under host.
	children []*mounted
}

func (i *instance) name() string { return i.kind.ComponentName() }

// mounted mirrors one host node and the vnode last applied to it.
type mounted struct {
	v        *vdom.VNode
	node     dom.Node
	inst     *instance
	children []*mounted
	bindings map[string]*binding
	removers map[string]func()
}

// binding is the current reference bound to one event of one element. The
// host listener reads it at fire time, so patches only swap ref.
type binding struct {
	event string
	ref   *lazyref.Ref
	owner *instance
	live  bool
}

// alive reports whether results for the binding may still be applied.
func (b *binding) alive() bool {
	return b.live && (b.owner == nil || b.owner.state.Mounted())
}
