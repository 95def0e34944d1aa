package runtime

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/vcrobe/lazydom/store"
)

// markDirty is the graph's sink. It queues a mounted instance for the next
// flush; repeated marks coalesce. A mark raised by the instance's own
// render function is dropped, so a render never re-triggers itself.
func (r *Renderer) markDirty(id store.ConsumerID) {
	inst, ok := r.instances[id]
	if !ok || !inst.state.Mounted() {
		return
	}
	if n := len(r.stack); n > 0 && r.stack[n-1] == inst {
		r.logger.Debug("ignoring self invalidation during render", "component", inst.name(), "instance", uint64(id))
		return
	}
	inst.state = MountedDirty
	r.pending[id] = inst
}

// Pending returns the number of instances queued for re-render.
func (r *Renderer) Pending() int { return len(r.pending) }

// Flush applies queued handler calls whose loads finished, then re-renders
// every dirty instance, parents before children. An instance re-rendered
// by an ancestor earlier in the pass, or torn down by one, is skipped.
// Writes made while flushing are picked up by further passes.
func (r *Renderer) Flush() {
	if r.flushing {
		return
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	r.applyReady()

	for pass := 0; len(r.pending) > 0; pass++ {
		if pass >= r.maxPasses {
			for _, inst := range r.pending {
				inst.state = MountedClean
			}
			clear(r.pending)
			r.report(fmt.Errorf("%w after %d passes", ErrFlushLimit, pass))
			return
		}
		batch := r.takePending()
		r.logger.Debug("flushing", "pass", pass, "dirty", len(batch))
		for _, inst := range batch {
			if r.instances[inst.id] != inst || inst.state != MountedDirty {
				r.metrics.dropRender()
				continue
			}
			r.renderInstance(inst)
		}
	}
}

func (r *Renderer) takePending() []*instance {
	batch := slices.Collect(maps.Values(r.pending))
	clear(r.pending)
	slices.SortFunc(batch, func(a, b *instance) int {
		if c := cmp.Compare(a.depth, b.depth); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	return batch
}

// cancel drops a queued re-render of inst.
func (r *Renderer) cancel(inst *instance) {
	if _, ok := r.pending[inst.id]; ok {
		delete(r.pending, inst.id)
		r.metrics.dropRender()
	}
}
