package runtime

import (
	"context"
	"errors"

	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/lazyref"
)

// pendingCall is a handler invocation waiting for its target to load.
type pendingCall struct {
	binding *binding
	ref     *lazyref.Ref
	event   *dom.Event
	future  *lazyref.Future
}

// listen installs the host listener for one (element, event) pair.
func (r *Renderer) listen(m *mounted, event string) func() {
	r.metrics.domOp("listen")
	return m.node.AddEventListener(event, func(ev *dom.Event) {
		r.dispatch(m, event, ev)
	})
}

// dispatch runs the binding current at fire time. A resolved target is
// invoked now unless earlier calls are still queued; otherwise the call is
// queued behind them and applied once its load finishes.
func (r *Renderer) dispatch(m *mounted, event string, ev *dom.Event) {
	b := m.bindings[event]
	if b == nil || !b.alive() {
		return
	}
	r.applyReady()
	ref := b.ref
	if target, ok := ref.Resolved(); ok && len(r.calls) == 0 {
		r.metrics.resolved("sync")
		r.invoke(b, ref, target, ev)
	} else {
		r.logger.Debug("deferring handler", "symbol", ref.Symbol(), "event", event, "queued", len(r.calls))
		call := &pendingCall{
			binding: b,
			ref:     ref,
			event:   ev,
			future:  ref.Start(r.ctx, r.resolver),
		}
		r.calls = append(r.calls, call)
		go r.signal(call.future)
	}
	if r.batchDepth == 0 {
		r.Flush()
	}
}

// signal wakes the owner loop once f completes.
func (r *Renderer) signal(f *lazyref.Future) {
	<-f.Done()
	select {
	case r.loaded <- struct{}{}:
	default:
	}
}

// applyReady completes queued calls from the front of the queue while
// their loads are finished. A call still loading holds back the calls
// queued after it.
func (r *Renderer) applyReady() {
	for len(r.calls) > 0 && r.calls[0].future.Ready() {
		call := r.calls[0]
		r.calls = r.calls[1:]
		r.complete(call)
	}
}

func (r *Renderer) invoke(b *binding, ref *lazyref.Ref, target any, ev *dom.Event) {
	err := r.callHandler(ref, target, ev)
	if err == nil {
		r.metrics.handled("ok")
		return
	}
	r.metrics.handled("error")
	var resErr *lazyref.ResolutionError
	if errors.As(err, &resErr) {
		r.report(err)
		return
	}
	r.report(&HandlerError{Symbol: ref.Symbol(), Event: b.event, Err: err})
}

// complete applies a finished load. Results for bindings that were removed,
// or whose instance unmounted, are dropped.
func (r *Renderer) complete(call *pendingCall) {
	target, err := call.future.Result()
	if err != nil {
		r.metrics.resolved("failed")
		r.report(err)
		return
	}
	if !call.binding.alive() {
		r.metrics.resolved("discarded")
		r.logger.Debug("discarding handler for detached binding", "symbol", call.ref.Symbol())
		return
	}
	r.metrics.resolved("loaded")
	r.invoke(call.binding, call.ref, target, call.event)
}

// InFlight returns the number of handler calls waiting for a load.
func (r *Renderer) InFlight() int { return len(r.calls) }

// Loaded receives after a queued handler's load finishes. Owners that do
// not block in Settle call Flush on every receive; Flush applies the
// finished calls. Wakeups coalesce, and a receive may find nothing left
// to apply.
func (r *Renderer) Loaded() <-chan struct{} { return r.loaded }

// Settle flushes, then applies finished loads in dispatch order, flushing
// after each, until nothing is pending. It returns ctx's error if ctx ends
// first; calls still loading stay queued for the next Settle.
func (r *Renderer) Settle(ctx context.Context) error {
	for {
		r.Flush()
		if len(r.calls) == 0 {
			return nil
		}
		call := r.calls[0]
		select {
		case <-call.future.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		r.calls = r.calls[1:]
		r.complete(call)
	}
}
