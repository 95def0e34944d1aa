// Package lazyref implements lazy symbol references: serializable pointers
// to a function or value plus an ordered captured scope.
//
// A Runtime reference holds its target in memory and resolves synchronously.
// A Deferred reference names a symbol that a Loader produces on demand:
//
//	reg := lazyref.NewRegistry()
//	reg.Register("Counter_update", lazyref.Func(update))
//	res := lazyref.NewResolver(reg)
//
//	ref := lazyref.Deferred("Counter_update", props, state, -1)
//	target, err := ref.Resolve(ctx, res)
//
// Resolution is memoized per symbol in the Resolver and per reference, and
// concurrent resolutions of one symbol share a single load.
//
// Invoked functions do not close over their state. They read it back from
// the Call through Arg, in the order it was captured:
//
//	func update(ctx context.Context, c *lazyref.Call) error {
//		c.Expect(3)
//		state := lazyref.Arg[*store.Store](c, 1)
//		...
//	}
package lazyref
