// Package store provides reactive wrappers over plain data.
//
// A Store wraps a mapping and a List wraps a sequence. Nested mappings and
// sequences are wrapped too, eagerly on construction and again on write, so
// every level of a structure is tracked.
//
// Reads go through a View bound to a Tracker. The renderer's render context
// is the tracker, and each tracked read records the edge
// (consumer, source, property) in a Graph. Writes update the value and ask
// every Graph that observed the source to invalidate the consumers
// depending on exactly that property:
//
//	st := store.New(map[string]any{"count": 0})
//	v := st.Track(rc)        // rc implements Tracker
//	_ = v.Int("count")       // edge (rc's consumer, st, "count")
//	st.Set("count", 1)       // invalidates rc's consumer only
//
// Sequences are tracked as a whole under the ItemsProp property.
package store
