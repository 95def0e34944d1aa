package store

// ItemsProp is the property under which reads and writes of a List are
// tracked. A list is invalidated as a whole.
const ItemsProp = "[]"

// List is a reactive sequence.
type List struct {
	observers
	id    uint64
	items []any
}

// NewList wraps items. Nested mappings and sequences become reactive.
func NewList(items []any) *List {
	l := &List{
		id:    nextSourceID.Add(1),
		items: make([]any, len(items)),
	}
	for i, v := range items {
		l.items[i] = wrap(v)
	}
	return l
}

// ID returns the process-unique id of the list.
func (l *List) ID() uint64 {
	l.check("id")
	return l.id
}

// Len returns the number of items without tracking.
func (l *List) Len() int {
	l.check("len")
	return len(l.items)
}

// At returns item i without tracking.
func (l *List) At(i int) any {
	l.check("at")
	if i < 0 || i >= len(l.items) {
		accessPanic("at", "index %d out of range [0,%d)", i, len(l.items))
	}
	return l.items[i]
}

// Items returns a copy of the items without tracking.
func (l *List) Items() []any {
	l.check("items")
	return append([]any(nil), l.items...)
}

// Set replaces item i.
func (l *List) Set(i int, v any) {
	l.check("set")
	if i < 0 || i >= len(l.items) {
		accessPanic("set", "index %d out of range [0,%d)", i, len(l.items))
	}
	next := wrap(v)
	if sameValue(l.items[i], next) {
		return
	}
	l.items[i] = next
	l.notify(l.id, ItemsProp)
}

// Append adds items to the end of the list.
func (l *List) Append(items ...any) {
	l.check("append")
	if len(items) == 0 {
		return
	}
	for _, v := range items {
		l.items = append(l.items, wrap(v))
	}
	l.notify(l.id, ItemsProp)
}

// Remove deletes item i.
func (l *List) Remove(i int) {
	l.check("remove")
	if i < 0 || i >= len(l.items) {
		accessPanic("remove", "index %d out of range [0,%d)", i, len(l.items))
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.notify(l.id, ItemsProp)
}

// Snapshot returns a deep plain copy of the list.
func (l *List) Snapshot() []any {
	l.check("snapshot")
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = plain(v)
	}
	return out
}

// Track returns a view whose reads are recorded by t.
func (l *List) Track(t Tracker) *ListView {
	l.check("track")
	return &ListView{l: l, t: t}
}

func (l *List) check(op string) {
	if l == nil {
		accessPanic(op, "nil list")
	}
}
