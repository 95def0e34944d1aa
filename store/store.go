package store

import "sort"

// Store is a reactive mapping. It is not safe for concurrent use; the
// renderer and the handlers it invokes share one goroutine.
type Store struct {
	observers
	id     uint64
	values map[string]any
}

// New wraps initial. Nested mappings and sequences become reactive.
// The initial map is copied, so later changes to it are not observed.
func New(initial map[string]any) *Store {
	s := &Store{
		id:     nextSourceID.Add(1),
		values: make(map[string]any, len(initial)),
	}
	for k, v := range initial {
		s.values[k] = wrap(v)
	}
	return s
}

// ID returns the process-unique id of the store.
func (s *Store) ID() uint64 {
	s.check("id")
	return s.id
}

// Get returns the value of prop without tracking.
func (s *Store) Get(prop string) any {
	s.check("get")
	return s.values[prop]
}

// Lookup returns the value of prop and whether it is present.
func (s *Store) Lookup(prop string) (any, bool) {
	s.check("get")
	v, ok := s.values[prop]
	return v, ok
}

// Keys returns the property names in sorted order.
func (s *Store) Keys() []string {
	s.check("keys")
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of properties.
func (s *Store) Len() int {
	s.check("len")
	return len(s.values)
}

// Set writes prop and invalidates its dependents. Plain mappings and
// sequences are wrapped on write. Writing an identical scalar is a no-op.
func (s *Store) Set(prop string, v any) {
	s.check("set")
	next := wrap(v)
	if prev, ok := s.values[prop]; ok && sameValue(prev, next) {
		return
	}
	s.values[prop] = next
	s.notify(s.id, prop)
}

// Update applies fn to the current value of prop and writes the result.
func (s *Store) Update(prop string, fn func(any) any) {
	s.Set(prop, fn(s.Get(prop)))
}

// Delete removes prop and invalidates its dependents.
func (s *Store) Delete(prop string) {
	s.check("delete")
	if _, ok := s.values[prop]; !ok {
		return
	}
	delete(s.values, prop)
	s.notify(s.id, prop)
}

// Snapshot returns a deep plain copy of the store.
func (s *Store) Snapshot() map[string]any {
	s.check("snapshot")
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = plain(v)
	}
	return out
}

// Track returns a view whose reads are recorded by t.
func (s *Store) Track(t Tracker) *View {
	s.check("track")
	return &View{s: s, t: t}
}

func (s *Store) check(op string) {
	if s == nil {
		accessPanic(op, "nil store")
	}
}
