package store

// View is a tracked window onto a Store. A nil tracker makes reads untracked.
type View struct {
	s *Store
	t Tracker
}

// Source returns the viewed store.
func (v *View) Source() *Store { return v.s }

// Get returns prop and records the read.
func (v *View) Get(prop string) any {
	if v.t != nil {
		v.t.TrackRead(v.s, prop)
	}
	return v.s.Get(prop)
}

// Int returns prop as an int. Missing properties read as zero.
func (v *View) Int(prop string) int {
	raw := v.Get(prop)
	if raw == nil {
		return 0
	}
	n, ok := ToInt(raw)
	if !ok {
		accessPanic("int", "property %q holds %T", prop, raw)
	}
	return n
}

// Float returns prop as a float64. Missing properties read as zero.
func (v *View) Float(prop string) float64 {
	raw := v.Get(prop)
	if raw == nil {
		return 0
	}
	f, ok := ToFloat(raw)
	if !ok {
		accessPanic("float", "property %q holds %T", prop, raw)
	}
	return f
}

// String returns prop formatted as display text.
func (v *View) String(prop string) string {
	return Format(v.Get(prop))
}

// Bool returns prop as a bool. Missing properties read as false.
func (v *View) Bool(prop string) bool {
	raw := v.Get(prop)
	if raw == nil {
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		accessPanic("bool", "property %q holds %T", prop, raw)
	}
	return b
}

// Store returns a tracked view of the nested store at prop, or nil.
func (v *View) Store(prop string) *View {
	switch x := v.Get(prop).(type) {
	case *Store:
		return x.Track(v.t)
	case nil:
		return nil
	default:
		accessPanic("store", "property %q holds %T", prop, x)
		return nil
	}
}

// List returns a tracked view of the nested list at prop, or nil.
func (v *View) List(prop string) *ListView {
	switch x := v.Get(prop).(type) {
	case *List:
		return x.Track(v.t)
	case nil:
		return nil
	default:
		accessPanic("list", "property %q holds %T", prop, x)
		return nil
	}
}

// ListView is a tracked window onto a List.
type ListView struct {
	l *List
	t Tracker
}

// Source returns the viewed list.
func (v *ListView) Source() *List { return v.l }

func (v *ListView) track() {
	if v.t != nil {
		v.t.TrackRead(v.l, ItemsProp)
	}
}

// Len returns the number of items and records the read.
func (v *ListView) Len() int {
	v.track()
	return v.l.Len()
}

// At returns item i and records the read.
func (v *ListView) At(i int) any {
	v.track()
	return v.l.At(i)
}

// Store returns a tracked view of item i, which must be a store.
func (v *ListView) Store(i int) *View {
	switch x := v.At(i).(type) {
	case *Store:
		return x.Track(v.t)
	default:
		accessPanic("store", "item %d holds %T", i, x)
		return nil
	}
}

// Each calls fn for every item and records a single read.
func (v *ListView) Each(fn func(i int, item any)) {
	v.track()
	for i, item := range v.l.Items() {
		fn(i, item)
	}
}
