// Package snapshot captures lazy references and the stores their scopes
// reach, so a rendered page can be resumed after a reload.
//
// Values are encoded as tagged JSON. Stores and lists are written once, by
// id, and referenced from everywhere they appear, so a store shared by two
// scopes is still shared after Restore.
package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/store"
)

// Value types.
const (
	TypeNull   = "null"
	TypeBool   = "bool"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeStore  = "store"
	TypeList   = "list"
	TypeMap    = "map"
	TypeSlice  = "slice"
)

// Value is one encoded value.
type Value struct {
	Type   string           `json:"t"`
	Bool   bool             `json:"b,omitempty"`
	Int    int64            `json:"i,omitempty"`
	Float  float64          `json:"f,omitempty"`
	String string           `json:"s,omitempty"`
	Ref    string           `json:"ref,omitempty"`
	Map    map[string]Value `json:"m,omitempty"`
	Items  []Value          `json:"a,omitempty"`
}

// RefRecord is one captured reference.
type RefRecord struct {
	Symbol   string  `json:"symbol"`
	Deferred bool    `json:"deferred,omitempty"`
	Scope    []Value `json:"scope"`
}

// Snapshot is a set of captured references plus the stores and lists they
// reach.
type Snapshot struct {
	ID      string                      `json:"id"`
	Created time.Time                   `json:"created"`
	Stores  map[string]map[string]Value `json:"stores,omitempty"`
	Lists   map[string][]Value          `json:"lists,omitempty"`
	Refs    []RefRecord                 `json:"refs"`
}

// Capture encodes refs under a new id. Every captured value must be
// serializable; the first that is not fails the capture.
func Capture(refs []*lazyref.Ref) (*Snapshot, error) {
	s := &Snapshot{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Stores:  make(map[string]map[string]Value),
		Lists:   make(map[string][]Value),
		Refs:    make([]RefRecord, 0, len(refs)),
	}
	for _, ref := range refs {
		if err := ref.Validate(); err != nil {
			return nil, fmt.Errorf("failed to capture %s: %w", ref, err)
		}
		rec := RefRecord{Symbol: ref.Symbol(), Deferred: ref.IsDeferred()}
		for i, v := range ref.Scope() {
			enc, err := s.encode(v)
			if err != nil {
				return nil, fmt.Errorf("failed to capture %s value %d: %w", ref, i, err)
			}
			rec.Scope = append(rec.Scope, enc)
		}
		s.Refs = append(s.Refs, rec)
	}
	return s, nil
}

// encodeUint rejects values an int64 cannot hold.
func encodeUint(n uint64) (Value, error) {
	if n > math.MaxInt64 {
		return Value{}, fmt.Errorf("unsigned value %d overflows int64", n)
	}
	return Value{Type: TypeInt, Int: int64(n)}, nil
}

func (s *Snapshot) encode(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{Type: TypeNull}, nil
	case bool:
		return Value{Type: TypeBool, Bool: x}, nil
	case string:
		return Value{Type: TypeString, String: x}, nil
	case int64:
		return Value{Type: TypeInt, Int: x}, nil
	case uint:
		return encodeUint(uint64(x))
	case uint64:
		return encodeUint(x)
	case uintptr:
		return encodeUint(uint64(x))
	case float32:
		return Value{Type: TypeFloat, Float: float64(x)}, nil
	case float64:
		return Value{Type: TypeFloat, Float: x}, nil
	case *store.Store:
		key := "s" + strconv.FormatUint(x.ID(), 10)
		if _, done := s.Stores[key]; !done {
			props := make(map[string]Value, x.Len())
			s.Stores[key] = props
			for _, k := range x.Keys() {
				enc, err := s.encode(x.Get(k))
				if err != nil {
					return Value{}, fmt.Errorf("store %s property %q: %w", key, k, err)
				}
				props[k] = enc
			}
		}
		return Value{Type: TypeStore, Ref: key}, nil
	case *store.List:
		key := "l" + strconv.FormatUint(x.ID(), 10)
		if _, done := s.Lists[key]; !done {
			s.Lists[key] = nil
			items := make([]Value, 0, x.Len())
			for i, item := range x.Items() {
				enc, err := s.encode(item)
				if err != nil {
					return Value{}, fmt.Errorf("list %s item %d: %w", key, i, err)
				}
				items = append(items, enc)
			}
			s.Lists[key] = items
		}
		return Value{Type: TypeList, Ref: key}, nil
	}
	if n, ok := store.ToInt(v); ok {
		return Value{Type: TypeInt, Int: int64(n)}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("map key type %s is not string", rv.Type().Key())
		}
		m := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			enc, err := s.encode(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			m[iter.Key().String()] = enc
		}
		return Value{Type: TypeMap, Map: m}, nil
	case reflect.Slice, reflect.Array:
		items := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := s.encode(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, enc)
		}
		return Value{Type: TypeSlice, Items: items}, nil
	}
	return Value{}, fmt.Errorf("%T is not serializable", v)
}

// Restore rebuilds the captured references. They come back deferred: their
// targets are found again through a loader by symbol.
func Restore(s *Snapshot) ([]*lazyref.Ref, error) {
	d := &decoder{
		snap:   s,
		stores: make(map[string]*store.Store),
		lists:  make(map[string]*store.List),
	}
	refs := make([]*lazyref.Ref, 0, len(s.Refs))
	for _, rec := range s.Refs {
		scope := make([]any, 0, len(rec.Scope))
		for i, enc := range rec.Scope {
			v, err := d.decode(enc)
			if err != nil {
				return nil, fmt.Errorf("failed to restore %s value %d: %w", rec.Symbol, i, err)
			}
			scope = append(scope, v)
		}
		refs = append(refs, lazyref.Deferred(rec.Symbol, scope...))
	}
	return refs, nil
}

type decoder struct {
	snap   *Snapshot
	stores map[string]*store.Store
	lists  map[string]*store.List
}

func (d *decoder) decode(v Value) (any, error) {
	switch v.Type {
	case TypeNull:
		return nil, nil
	case TypeBool:
		return v.Bool, nil
	case TypeInt:
		return int(v.Int), nil
	case TypeFloat:
		return v.Float, nil
	case TypeString:
		return v.String, nil
	case TypeStore:
		if st, ok := d.stores[v.Ref]; ok {
			return st, nil
		}
		props, ok := d.snap.Stores[v.Ref]
		if !ok {
			return nil, fmt.Errorf("unknown store %q", v.Ref)
		}
		st := store.New(nil)
		d.stores[v.Ref] = st
		for k, enc := range props {
			val, err := d.decode(enc)
			if err != nil {
				return nil, fmt.Errorf("store %s property %q: %w", v.Ref, k, err)
			}
			st.Set(k, val)
		}
		return st, nil
	case TypeList:
		if l, ok := d.lists[v.Ref]; ok {
			return l, nil
		}
		items, ok := d.snap.Lists[v.Ref]
		if !ok {
			return nil, fmt.Errorf("unknown list %q", v.Ref)
		}
		l := store.NewList(nil)
		d.lists[v.Ref] = l
		for i, enc := range items {
			val, err := d.decode(enc)
			if err != nil {
				return nil, fmt.Errorf("list %s item %d: %w", v.Ref, i, err)
			}
			l.Append(val)
		}
		return l, nil
	case TypeMap:
		m := make(map[string]any, len(v.Map))
		for k, enc := range v.Map {
			val, err := d.decode(enc)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = val
		}
		return m, nil
	case TypeSlice:
		items := make([]any, 0, len(v.Items))
		for i, enc := range v.Items {
			val, err := d.decode(enc)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, val)
		}
		return items, nil
	}
	return nil, fmt.Errorf("unknown value type %q", v.Type)
}

// Marshal encodes s as JSON.
func Marshal(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a snapshot written by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &s, nil
}
