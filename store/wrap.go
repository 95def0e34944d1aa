package store

import (
	"fmt"
	"math"
	"reflect"
)

// wrap turns plain mappings and sequences into reactive containers. Stores
// and lists are kept by reference so sharing survives.
func wrap(v any) any {
	switch x := v.(type) {
	case nil, *Store, *List:
		return v
	case map[string]any:
		return New(x)
	case []any:
		return NewList(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return New(m)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return NewList(items)
	}
	return v
}

// sameValue reports whether writing next over prev would change nothing
// observable. Only comparable scalars and identical containers qualify.
func sameValue(prev, next any) bool {
	switch prev.(type) {
	case nil, bool, string, int, int8, int16, int32, int64, uint, uint8, uint16,
		uint32, uint64, float32, float64, *Store, *List:
		return reflect.TypeOf(prev) == reflect.TypeOf(next) && prev == next
	}
	return false
}

// plain converts a reactive value back into plain Go data.
func plain(v any) any {
	switch x := v.(type) {
	case *Store:
		return x.Snapshot()
	case *List:
		return x.Snapshot()
	}
	return v
}

// ToInt converts any numeric value to int. Unsigned values above
// math.MaxInt are rejected.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// ToFloat converts any numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	if i, ok := ToInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Format renders a value as display text. nil renders empty.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *Store, *List:
		return fmt.Sprint(plain(x))
	}
	return fmt.Sprint(v)
}
