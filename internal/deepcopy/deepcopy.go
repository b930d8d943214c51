// Package deepcopy implements the value copy used at every pipeline stage
// boundary.
package deepcopy

import (
	"math/big"
	"reflect"
	"time"
)

// Cloner is implemented by blob-like values that know how to rebuild an
// independent instance of themselves.
type Cloner interface {
	CloneValue() any
}

// Copy returns a structurally independent copy of v.
//
// Scalars are returned as is. []any and map[string]any (and any other slice or
// map kind) are copied recursively. Timestamps, *big.Int and Cloner values are
// reconstructed. Anything else (structs, funcs, channels) is shared.
func Copy(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return t
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Copy(e)
		}
		return out
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Copy(e)
		}
		return out
	case time.Time:
		// time.Time is a value; returning it yields an independent instance.
		return t
	case *time.Time:
		if t == nil {
			return t
		}
		c := *t
		return &c
	case *big.Int:
		if t == nil {
			return t
		}
		return new(big.Int).Set(t)
	case Cloner:
		return t.CloneValue()
	}
	return copyReflect(reflect.ValueOf(v)).Interface()
}

// Of copies v and keeps its static type. Values whose copy changes type are
// returned unchanged.
func Of[T any](v T) T {
	c, ok := Copy(v).(T)
	if !ok {
		return v
	}
	return c
}

func copyReflect(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(copyElem(rv.Index(i)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyElem(iter.Value()))
		}
		return out
	default:
		return rv
	}
}

// copyElem copies a container element, routing interface-typed elements
// through Copy so nested []any/map[string]any keep their semantics.
func copyElem(ev reflect.Value) reflect.Value {
	if ev.Kind() == reflect.Interface {
		if ev.IsNil() {
			return ev
		}
		c := Copy(ev.Interface())
		if c == nil {
			return reflect.Zero(ev.Type())
		}
		return reflect.ValueOf(c)
	}
	if !ev.CanInterface() {
		return ev
	}
	c := reflect.ValueOf(Copy(ev.Interface()))
	if !c.IsValid() || !c.Type().AssignableTo(ev.Type()) {
		return ev
	}
	return c
}
