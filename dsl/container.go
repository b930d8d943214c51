package dsl

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/reoring/gosift"
)

// ErrOutputType reports a child schema whose output does not fit the element
// type a typed container was declared with.
var ErrOutputType = errors.New("dsl: child output does not match the declared type")

// cast converts a child output to E. nil converts to the zero value of
// nil-able element types.
func cast[E any](v any) (E, error) {
	if e, ok := v.(E); ok {
		return e, nil
	}
	var zero E
	if v == nil {
		switch reflect.TypeOf(&zero).Elem().Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return zero, nil
		}
	}
	return zero, fmt.Errorf("%w: got %T, want %T", ErrOutputType, v, zero)
}

// asMap accepts map[string]any or any map with string keys.
func asMap(in any) (map[string]any, bool) {
	if m, ok := in.(map[string]any); ok {
		return m, m != nil
	}
	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Map || rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSlice accepts []any or any slice or array value.
func asSlice(in any) ([]any, bool) {
	if s, ok := in.([]any); ok {
		return s, s != nil
	}
	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// sortedKeys returns the keys of m in ascending order so record issues and
// outputs are deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneNodes(nodes []gosift.Node) []gosift.Node {
	out := make([]gosift.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.CloneNode()
	}
	return out
}
