package schemadoc

import (
	"fmt"
	"math/big"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"fortio.org/safecast"

	"github.com/reoring/gosift/codec"
)

// spec is one node definition with the pointer it was read from.
type spec struct {
	at string
	m  map[string]any
}

func (s spec) has(key string) bool {
	_, ok := s.m[key]
	return ok
}

func (s spec) errf(key, format string, args ...any) error {
	at := s.at
	if key != "" {
		at = join(at, key)
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, at, fmt.Sprintf(format, args...))
}

// check rejects keys outside the common set and allowed.
func (s spec) check(allowed []string) error {
	for _, k := range sortedKeys(s.m) {
		if slices.Contains(commonKeys, k) || slices.Contains(allowed, k) {
			continue
		}
		return s.errf(k, "unknown key for type %q", s.m["type"])
	}
	return nil
}

func (s spec) str(key string) (string, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return "", false, nil
	}
	str, isStr := v.(string)
	if !isStr {
		return "", false, s.errf(key, "expected a string, got %T", v)
	}
	return str, true, nil
}

func (s spec) flag(key string) (bool, error) {
	v, ok := s.m[key]
	if !ok {
		return false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, s.errf(key, "expected a boolean, got %T", v)
	}
	return b, nil
}

func (s spec) float(key string) (float64, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return 0, false, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true, nil
	}
	return 0, false, s.errf(key, "expected a number, got %T", v)
}

func (s spec) integer(key string) (int64, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return 0, false, nil
	}
	var (
		n   int64
		err error
	)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err = safecast.Convert[int64](rv.Uint())
	case reflect.Float32, reflect.Float64:
		n, err = safecast.Convert[int64](rv.Float())
	default:
		return 0, false, s.errf(key, "expected an integer, got %T", v)
	}
	if err != nil {
		return 0, false, s.errf(key, "expected an integer: %v", err)
	}
	return n, true, nil
}

// size is int for length-like limits.
func (s spec) size(key string) (int, bool, error) {
	n, ok, err := s.integer(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	if n < 0 {
		return 0, false, s.errf(key, "must not be negative")
	}
	out, err := safecast.Convert[int](n)
	if err != nil {
		return 0, false, s.errf(key, "%v", err)
	}
	return out, true, nil
}

func (s spec) bigint(key string) (*big.Int, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	if str, isStr := v.(string); isStr {
		b, valid := new(big.Int).SetString(strings.TrimSpace(str), 10)
		if !valid {
			return nil, false, s.errf(key, "invalid integer %q", str)
		}
		return b, true, nil
	}
	n, _, err := s.integer(key)
	if err != nil {
		return nil, false, err
	}
	return big.NewInt(n), true, nil
}

func (s spec) instant(key string) (time.Time, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return time.Time{}, false, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, true, nil
	case string:
		parsed, err := codec.ParseRFC3339(t)
		if err != nil {
			return time.Time{}, false, s.errf(key, "expected an RFC3339 time: %v", err)
		}
		return parsed, true, nil
	}
	return time.Time{}, false, s.errf(key, "expected an RFC3339 time, got %T", v)
}

func (s spec) list(key string) ([]any, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	l, isList := v.([]any)
	if !isList {
		return nil, false, s.errf(key, "expected a list, got %T", v)
	}
	return l, true, nil
}

func (s spec) strs(key string) ([]string, bool, error) {
	l, ok, err := s.list(key)
	if !ok || err != nil {
		return nil, ok, err
	}
	out := make([]string, len(l))
	for i, e := range l {
		str, isStr := e.(string)
		if !isStr {
			return nil, false, spec{at: join(s.at, key)}.errf(fmt.Sprint(i), "expected a string, got %T", e)
		}
		out[i] = str
	}
	return out, true, nil
}

// join appends one escaped pointer segment.
func join(at, seg string) string {
	seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~", "~0"), "/", "~1")
	if at == "/" {
		return "/" + seg
	}
	return at + "/" + seg
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
