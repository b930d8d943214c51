package rules

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/i18n"
)

// Object is the validator shape for rules attached to dsl.Object schemas.
type Object = gosift.Validator[map[string]any]

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// ParseOp maps the textual operators used by schema documents.
func ParseOp(s string) (Op, error) {
	switch s {
	case "eq", "==":
		return Eq, nil
	case "ne", "!=":
		return Ne, nil
	case "lt", "<":
		return Lt, nil
	case "le", "<=":
		return Le, nil
	case "gt", ">":
		return Gt, nil
	case "ge", ">=":
		return Ge, nil
	}
	return 0, fmt.Errorf("rules: unknown operator %q", s)
}

// Conditional composes conditional execution of rules.
type Conditional struct {
	path gosift.Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates the value at a JSON Pointer
// ("/status", "/address/country") against want. A missing value never
// satisfies the condition.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: gosift.ParsePointer(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds reports whether the condition is satisfied by v.
func (c Conditional) Holds(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	cur, ok := Lookup(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then returns a validator that runs rules in order while the condition
// holds. The first failing rule decides the issue.
func (c Conditional) Then(rules ...Object) Object {
	return func(v map[string]any) gosift.Replacer {
		if !c.Holds(v) {
			return nil
		}
		for _, r := range rules {
			if r == nil {
				continue
			}
			if rep := r(v); rep != nil {
				return rep
			}
		}
		return nil
	}
}

// Required reports a missing or null value at path.
func Required(path string, r ...gosift.Replacer) Object {
	p := gosift.ParsePointer(path)
	issue := finalize(gosift.CodeRequired, nil, p, r)
	return func(v map[string]any) gosift.Replacer {
		cur, ok := Lookup(v, p)
		if !ok || cur == nil {
			return issue
		}
		return nil
	}
}

// AtLeastOne ensures the collection at path has at least one element. A value
// that is absent or not a collection is left to the schema.
func AtLeastOne(path string, r ...gosift.Replacer) Object {
	p := gosift.ParsePointer(path)
	issue := finalize(gosift.CodeArrayNonEmpty, nil, p, r)
	return func(v map[string]any) gosift.Replacer {
		cur, ok := Lookup(v, p)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(cur)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == 0 {
			return issue
		}
		return nil
	}
}

// UniqueBy ensures array elements have distinct values at keyPath, a pointer
// relative to each element ("/sku"; "" compares whole elements). The issue
// points at the first duplicate. Elements without the key are skipped.
//
// Keys are compared by their printed form, so align the schema so the key is
// a single type.
func UniqueBy[E any](keyPath string, r ...gosift.Replacer) gosift.Validator[[]E] {
	kp := gosift.ParsePointer(keyPath)
	label := keyPath
	if label == "" {
		label = "value"
	}
	base := gosift.BuildIssue(gosift.CodeArrayUnique, i18n.T(gosift.CodeArrayUnique, map[string]string{"key": label}), gosift.FirstReplacer(r))
	return func(items []E) gosift.Replacer {
		seen := make(map[string]struct{}, len(items))
		for i, elem := range items {
			kv, ok := Lookup(elem, kp)
			if !ok {
				continue
			}
			key := fmt.Sprintf("%T:%v", normalize(kv), normalize(kv))
			if _, dup := seen[key]; dup {
				it := base
				if len(it.Path) == 0 {
					it.Path = append(gosift.Path{gosift.Index(i)}, kp...)
				}
				return gosift.Template(it)
			}
			seen[key] = struct{}{}
		}
		return nil
	}
}

func finalize(code string, data map[string]string, p gosift.Path, r []gosift.Replacer) gosift.Replacer {
	it := gosift.BuildIssue(code, i18n.T(code, data), gosift.FirstReplacer(r))
	if len(it.Path) == 0 {
		it.Path = p
	}
	return gosift.Template(it)
}

// Lookup navigates maps and slices by path. Key segments address slice
// positions when they are decimal integers.
func Lookup(v any, p gosift.Path) (any, bool) {
	cur := reflect.ValueOf(v)
	for _, seg := range p {
		for cur.IsValid() && (cur.Kind() == reflect.Interface || cur.Kind() == reflect.Pointer) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg.String()).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg.String())
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	if !cur.IsValid() {
		return nil, true
	}
	out := cur.Interface()
	if gosift.IsMissing(out) {
		return nil, false
	}
	return out, true
}

// normalize maps every numeric kind onto float64 so 1 and int64(1) compare
// equal. Other values pass through.
func normalize(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case bool, string:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return reflect.DeepEqual(normalize(cur), normalize(want))
	case Ne:
		return !reflect.DeepEqual(normalize(cur), normalize(want))
	}
	c, ok := order(cur, want)
	if !ok {
		return false
	}
	switch op {
	case Lt:
		return c < 0
	case Le:
		return c <= 0
	case Gt:
		return c > 0
	case Ge:
		return c >= 0
	}
	return false
}

// order compares numbers, strings and times. Mixed kinds are unordered.
func order(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}
