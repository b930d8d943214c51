package dsl

import (
	"math"
	"reflect"
	"strconv"

	"fortio.org/safecast"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/i18n"
)

// invalidType builds the single narrowing failure of a schema. custom, when
// non-empty, replaces the localized default message.
func invalidType(expected, custom string) gosift.Issues {
	msg := custom
	if msg == "" {
		msg = i18n.T(gosift.CodeInvalidType, map[string]string{"expected": expected})
	}
	return gosift.Issues{{Code: gosift.CodeInvalidType, Message: msg}}
}

// rule finalizes a rule's issue once and returns a validator reporting it
// whenever fails holds.
func rule[T any](code string, data map[string]string, rs []gosift.Replacer, fails func(T) bool) gosift.Validator[T] {
	issue := gosift.Template(gosift.BuildIssue(code, i18n.T(code, data), gosift.FirstReplacer(rs)))
	return func(v T) gosift.Replacer {
		if fails(v) {
			return issue
		}
		return nil
	}
}

func first(msg []string) string {
	if len(msg) == 0 {
		return ""
	}
	return msg[0]
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// toFloat accepts every Go numeric kind.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}

// sameValue compares two scalars, treating numbers of different Go kinds as
// equal when they denote the same value.
func sameValue(a, b any) bool {
	_, okA := toFloat(a)
	_, okB := toFloat(b)
	if okA || okB {
		return okA && okB && sameNumber(a, b)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// integer splits an integer kind into its signed or unsigned value.
func integer(v any) (i int64, u uint64, unsigned, ok bool) {
	switch n := v.(type) {
	case int:
		return int64(n), 0, false, true
	case int8:
		return int64(n), 0, false, true
	case int16:
		return int64(n), 0, false, true
	case int32:
		return int64(n), 0, false, true
	case int64:
		return n, 0, false, true
	case uint:
		return 0, uint64(n), true, true
	case uint8:
		return 0, uint64(n), true, true
	case uint16:
		return 0, uint64(n), true, true
	case uint32:
		return 0, uint64(n), true, true
	case uint64:
		return 0, n, true, true
	}
	return 0, 0, false, false
}

// sameNumber compares integers exactly and only goes through float64 when
// both sides are floats. A float matches an integer only if it converts to
// that integer without loss.
func sameNumber(a, b any) bool {
	ia, ua, unsA, intA := integer(a)
	ib, ub, unsB, intB := integer(b)
	switch {
	case intA && intB:
		switch {
		case unsA && unsB:
			return ua == ub
		case !unsA && !unsB:
			return ia == ib
		case unsA:
			return ib >= 0 && uint64(ib) == ua
		default:
			return ia >= 0 && uint64(ia) == ub
		}
	case intA || intB:
		f, i, u, uns := b, ia, ua, unsA
		if intB {
			f, i, u, uns = a, ib, ub, unsB
		}
		ff, _ := toFloat(f)
		if uns {
			got, err := safecast.Convert[uint64](ff)
			return err == nil && got == u
		}
		got, err := safecast.Convert[int64](ff)
		return err == nil && got == i
	}
	fa, _ := toFloat(a)
	fb, _ := toFloat(b)
	return fa == fb && !math.IsNaN(fa)
}
