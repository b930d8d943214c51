package codec

import (
	"strconv"
	"strings"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/dsl"
	"github.com/reoring/gosift/i18n"
)

// NumberFromString accepts a decimal string (surrounding spaces ignored) and
// outputs it as float64 validated by to, or by dsl.Number when to is omitted.
func NumberFromString(to ...gosift.Schema[float64]) *dsl.MutateSchema[string, float64] {
	var out gosift.Schema[float64]
	if len(to) > 0 && to[0] != nil {
		out = to[0]
	} else {
		out = dsl.Number(expected("numeric string"))
	}
	return dsl.Mutate(dsl.String(), out, func(s string) any {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return s
		}
		return f
	})
}

// IntFromString is NumberFromString for base-10 integers.
func IntFromString(to ...gosift.Schema[int64]) *dsl.MutateSchema[string, int64] {
	var out gosift.Schema[int64]
	if len(to) > 0 && to[0] != nil {
		out = to[0]
	} else {
		out = dsl.Int(expected("integer string"))
	}
	return dsl.Mutate(dsl.String(), out, func(s string) any {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return s
		}
		return n
	})
}

func expected(what string) string {
	return i18n.T(gosift.CodeInvalidType, map[string]string{"expected": what})
}
