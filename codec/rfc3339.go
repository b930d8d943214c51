package codec

import (
	"time"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/dsl"
	"github.com/reoring/gosift/i18n"
)

// RFC3339Time returns a schema that accepts an RFC3339 string and outputs the
// parsed time.Time. The parsed time is validated by to when given (e.g. a
// dsl.Date with Min/Max), otherwise by a plain dsl.Date.
func RFC3339Time(to ...gosift.Schema[time.Time]) *dsl.MutateSchema[string, time.Time] {
	var out gosift.Schema[time.Time]
	if len(to) > 0 && to[0] != nil {
		out = to[0]
	} else {
		out = dsl.Date(i18n.T(gosift.CodeInvalidType, map[string]string{"expected": "RFC3339 time"}))
	}
	return dsl.Mutate(dsl.String(), out, func(s string) any {
		t, err := ParseRFC3339(s)
		if err != nil {
			// leave the string in place; the date schema reports it
			return s
		}
		return t
	})
}

// ParseRFC3339 accepts RFC3339 with or without fractional seconds.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 renders t in UTC using RFC3339Nano (trailing zeros trimmed),
// the inverse of RFC3339Time.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
