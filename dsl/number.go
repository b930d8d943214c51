package dsl

import (
	"context"
	"math"
	"math/big"
	"strconv"

	"fortio.org/safecast"

	"github.com/reoring/gosift"
)

// maxSafeInteger is 2^53-1, the largest integer a float64 holds exactly with
// all smaller integers.
const maxSafeInteger = 1<<53 - 1

const epsilon = 0x1p-52

// NumberSchema accepts any Go numeric value and yields float64. NaN is
// rejected.
type NumberSchema struct {
	*gosift.Pipeline[float64, *NumberSchema]
	msg string
}

// Number returns a number schema.
func Number(msg ...string) *NumberSchema {
	s := &NumberSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[float64, *NumberSchema](s, "number", s.narrow, s.clone)
	return s
}

func (s *NumberSchema) narrow(_ context.Context, in any, _ gosift.Mode) (float64, error) {
	f, ok := toFloat(in)
	if !ok || math.IsNaN(f) {
		return 0, invalidType("number", s.msg)
	}
	return f, nil
}

func (s *NumberSchema) clone() *NumberSchema {
	c := Number(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// Min requires v >= n.
func (s *NumberSchema) Min(n float64, r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberMin, map[string]string{"min": ftoa(n)}, r, func(v float64) bool { return v < n }))
}

// Max requires v <= n.
func (s *NumberSchema) Max(n float64, r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberMax, map[string]string{"max": ftoa(n)}, r, func(v float64) bool { return v > n }))
}

// Integer requires a finite value without fractional part.
func (s *NumberSchema) Integer(r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberInteger, nil, r, func(v float64) bool {
		return math.IsInf(v, 0) || v != math.Trunc(v)
	}))
}

// Positive requires v > 0.
func (s *NumberSchema) Positive(r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberPositive, nil, r, func(v float64) bool { return v <= 0 }))
}

// Negative requires v < 0.
func (s *NumberSchema) Negative(r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberNegative, nil, r, func(v float64) bool { return v >= 0 }))
}

// SafeInteger requires v within [-(2^53-1), 2^53-1].
func (s *NumberSchema) SafeInteger(r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberSafeInteger, nil, r, func(v float64) bool {
		return v < -maxSafeInteger || v > maxSafeInteger
	}))
}

// Step requires v to be a multiple of step, within floating-point tolerance.
func (s *NumberSchema) Step(step float64, r ...gosift.Replacer) *NumberSchema {
	return s.Validate(rule(gosift.CodeNumberStep, map[string]string{"step": ftoa(step)}, r, func(v float64) bool {
		return !multipleOf(v, step)
	}))
}

func multipleOf(v, step float64) bool {
	if step == 0 || math.IsInf(v, 0) {
		return false
	}
	step = math.Abs(step)
	rem := math.Mod(math.Abs(v), step)
	tol := 4 * epsilon * math.Max(math.Abs(v), step)
	return rem <= tol || step-rem <= tol
}

// IntSchema accepts integral numeric values that fit in an int64.
type IntSchema struct {
	*gosift.Pipeline[int64, *IntSchema]
	msg string
}

// Int returns an int64 schema. Floats are accepted when they hold an integral
// value; conversions that would overflow are rejected.
func Int(msg ...string) *IntSchema {
	s := &IntSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[int64, *IntSchema](s, "int", s.narrow, s.clone)
	return s
}

func (s *IntSchema) narrow(_ context.Context, in any, _ gosift.Mode) (int64, error) {
	var (
		out int64
		err error
	)
	switch n := in.(type) {
	case int:
		out, err = safecast.Conv[int64](n)
	case int8:
		out = int64(n)
	case int16:
		out = int64(n)
	case int32:
		out = int64(n)
	case int64:
		out = n
	case uint:
		out, err = safecast.Conv[int64](n)
	case uint8:
		out = int64(n)
	case uint16:
		out = int64(n)
	case uint32:
		out = int64(n)
	case uint64:
		out, err = safecast.Conv[int64](n)
	case float32:
		out, err = safecast.Convert[int64](n)
	case float64:
		out, err = safecast.Convert[int64](n)
	default:
		return 0, invalidType("integer", s.msg)
	}
	if err != nil {
		return 0, invalidType("integer", s.msg)
	}
	return out, nil
}

func (s *IntSchema) clone() *IntSchema {
	c := Int(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// Min requires v >= n.
func (s *IntSchema) Min(n int64, r ...gosift.Replacer) *IntSchema {
	return s.Validate(rule(gosift.CodeIntMin, map[string]string{"min": strconv.FormatInt(n, 10)}, r, func(v int64) bool { return v < n }))
}

// Max requires v <= n.
func (s *IntSchema) Max(n int64, r ...gosift.Replacer) *IntSchema {
	return s.Validate(rule(gosift.CodeIntMax, map[string]string{"max": strconv.FormatInt(n, 10)}, r, func(v int64) bool { return v > n }))
}

// Positive requires v > 0.
func (s *IntSchema) Positive(r ...gosift.Replacer) *IntSchema {
	return s.Validate(rule(gosift.CodeIntPositive, nil, r, func(v int64) bool { return v <= 0 }))
}

// Negative requires v < 0.
func (s *IntSchema) Negative(r ...gosift.Replacer) *IntSchema {
	return s.Validate(rule(gosift.CodeIntNegative, nil, r, func(v int64) bool { return v >= 0 }))
}

// BigintSchema accepts arbitrary-precision integers as *big.Int. Only
// *big.Int and big.Int inputs narrow; plain Go integers do not.
type BigintSchema struct {
	*gosift.Pipeline[*big.Int, *BigintSchema]
	msg string
}

// Bigint returns a *big.Int schema.
func Bigint(msg ...string) *BigintSchema {
	s := &BigintSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[*big.Int, *BigintSchema](s, "bigint", s.narrow, s.clone)
	return s
}

func (s *BigintSchema) narrow(_ context.Context, in any, _ gosift.Mode) (*big.Int, error) {
	switch n := in.(type) {
	case *big.Int:
		if n != nil {
			return n, nil
		}
	case big.Int:
		return new(big.Int).Set(&n), nil
	}
	return nil, invalidType("bigint", s.msg)
}

func (s *BigintSchema) clone() *BigintSchema {
	c := Bigint(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// Min requires v >= n.
func (s *BigintSchema) Min(n *big.Int, r ...gosift.Replacer) *BigintSchema {
	n = new(big.Int).Set(n)
	return s.Validate(rule(gosift.CodeBigintMin, map[string]string{"min": n.String()}, r, func(v *big.Int) bool { return v.Cmp(n) < 0 }))
}

// Max requires v <= n.
func (s *BigintSchema) Max(n *big.Int, r ...gosift.Replacer) *BigintSchema {
	n = new(big.Int).Set(n)
	return s.Validate(rule(gosift.CodeBigintMax, map[string]string{"max": n.String()}, r, func(v *big.Int) bool { return v.Cmp(n) > 0 }))
}

// Positive requires v > 0.
func (s *BigintSchema) Positive(r ...gosift.Replacer) *BigintSchema {
	return s.Validate(rule(gosift.CodeBigintPositive, nil, r, func(v *big.Int) bool { return v.Sign() <= 0 }))
}

// Negative requires v < 0.
func (s *BigintSchema) Negative(r ...gosift.Replacer) *BigintSchema {
	return s.Validate(rule(gosift.CodeBigintNegative, nil, r, func(v *big.Int) bool { return v.Sign() >= 0 }))
}
