package dsl

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/i18n"
)

// BooleanSchema accepts Go bools.
type BooleanSchema struct {
	*gosift.Pipeline[bool, *BooleanSchema]
	msg string
}

// Boolean returns a bool schema.
func Boolean(msg ...string) *BooleanSchema {
	s := &BooleanSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[bool, *BooleanSchema](s, "boolean", s.narrow, s.clone)
	return s
}

func (s *BooleanSchema) narrow(_ context.Context, in any, _ gosift.Mode) (bool, error) {
	v, ok := in.(bool)
	if !ok {
		return false, invalidType("boolean", s.msg)
	}
	return v, nil
}

func (s *BooleanSchema) clone() *BooleanSchema {
	c := Boolean(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// BooleanishSchema maps designated strings to true or false.
type BooleanishSchema struct {
	*gosift.Pipeline[bool, *BooleanishSchema]
	trueValues  []string
	falseValues []string
	msg         string
}

// Booleanish returns a schema that yields true for any of trueValues and false
// for any of falseValues. Matching is exact; a string in both sets is true.
func Booleanish(trueValues, falseValues []string, msg ...string) *BooleanishSchema {
	s := &BooleanishSchema{
		trueValues:  slices.Clone(trueValues),
		falseValues: slices.Clone(falseValues),
		msg:         first(msg),
	}
	s.Pipeline = gosift.NewPipeline[bool, *BooleanishSchema](s, "booleanish", s.narrow, s.clone)
	return s
}

func (s *BooleanishSchema) narrow(_ context.Context, in any, _ gosift.Mode) (bool, error) {
	v, ok := in.(string)
	switch {
	case !ok:
	case slices.Contains(s.trueValues, v):
		return true, nil
	case slices.Contains(s.falseValues, v):
		return false, nil
	}
	return false, invalidType("booleanish", s.msg)
}

func (s *BooleanishSchema) clone() *BooleanishSchema {
	c := Booleanish(s.trueValues, s.falseValues, s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// DateSchema accepts time.Time (or a non-nil *time.Time). The zero time is
// treated as an invalid date.
type DateSchema struct {
	*gosift.Pipeline[time.Time, *DateSchema]
	msg string
}

// Date returns a timestamp schema.
func Date(msg ...string) *DateSchema {
	s := &DateSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[time.Time, *DateSchema](s, "date", s.narrow, s.clone)
	return s
}

func (s *DateSchema) narrow(_ context.Context, in any, _ gosift.Mode) (time.Time, error) {
	var t time.Time
	switch v := in.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v != nil {
			t = *v
		}
	}
	if t.IsZero() {
		return time.Time{}, invalidType("date", s.msg)
	}
	return t, nil
}

func (s *DateSchema) clone() *DateSchema {
	c := Date(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// Min requires the date to be on or after t.
func (s *DateSchema) Min(t time.Time, r ...gosift.Replacer) *DateSchema {
	return s.Validate(rule(gosift.CodeDateMin, map[string]string{"date": t.Format(time.RFC3339)}, r, func(v time.Time) bool {
		return v.Before(t)
	}))
}

// Max requires the date to be on or before t.
func (s *DateSchema) Max(t time.Time, r ...gosift.Replacer) *DateSchema {
	return s.Validate(rule(gosift.CodeDateMax, map[string]string{"date": t.Format(time.RFC3339)}, r, func(v time.Time) bool {
		return v.After(t)
	}))
}

// FileSchema accepts *gosift.File blobs.
type FileSchema struct {
	*gosift.Pipeline[*gosift.File, *FileSchema]
	msg string
}

// File returns a blob schema.
func File(msg ...string) *FileSchema {
	s := &FileSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[*gosift.File, *FileSchema](s, "file", s.narrow, s.clone)
	return s
}

func (s *FileSchema) narrow(_ context.Context, in any, _ gosift.Mode) (*gosift.File, error) {
	switch v := in.(type) {
	case *gosift.File:
		if v != nil {
			return v, nil
		}
	case gosift.File:
		return &v, nil
	}
	return nil, invalidType("file", s.msg)
}

func (s *FileSchema) clone() *FileSchema {
	c := File(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// Min requires at least n bytes.
func (s *FileSchema) Min(n int, r ...gosift.Replacer) *FileSchema {
	return s.Validate(rule(gosift.CodeFileMin, map[string]string{"bytes": itoa(n)}, r, func(f *gosift.File) bool {
		return f.Size() < n
	}))
}

// Max allows at most n bytes.
func (s *FileSchema) Max(n int, r ...gosift.Replacer) *FileSchema {
	return s.Validate(rule(gosift.CodeFileMax, map[string]string{"bytes": itoa(n)}, r, func(f *gosift.File) bool {
		return f.Size() > n
	}))
}

// Mime requires the blob's MIME type to be one of types.
func (s *FileSchema) Mime(types []string, r ...gosift.Replacer) *FileSchema {
	types = slices.Clone(types)
	return s.Validate(rule(gosift.CodeFileMime, map[string]string{"types": strings.Join(types, ", ")}, r, func(f *gosift.File) bool {
		return !slices.Contains(types, f.Type)
	}))
}

// LiteralSchema accepts exactly one value.
type LiteralSchema[T comparable] struct {
	*gosift.Pipeline[T, *LiteralSchema[T]]
	value T
	msg   string
}

// Literal returns a schema accepting only v. Numbers compare by value across
// Go numeric kinds, so Literal(1) accepts int64(1) and float64(1).
func Literal[T comparable](v T, msg ...string) *LiteralSchema[T] {
	s := &LiteralSchema[T]{value: v, msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[T, *LiteralSchema[T]](s, "literal", s.narrow, s.clone)
	return s
}

// Value returns the accepted literal.
func (s *LiteralSchema[T]) Value() T { return s.value }

func (s *LiteralSchema[T]) narrow(_ context.Context, in any, _ gosift.Mode) (T, error) {
	if !sameValue(in, s.value) {
		var zero T
		return zero, invalidType(fmt.Sprintf("%q", fmt.Sprint(s.value)), s.msg)
	}
	return s.value, nil
}

func (s *LiteralSchema[T]) clone() *LiteralSchema[T] {
	c := Literal(s.value, s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// EnumSchema accepts one of a fixed set of values.
type EnumSchema[T comparable] struct {
	*gosift.Pipeline[T, *EnumSchema[T]]
	values []T
	msg    string
}

// Enum returns a schema accepting any of values.
func Enum[T comparable](values []T, msg ...string) *EnumSchema[T] {
	s := &EnumSchema[T]{values: slices.Clone(values), msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[T, *EnumSchema[T]](s, "enum", s.narrow, s.clone)
	return s
}

// Values returns a copy of the accepted values.
func (s *EnumSchema[T]) Values() []T { return slices.Clone(s.values) }

func (s *EnumSchema[T]) narrow(_ context.Context, in any, _ gosift.Mode) (T, error) {
	for _, v := range s.values {
		if sameValue(in, v) {
			return v, nil
		}
	}
	var zero T
	if s.msg != "" {
		return zero, invalidType("", s.msg)
	}
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = fmt.Sprint(v)
	}
	return zero, gosift.Issues{{
		Code:    gosift.CodeInvalidType,
		Message: i18n.T("invalid_enum", map[string]string{"values": strings.Join(parts, ", ")}),
	}}
}

func (s *EnumSchema[T]) clone() *EnumSchema[T] {
	c := Enum(s.values, s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// UndefinedSchema accepts only gosift.Missing. Its output is Missing, so an
// object field declared with it is left out of the result.
type UndefinedSchema struct {
	*gosift.Pipeline[any, *UndefinedSchema]
	msg string
}

// Undefined returns a schema accepting only an absent value.
func Undefined(msg ...string) *UndefinedSchema {
	s := &UndefinedSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[any, *UndefinedSchema](s, "undefined", s.narrow, s.clone)
	return s
}

func (s *UndefinedSchema) narrow(_ context.Context, in any, _ gosift.Mode) (any, error) {
	if !gosift.IsMissing(in) {
		return nil, invalidType("undefined", s.msg)
	}
	return gosift.Missing, nil
}

func (s *UndefinedSchema) clone() *UndefinedSchema {
	c := Undefined(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// NullSchema accepts only nil.
type NullSchema struct {
	*gosift.Pipeline[any, *NullSchema]
	msg string
}

// Null returns a schema accepting only nil.
func Null(msg ...string) *NullSchema {
	s := &NullSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[any, *NullSchema](s, "null", s.narrow, s.clone)
	return s
}

func (s *NullSchema) narrow(_ context.Context, in any, _ gosift.Mode) (any, error) {
	if in != nil {
		return nil, invalidType("null", s.msg)
	}
	return nil, nil
}

func (s *NullSchema) clone() *NullSchema {
	c := Null(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// AnySchema accepts every value, Missing included.
type AnySchema struct {
	*gosift.Pipeline[any, *AnySchema]
}

// Any returns a schema that never fails narrowing.
func Any() *AnySchema {
	s := &AnySchema{}
	s.Pipeline = gosift.NewPipeline[any, *AnySchema](s, "any", s.narrow, s.clone)
	return s
}

func (s *AnySchema) narrow(_ context.Context, in any, _ gosift.Mode) (any, error) { return in, nil }

func (s *AnySchema) clone() *AnySchema {
	c := Any()
	c.Adopt(s.Pipeline)
	return c
}
