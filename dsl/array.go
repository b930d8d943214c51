package dsl

import (
	"context"

	"github.com/reoring/gosift"
)

// ArraySchema validates every element of a list with one element schema and
// reports all element issues, each prefixed with its index.
type ArraySchema[E any] struct {
	*gosift.Pipeline[[]E, *ArraySchema[E]]
	elem gosift.Node
	msg  string
}

// Array returns a typed list schema. Input may be []any or any slice or array
// value.
func Array[E any](elem gosift.Schema[E], msg ...string) *ArraySchema[E] {
	return newArray[E](elem, first(msg))
}

// ArrayOf returns a list schema over a type-erased element schema.
func ArrayOf(elem gosift.Node, msg ...string) *ArraySchema[any] {
	return newArray[any](elem, first(msg))
}

func newArray[E any](elem gosift.Node, msg string) *ArraySchema[E] {
	s := &ArraySchema[E]{elem: elem.CloneNode(), msg: msg}
	s.Pipeline = gosift.NewPipeline[[]E, *ArraySchema[E]](s, "array", s.narrow, s.clone)
	return s
}

// Element returns the element schema.
func (s *ArraySchema[E]) Element() gosift.Node { return s.elem }

func (s *ArraySchema[E]) narrow(ctx context.Context, in any, mode gosift.Mode) ([]E, error) {
	items, ok := asSlice(in)
	if !ok {
		return nil, invalidType("array", s.msg)
	}
	out := make([]E, len(items))
	var issues gosift.Issues
	for i, item := range items {
		got, iss, err := gosift.SafeParseNode(ctx, s.elem, item, mode)
		if err != nil {
			return nil, err
		}
		if iss != nil {
			issues = gosift.AppendIssues(issues, iss.WithPrefix(gosift.Index(i))...)
			continue
		}
		if out[i], err = cast[E](got); err != nil {
			return nil, err
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (s *ArraySchema[E]) clone() *ArraySchema[E] {
	c := newArray[E](s.elem, s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// NonEmpty requires at least one element.
func (s *ArraySchema[E]) NonEmpty(r ...gosift.Replacer) *ArraySchema[E] {
	return s.Validate(rule(gosift.CodeArrayNonEmpty, nil, r, func(v []E) bool { return len(v) == 0 }))
}

// Min requires at least n elements.
func (s *ArraySchema[E]) Min(n int, r ...gosift.Replacer) *ArraySchema[E] {
	return s.Validate(rule(gosift.CodeArrayMin, map[string]string{"min": itoa(n)}, r, func(v []E) bool { return len(v) < n }))
}

// Max allows at most n elements.
func (s *ArraySchema[E]) Max(n int, r ...gosift.Replacer) *ArraySchema[E] {
	return s.Validate(rule(gosift.CodeArrayMax, map[string]string{"max": itoa(n)}, r, func(v []E) bool { return len(v) > n }))
}

// TupleSchema validates a fixed-length list position by position.
type TupleSchema struct {
	*gosift.Pipeline[[]any, *TupleSchema]
	items []gosift.Node
	msg   string
}

// Tuple returns a tuple schema. The input must have exactly len(items)
// elements.
func Tuple(items ...gosift.Node) *TupleSchema {
	s := &TupleSchema{items: cloneNodes(items)}
	s.Pipeline = gosift.NewPipeline[[]any, *TupleSchema](s, "tuple", s.narrow, s.clone)
	return s
}

// TypeError replaces the invalid-type message.
func (s *TupleSchema) TypeError(msg string) *TupleSchema {
	s.msg = msg
	return s
}

func (s *TupleSchema) narrow(ctx context.Context, in any, mode gosift.Mode) ([]any, error) {
	items, ok := asSlice(in)
	if !ok || len(items) != len(s.items) {
		return nil, invalidType("tuple", s.msg)
	}
	out := make([]any, len(items))
	var issues gosift.Issues
	for i, n := range s.items {
		got, iss, err := gosift.SafeParseNode(ctx, n, items[i], mode)
		if err != nil {
			return nil, err
		}
		if iss != nil {
			issues = gosift.AppendIssues(issues, iss.WithPrefix(gosift.Index(i))...)
			continue
		}
		out[i] = got
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (s *TupleSchema) clone() *TupleSchema {
	c := Tuple(s.items...).TypeError(s.msg)
	c.Adopt(s.Pipeline)
	return c
}
