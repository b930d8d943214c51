package dsl

import (
	"context"

	"github.com/reoring/gosift"
)

// passWhen selects which absent-ish inputs a wrapper passes through untouched.
type passWhen uint8

const (
	passMissing passWhen = 1 << iota
	passNil
)

// WrapperSchema lets some absent-ish inputs through and hands everything else
// to the inner schema. It backs Optional, Nullable and Nullish.
type WrapperSchema struct {
	*gosift.Pipeline[any, *WrapperSchema]
	inner gosift.Node
	pass  passWhen
}

// Optional accepts gosift.Missing (yielding Missing) in addition to what inner
// accepts.
func Optional(inner gosift.Node) *WrapperSchema { return newWrapper("optional", inner, passMissing) }

// Nullable accepts nil in addition to what inner accepts.
func Nullable(inner gosift.Node) *WrapperSchema { return newWrapper("nullable", inner, passNil) }

// Nullish accepts both gosift.Missing and nil.
func Nullish(inner gosift.Node) *WrapperSchema {
	return newWrapper("nullish", inner, passMissing|passNil)
}

func newWrapper(kind string, inner gosift.Node, pass passWhen) *WrapperSchema {
	s := &WrapperSchema{inner: inner.CloneNode(), pass: pass}
	s.Pipeline = gosift.NewPipeline[any, *WrapperSchema](s, kind, s.narrow, s.clone)
	return s
}

// Unwrap returns the inner schema.
func (s *WrapperSchema) Unwrap() gosift.Node { return s.inner }

func (s *WrapperSchema) narrow(ctx context.Context, in any, mode gosift.Mode) (any, error) {
	switch {
	case s.pass&passMissing != 0 && gosift.IsMissing(in):
		return gosift.Missing, nil
	case s.pass&passNil != 0 && in == nil:
		return nil, nil
	}
	return gosift.ParseNode(ctx, s.inner, in, mode)
}

func (s *WrapperSchema) clone() *WrapperSchema {
	c := newWrapper(s.Kind(), s.inner, s.pass)
	c.Adopt(s.Pipeline)
	return c
}
