package dsl

import (
	"context"
	"maps"

	"github.com/reoring/gosift"
)

// UnionSchema tries its options in order and yields the first success. When
// every option fails, the issues of all options are reported in option order.
type UnionSchema struct {
	*gosift.Pipeline[any, *UnionSchema]
	options []gosift.Node
}

// Union returns a union over options (each cloned).
func Union(options ...gosift.Node) *UnionSchema {
	s := &UnionSchema{options: cloneNodes(options)}
	s.Pipeline = gosift.NewPipeline[any, *UnionSchema](s, "union", s.narrow, s.clone)
	return s
}

// Options returns the union members in order.
func (s *UnionSchema) Options() []gosift.Node { return append([]gosift.Node(nil), s.options...) }

func (s *UnionSchema) narrow(ctx context.Context, in any, mode gosift.Mode) (any, error) {
	var issues gosift.Issues
	for _, opt := range s.options {
		got, iss, err := gosift.SafeParseNode(ctx, opt, in, mode)
		if err != nil {
			return nil, err
		}
		if iss == nil {
			return got, nil
		}
		issues = gosift.AppendIssues(issues, iss...)
	}
	return nil, issues
}

func (s *UnionSchema) clone() *UnionSchema {
	c := Union(s.options...)
	c.Adopt(s.Pipeline)
	return c
}

// IntersectionSchema runs every member on the same input. Outputs that are
// string-keyed maps (objects, records) are merged key by key with later
// members winning; any other output replaces the
// result so far. Issues from all failing members are reported together.
type IntersectionSchema struct {
	*gosift.Pipeline[any, *IntersectionSchema]
	members []gosift.Node
}

// Intersection returns an intersection over members (each cloned).
func Intersection(members ...gosift.Node) *IntersectionSchema {
	s := &IntersectionSchema{members: cloneNodes(members)}
	s.Pipeline = gosift.NewPipeline[any, *IntersectionSchema](s, "intersection", s.narrow, s.clone)
	return s
}

func (s *IntersectionSchema) narrow(ctx context.Context, in any, mode gosift.Mode) (any, error) {
	var (
		merged any = map[string]any{}
		issues gosift.Issues
		seen   bool
	)
	for _, m := range s.members {
		got, iss, err := gosift.SafeParseNode(ctx, m, in, mode)
		if err != nil {
			return nil, err
		}
		if iss != nil {
			issues = gosift.AppendIssues(issues, iss...)
			continue
		}
		obj, isObj := asMap(got)
		prev, prevObj := asMap(merged)
		if isObj && seen && prevObj {
			next := maps.Clone(prev)
			maps.Copy(next, obj)
			merged = next
		} else {
			merged = got
		}
		seen = true
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return merged, nil
}

func (s *IntersectionSchema) clone() *IntersectionSchema {
	c := Intersection(s.members...)
	c.Adopt(s.Pipeline)
	return c
}

// LazySchema defers building its target until parse time, which allows
// self-referential schemas. The factory is invoked on every parse and its
// result is cloned before use.
type LazySchema[T any] struct {
	*gosift.Pipeline[T, *LazySchema[T]]
	factory func() gosift.Node
}

// Lazy returns a schema resolved from factory on each parse.
func Lazy[T any](factory func() gosift.Schema[T]) *LazySchema[T] {
	return newLazy[T](func() gosift.Node { return factory() })
}

// LazyNode is Lazy for type-erased targets.
func LazyNode(factory func() gosift.Node) *LazySchema[any] {
	return newLazy[any](factory)
}

func newLazy[T any](factory func() gosift.Node) *LazySchema[T] {
	s := &LazySchema[T]{factory: factory}
	s.Pipeline = gosift.NewPipeline[T, *LazySchema[T]](s, "lazy", s.narrow, s.clone)
	return s
}

func (s *LazySchema[T]) narrow(ctx context.Context, in any, mode gosift.Mode) (T, error) {
	var zero T
	got, err := gosift.ParseNode(ctx, s.factory().CloneNode(), in, mode)
	if err != nil {
		return zero, err
	}
	return cast[T](got)
}

func (s *LazySchema[T]) clone() *LazySchema[T] {
	c := newLazy[T](s.factory)
	c.Adopt(s.Pipeline)
	return c
}

// MutateSchema parses with from, transforms the output, and parses the
// transformed value with to.
type MutateSchema[A, B any] struct {
	*gosift.Pipeline[B, *MutateSchema[A, B]]
	from gosift.Schema[A]
	to   gosift.Schema[B]
	fn   func(context.Context, A) (any, error)
	// async marks fn as deferred; it then requires the async parser.
	async bool
}

// Mutate returns a schema that converts from's output with fn and validates
// the result with to.
func Mutate[A, B any](from gosift.Schema[A], to gosift.Schema[B], fn func(A) any) *MutateSchema[A, B] {
	return newMutate(from, to, func(_ context.Context, a A) (any, error) { return fn(a), nil }, false)
}

// MutateAsync is Mutate with a converter that may block. It can only run
// under the async parser.
func MutateAsync[A, B any](from gosift.Schema[A], to gosift.Schema[B], fn func(context.Context, A) (any, error)) *MutateSchema[A, B] {
	return newMutate(from, to, fn, true)
}

func newMutate[A, B any](from gosift.Schema[A], to gosift.Schema[B], fn func(context.Context, A) (any, error), async bool) *MutateSchema[A, B] {
	s := &MutateSchema[A, B]{from: cloneSchema(from), to: cloneSchema(to), fn: fn, async: async}
	s.Pipeline = gosift.NewPipeline[B, *MutateSchema[A, B]](s, "mutate", s.narrow, s.clone)
	return s
}

func (s *MutateSchema[A, B]) narrow(ctx context.Context, in any, mode gosift.Mode) (B, error) {
	var zero B
	a, err := s.from.Run(ctx, in, mode)
	if err != nil {
		return zero, err
	}
	if s.async && mode != gosift.Async {
		return zero, gosift.AsyncStageError("mutator")
	}
	mid, err := s.fn(ctx, a)
	if err != nil {
		return zero, err
	}
	return s.to.Run(ctx, mid, mode)
}

func (s *MutateSchema[A, B]) clone() *MutateSchema[A, B] {
	c := newMutate(s.from, s.to, s.fn, s.async)
	c.Adopt(s.Pipeline)
	return c
}

func cloneSchema[T any](s gosift.Schema[T]) gosift.Schema[T] {
	if c, ok := s.CloneNode().(gosift.Schema[T]); ok {
		return c
	}
	return s
}
