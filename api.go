package gosift

import (
	"context"
)

// Node is the type-erased view of a schema. Composites and combinators hold
// their children as Nodes so heterogeneous members can share one container.
type Node interface {
	// Kind names the schema variant ("string", "object", "union", ...).
	Kind() string
	// ParseAny runs the schema synchronously and returns its output as any.
	ParseAny(ctx context.Context, v any) (any, error)
	// ParseAnyAsync runs the schema awaiting deferred stages.
	ParseAnyAsync(ctx context.Context, v any) (any, error)
	// CloneNode returns an independent copy of the schema.
	CloneNode() Node
}

// Schema is a Node with typed entry points.
type Schema[T any] interface {
	Node

	// Parse transforms an unknown input into T (default -> preprocess ->
	// narrow -> validate -> process). Data errors are returned as Issues.
	Parse(ctx context.Context, v any) (T, error)
	// ParseAsync is Parse that also awaits deferred stages.
	ParseAsync(ctx context.Context, v any) (T, error)
	// SafeParse reports data errors in the Result instead of the error.
	SafeParse(ctx context.Context, v any) (Result[T], error)
	// SafeParseAsync is the asynchronous SafeParse.
	SafeParseAsync(ctx context.Context, v any) (Result[T], error)
	// Run executes the schema in the given mode.
	Run(ctx context.Context, v any, mode Mode) (T, error)
}

// ParseNode runs n in the given mode.
func ParseNode(ctx context.Context, n Node, v any, mode Mode) (any, error) {
	if mode == Async {
		return n.ParseAnyAsync(ctx, v)
	}
	return n.ParseAny(ctx, v)
}

// SafeParseNode runs n in the given mode and separates data errors from fatal
// ones: a batch failure is returned as iss with a nil error.
func SafeParseNode(ctx context.Context, n Node, v any, mode Mode) (out any, iss Issues, err error) {
	out, err = ParseNode(ctx, n, v, mode)
	if err == nil {
		return out, nil, nil
	}
	if batch, ok := AsIssues(err); ok {
		return nil, batch, nil
	}
	return nil, nil, err
}

// Decode is a thin wrapper around Schema.Parse for the forward direction.
func Decode[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	return s.Parse(ctx, v)
}

// MustParse is Parse for values known to be valid, e.g. package-level
// fixtures. It panics on any error.
func MustParse[T any](ctx context.Context, s Schema[T], v any) T {
	out, err := s.Parse(ctx, v)
	if err != nil {
		panic(err)
	}
	return out
}
