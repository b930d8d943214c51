package gosift

import (
	"context"
	"slices"

	"github.com/reoring/gosift/i18n"
	"github.com/reoring/gosift/internal/deepcopy"
)

// Validator reports a violation for v, or nil when v passes.
type Validator[T any] func(v T) Replacer

// AsyncValidator is a Validator that may block on I/O. It can only run under
// ParseAsync/SafeParseAsync.
type AsyncValidator[T any] func(ctx context.Context, v T) (Replacer, error)

// Narrower is the variant-specific stage of a schema: it checks the run-time
// shape of in and produces the typed output, recursing into child schemas
// with the same mode.
type Narrower[T any] func(ctx context.Context, in any, mode Mode) (T, error)

// step is a stage function that completes either immediately (now) or only
// after being awaited (later). Exactly one of the two is set.
type step[I, O any] struct {
	name  string
	now   func(I) O
	later func(context.Context, I) (O, error)
}

func (s step[I, O]) run(ctx context.Context, in I, mode Mode) (O, error) {
	if s.later == nil {
		return s.now(in), nil
	}
	if mode != Async {
		var zero O
		return zero, AsyncStageError(s.name)
	}
	return s.later(ctx, in)
}

// valueSource backs Default and Fallback: a literal or a factory step.
type valueSource[T any] struct {
	literal T
	factory *step[struct{}, T]
}

func (v *valueSource[T]) produce(ctx context.Context, mode Mode) (T, error) {
	if v.factory == nil {
		return deepcopy.Of(v.literal), nil
	}
	out, err := v.factory.run(ctx, struct{}{}, mode)
	if err != nil {
		return out, err
	}
	return deepcopy.Of(out), nil
}

func (v *valueSource[T]) clone() *valueSource[T] {
	if v == nil {
		return nil
	}
	return &valueSource[T]{literal: deepcopy.Of(v.literal), factory: v.factory}
}

// Pipeline owns a schema's configuration and executes the parse stages in a
// fixed order: default, preprocess, narrow, validate, process, with fallback
// wrapping the whole attempt.
//
// Concrete schemas embed *Pipeline[T, *Concrete] so that builder methods
// return the concrete type for chaining.
type Pipeline[T any, S any] struct {
	self   S
	kind   string
	narrow Narrower[T]
	clone  func() S

	preprocessors []step[any, any]
	validators    []step[T, Replacer]
	processors    []step[T, T]
	def           *valueSource[T]
	fallback      *valueSource[T]
}

// NewPipeline wires a pipeline for self. clone must build a fresh instance of
// the concrete schema and call Adopt on its pipeline.
func NewPipeline[T any, S any](self S, kind string, narrow Narrower[T], clone func() S) *Pipeline[T, S] {
	return &Pipeline[T, S]{self: self, kind: kind, narrow: narrow, clone: clone}
}

// Adopt replaces this pipeline's configuration with an independent copy of
// src's configuration.
func (p *Pipeline[T, S]) Adopt(src *Pipeline[T, S]) {
	p.preprocessors = slices.Clone(src.preprocessors)
	p.validators = slices.Clone(src.validators)
	p.processors = slices.Clone(src.processors)
	p.def = src.def.clone()
	p.fallback = src.fallback.clone()
}

// Kind names the schema variant ("string", "object", ...).
func (p *Pipeline[T, S]) Kind() string { return p.kind }

// Clone returns a deep, independent copy of the schema including its
// configuration.
func (p *Pipeline[T, S]) Clone() S { return p.clone() }

// CloneNode is Clone for type-erased callers.
func (p *Pipeline[T, S]) CloneNode() Node {
	n, _ := any(p.clone()).(Node)
	return n
}

// ---- builders ----

// Validate appends a validator. Validators run in registration order and all
// of them run; their issues are reported together.
func (p *Pipeline[T, S]) Validate(fn Validator[T]) S {
	p.validators = append(p.validators, step[T, Replacer]{name: "validator", now: fn})
	return p.self
}

// ValidateAsync appends a validator that requires the async parser.
func (p *Pipeline[T, S]) ValidateAsync(fn AsyncValidator[T]) S {
	p.validators = append(p.validators, step[T, Replacer]{name: "validator", later: fn})
	return p.self
}

// Process appends a transform applied to the validated output.
func (p *Pipeline[T, S]) Process(fn func(T) T) S {
	p.processors = append(p.processors, step[T, T]{name: "processor", now: fn})
	return p.self
}

// ProcessAsync appends a transform that requires the async parser.
func (p *Pipeline[T, S]) ProcessAsync(fn func(context.Context, T) (T, error)) S {
	p.processors = append(p.processors, step[T, T]{name: "processor", later: fn})
	return p.self
}

// Preprocess appends a transform applied to the raw input before narrowing.
func (p *Pipeline[T, S]) Preprocess(fn func(any) any) S {
	p.preprocessors = append(p.preprocessors, step[any, any]{name: "preprocessor", now: fn})
	return p.self
}

// PreprocessAsync appends an input transform that requires the async parser.
func (p *Pipeline[T, S]) PreprocessAsync(fn func(context.Context, any) (any, error)) S {
	p.preprocessors = append(p.preprocessors, step[any, any]{name: "preprocessor", later: fn})
	return p.self
}

// Default sets the value produced when the input is Missing.
func (p *Pipeline[T, S]) Default(v T) S {
	p.def = &valueSource[T]{literal: deepcopy.Of(v)}
	return p.self
}

// DefaultFunc sets a factory invoked when the input is Missing.
func (p *Pipeline[T, S]) DefaultFunc(fn func() T) S {
	p.def = &valueSource[T]{factory: &step[struct{}, T]{name: "default", now: func(struct{}) T { return fn() }}}
	return p.self
}

// DefaultAsync sets a factory that requires the async parser.
func (p *Pipeline[T, S]) DefaultAsync(fn func(context.Context) (T, error)) S {
	p.def = &valueSource[T]{factory: &step[struct{}, T]{name: "default", later: func(ctx context.Context, _ struct{}) (T, error) { return fn(ctx) }}}
	return p.self
}

// Fallback sets the value produced when parsing fails with Issues.
func (p *Pipeline[T, S]) Fallback(v T) S {
	p.fallback = &valueSource[T]{literal: deepcopy.Of(v)}
	return p.self
}

// FallbackFunc sets a factory invoked when parsing fails with Issues.
func (p *Pipeline[T, S]) FallbackFunc(fn func() T) S {
	p.fallback = &valueSource[T]{factory: &step[struct{}, T]{name: "fallback", now: func(struct{}) T { return fn() }}}
	return p.self
}

// FallbackAsync sets a fallback factory that requires the async parser.
func (p *Pipeline[T, S]) FallbackAsync(fn func(context.Context) (T, error)) S {
	p.fallback = &valueSource[T]{factory: &step[struct{}, T]{name: "fallback", later: func(ctx context.Context, _ struct{}) (T, error) { return fn(ctx) }}}
	return p.self
}

// ---- entry points ----

// Parse runs the pipeline synchronously. It returns Issues on data errors and
// an ErrAsyncStage error when a stage can only complete asynchronously.
func (p *Pipeline[T, S]) Parse(ctx context.Context, v any) (T, error) {
	return p.Run(ctx, v, Sync)
}

// ParseAsync runs the pipeline awaiting every stage.
func (p *Pipeline[T, S]) ParseAsync(ctx context.Context, v any) (T, error) {
	return p.Run(ctx, v, Async)
}

// SafeParse is Parse with data errors reported in the Result. The returned
// error is non-nil only for pipeline misuse.
func (p *Pipeline[T, S]) SafeParse(ctx context.Context, v any) (Result[T], error) {
	return toResult(p.Run(ctx, v, Sync))
}

// SafeParseAsync is the asynchronous SafeParse.
func (p *Pipeline[T, S]) SafeParseAsync(ctx context.Context, v any) (Result[T], error) {
	return toResult(p.Run(ctx, v, Async))
}

// ParseAny is Parse for type-erased callers.
func (p *Pipeline[T, S]) ParseAny(ctx context.Context, v any) (any, error) {
	return p.Run(ctx, v, Sync)
}

// ParseAnyAsync is ParseAsync for type-erased callers.
func (p *Pipeline[T, S]) ParseAnyAsync(ctx context.Context, v any) (any, error) {
	return p.Run(ctx, v, Async)
}

// Run executes the pipeline in the given mode. A configured fallback replaces
// any Issues failure; other errors propagate unchanged.
func (p *Pipeline[T, S]) Run(ctx context.Context, v any, mode Mode) (T, error) {
	out, err := p.execute(ctx, v, mode)
	if err == nil || p.fallback == nil {
		return out, err
	}
	if _, ok := AsIssues(err); !ok {
		return out, err
	}
	return p.fallback.produce(ctx, mode)
}

func (p *Pipeline[T, S]) execute(ctx context.Context, v any, mode Mode) (T, error) {
	var zero T
	if IsMissing(v) && p.def != nil {
		return p.def.produce(ctx, mode)
	}

	in := deepcopy.Copy(v)
	for _, pre := range p.preprocessors {
		next, err := pre.run(ctx, in, mode)
		if err != nil {
			return zero, err
		}
		in = next
	}

	out, err := p.narrow(ctx, deepcopy.Copy(in), mode)
	if err != nil {
		return zero, err
	}

	var issues Issues
	for _, val := range p.validators {
		r, err := val.run(ctx, deepcopy.Of(out), mode)
		if err != nil {
			return zero, err
		}
		if r != nil {
			issues = AppendIssues(issues, BuildIssue(CodeValidator, i18n.T(CodeValidator, nil), r))
		}
	}
	if len(issues) > 0 {
		return zero, issues
	}

	for _, proc := range p.processors {
		next, err := proc.run(ctx, deepcopy.Of(out), mode)
		if err != nil {
			return zero, err
		}
		out = next
	}
	return out, nil
}

func toResult[T any](v T, err error) (Result[T], error) {
	if err == nil {
		return Result[T]{Success: true, Data: v}, nil
	}
	if iss, ok := AsIssues(err); ok {
		return Result[T]{Issues: iss}, nil
	}
	return Result[T]{}, err
}
