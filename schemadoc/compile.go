package schemadoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/dsl"
)

// ErrInvalidDocument is wrapped by every compile error. The message names the
// JSON Pointer of the offending entry.
var ErrInvalidDocument = errors.New("schemadoc: invalid document")

// commonKeys are accepted on every node.
var commonKeys = []string{"type", "message", "optional", "nullable", "default", "fallback", "rules", "description"}

// Document is a compiled schema document.
type Document struct {
	// Root validates documents' subject values.
	Root gosift.Node

	defs map[string]gosift.Node
}

// Definition returns the compiled named definition.
func (d *Document) Definition(name string) (gosift.Node, bool) {
	n, ok := d.defs[name]
	return n, ok
}

// Names lists the definition names in ascending order.
func (d *Document) Names() []string {
	out := make([]string, 0, len(d.defs))
	for k := range d.defs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Option configures Compile.
type Option func(*compiler)

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *compiler) {
		if l != nil {
			c.log = l
		}
	}
}

type compiler struct {
	log   *slog.Logger
	raw   map[string]any
	nodes map[string]gosift.Node
}

// Compile builds a Document from a decoded schema document:
//
//	definitions:        # optional, referenced with {ref: name}
//	  tag: {type: string, min: 1}
//	schema:
//	  type: object
//	  fields:
//	    - {name: id, type: int, positive: true}
//	    - {name: tags, type: array, items: {ref: tag}, unique: true}
func Compile(doc map[string]any, opts ...Option) (*Document, error) {
	c := &compiler{log: slog.Default(), raw: map[string]any{}, nodes: map[string]gosift.Node{}}
	for _, o := range opts {
		o(c)
	}
	top := spec{at: "/", m: doc}
	if err := top.check([]string{"schema", "definitions", "version"}); err != nil {
		return nil, err
	}
	if d, ok := doc["definitions"]; ok {
		m, isMap := d.(map[string]any)
		if !isMap {
			return nil, top.errf("definitions", "expected a mapping, got %T", d)
		}
		c.raw = m
	}
	// refs resolve through c.nodes at parse time, so every definition can be
	// compiled independently
	for _, name := range sortedKeys(c.raw) {
		n, err := c.node(join("/definitions", name), c.raw[name])
		if err != nil {
			return nil, err
		}
		c.nodes[name] = n
		c.log.Debug("compiled definition", slog.String("name", name), slog.String("kind", n.Kind()))
	}
	root, ok := doc["schema"]
	if !ok {
		return nil, top.errf("", "missing schema")
	}
	n, err := c.node("/schema", root)
	if err != nil {
		return nil, err
	}
	c.log.Debug("compiled schema", slog.String("kind", n.Kind()), slog.Int("definitions", len(c.nodes)))
	return &Document{Root: n, defs: c.nodes}, nil
}

func (c *compiler) node(at string, v any) (gosift.Node, error) {
	var s spec
	switch t := v.(type) {
	case string:
		// shorthand: "name: string"
		s = spec{at: at, m: map[string]any{"type": t}}
	case map[string]any:
		s = spec{at: at, m: t}
	default:
		return nil, fmt.Errorf("%w: %s: expected a mapping or a type name, got %T", ErrInvalidDocument, at, v)
	}

	var (
		n   gosift.Node
		err error
	)
	if s.has("ref") {
		n, err = c.ref(s)
	} else {
		typ, ok, terr := s.str("type")
		if terr != nil {
			return nil, terr
		}
		if !ok {
			return nil, s.errf("", "missing type or ref")
		}
		b, known := builders[typ]
		if !known {
			return nil, s.errf("type", "unknown type %q (known: %s)", typ, strings.Join(typeNames(), ", "))
		}
		if err := s.check(b.keys); err != nil {
			return nil, err
		}
		n, err = b.build(c, s)
	}
	if err != nil {
		return nil, err
	}
	return wrap(s, n)
}

func (c *compiler) ref(s spec) (gosift.Node, error) {
	if err := s.check([]string{"ref"}); err != nil {
		return nil, err
	}
	name, _, err := s.str("ref")
	if err != nil {
		return nil, err
	}
	if _, ok := c.raw[name]; !ok {
		return nil, s.errf("ref", "unknown definition %q", name)
	}
	l := dsl.LazyNode(func() gosift.Node {
		if n, ok := c.nodes[name]; ok {
			return n
		}
		return unresolved(name)
	})
	return decorate(c, s, l, l.Pipeline)
}

// unresolved stands in for a definition that is still being compiled, which
// only happens while a default or fallback value is checked.
type unresolved string

func (u unresolved) Kind() string { return "ref" }

func (u unresolved) ParseAny(context.Context, any) (any, error) {
	return nil, fmt.Errorf("schemadoc: definition %q is referenced before it is compiled", string(u))
}

func (u unresolved) ParseAnyAsync(ctx context.Context, v any) (any, error) {
	return u.ParseAny(ctx, v)
}

func (u unresolved) CloneNode() gosift.Node { return u }

// wrap applies optional/nullable. A wrapped node takes the default and
// fallback itself, since the wrapper answers Missing before the inner node
// would see it.
func wrap(s spec, n gosift.Node) (gosift.Node, error) {
	opt, err := s.flag("optional")
	if err != nil {
		return nil, err
	}
	null, err := s.flag("nullable")
	if err != nil {
		return nil, err
	}
	var w *dsl.WrapperSchema
	switch {
	case opt && null:
		w = dsl.Nullish(n)
	case opt:
		w = dsl.Optional(n)
	case null:
		w = dsl.Nullable(n)
	default:
		return n, nil
	}
	if err := defaults(s, w, w.Pipeline); err != nil {
		return nil, err
	}
	return w, nil
}

func wrapped(s spec) bool {
	opt, _ := s.flag("optional")
	null, _ := s.flag("nullable")
	return opt || null
}

// decorate attaches the stages every node type accepts: expression rules,
// then default and fallback unless wrap owns them.
func decorate[T any, S gosift.Schema[T]](c *compiler, s spec, n S, p *gosift.Pipeline[T, S]) (gosift.Node, error) {
	rs, err := c.exprRules(s)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		p.Validate(exprValidator[T](r))
	}
	if !wrapped(s) {
		if err := defaults(s, n, p); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// defaults parses the default and fallback values through n and installs
// them, so an invalid one fails compilation.
func defaults[T any, S gosift.Schema[T]](s spec, n S, p *gosift.Pipeline[T, S]) error {
	ctx := context.Background()
	for _, key := range []string{"default", "fallback"} {
		raw, ok := s.m[key]
		if !ok {
			continue
		}
		v, err := n.Parse(ctx, raw)
		if err != nil {
			return s.errf(key, "value does not satisfy the schema: %v", err)
		}
		if key == "default" {
			p.Default(v)
		} else {
			p.Fallback(v)
		}
	}
	return nil
}
