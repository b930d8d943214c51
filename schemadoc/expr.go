package schemadoc

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/i18n"
)

// exprEnv is the environment of rule expressions.
type exprEnv struct {
	Value any `expr:"value"`
}

type exprRule struct {
	program *vm.Program
	issue   gosift.Replacer
}

// exprRules compiles the node's rules:
//
//	rules:
//	  - "len(value) % 2 == 0"
//	  - expr: value.start <= value.end
//	    message: start must not be after end
//	    code: range.order
//	    path: /start
func (c *compiler) exprRules(s spec) ([]exprRule, error) {
	list, ok, err := s.list("rules")
	if err != nil || !ok {
		return nil, err
	}
	at := join(s.at, "rules")
	out := make([]exprRule, 0, len(list))
	for i, e := range list {
		r := spec{at: join(at, fmt.Sprint(i))}
		switch t := e.(type) {
		case string:
			r.m = map[string]any{"expr": t}
		case map[string]any:
			r.m = t
		default:
			return nil, r.errf("", "expected an expression or a mapping, got %T", e)
		}
		for _, k := range sortedKeys(r.m) {
			switch k {
			case "expr", "message", "code", "path":
			default:
				return nil, r.errf(k, "unknown key")
			}
		}
		src, ok, err := r.str("expr")
		if err != nil {
			return nil, err
		}
		if !ok || src == "" {
			return nil, r.errf("expr", "expression is required")
		}
		prog, err := expr.Compile(src, expr.Env(exprEnv{}), expr.AsBool())
		if err != nil {
			return nil, r.errf("expr", "%v", err)
		}
		it := gosift.Issue{Code: gosift.CodeValidator, Message: i18n.T(gosift.CodeValidator, nil)}
		if v, ok, err := r.str("code"); err != nil {
			return nil, err
		} else if ok {
			it.Code = v
		}
		if v, ok, err := r.str("message"); err != nil {
			return nil, err
		} else if ok {
			it.Message = v
		}
		if v, ok, err := r.str("path"); err != nil {
			return nil, err
		} else if ok {
			it.Path = gosift.ParsePointer(v)
		}
		out = append(out, exprRule{program: prog, issue: gosift.Template(it)})
		c.log.Debug("compiled rule", slog.String("at", r.at), slog.String("expr", src))
	}
	return out, nil
}

// exprValidator runs r against the parsed value. A runtime error counts as a
// failed rule.
func exprValidator[T any](r exprRule) gosift.Validator[T] {
	return func(v T) gosift.Replacer {
		out, err := expr.Run(r.program, exprEnv{Value: v})
		if err != nil {
			return r.issue
		}
		if ok, _ := out.(bool); ok {
			return nil
		}
		return r.issue
	}
}
