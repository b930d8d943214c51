package schemadoc

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/codec"
	"github.com/reoring/gosift/dsl"
	"github.com/reoring/gosift/rules"
)

type builder struct {
	keys  []string
	build func(c *compiler, s spec) (gosift.Node, error)
}

var builders map[string]builder

func init() {
	builders = map[string]builder{
		"string":        {[]string{"non_empty", "min", "max", "length", "pattern", "format"}, buildString},
		"number":        {[]string{"min", "max", "integer", "positive", "negative", "safe_integer", "step"}, buildNumber},
		"int":           {[]string{"min", "max", "positive", "negative"}, buildInt},
		"integer":       {[]string{"min", "max", "positive", "negative"}, buildInt},
		"bigint":        {[]string{"min", "max", "positive", "negative"}, buildBigint},
		"boolean":       {nil, buildBoolean},
		"booleanish":    {[]string{"true_values", "false_values"}, buildBooleanish},
		"date":          {[]string{"min", "max"}, buildDate},
		"rfc3339":       {[]string{"min", "max"}, buildRFC3339},
		"number_string": {[]string{"min", "max"}, buildNumberString},
		"int_string":    {[]string{"min", "max"}, buildIntString},
		"file":          {[]string{"min", "max", "mime"}, buildFile},
		"literal":       {[]string{"value"}, buildLiteral},
		"enum":          {[]string{"values"}, buildEnum},
		"undefined":     {nil, buildUndefined},
		"null":          {nil, buildNull},
		"any":           {nil, buildAny},
		"object":        {[]string{"fields", "when"}, buildObject},
		"array":         {[]string{"items", "min", "max", "non_empty", "unique"}, buildArray},
		"tuple":         {[]string{"items"}, buildTuple},
		"record":        {[]string{"keys", "values"}, buildRecord},
		"union":         {[]string{"options"}, buildUnion},
		"intersection":  {[]string{"members"}, buildIntersection},
	}
}

func typeNames() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func message(s spec) ([]string, error) {
	m, ok, err := s.str("message")
	if err != nil || !ok {
		return nil, err
	}
	return []string{m}, nil
}

func buildString(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.String(msg...)
	if ok, err := s.flag("non_empty"); err != nil {
		return nil, err
	} else if ok {
		n.NonEmpty()
	}
	if v, ok, err := s.size("min"); err != nil {
		return nil, err
	} else if ok {
		n.Min(v)
	}
	if v, ok, err := s.size("max"); err != nil {
		return nil, err
	} else if ok {
		n.Max(v)
	}
	if v, ok, err := s.size("length"); err != nil {
		return nil, err
	} else if ok {
		n.Length(v)
	}
	if p, ok, err := s.str("pattern"); err != nil {
		return nil, err
	} else if ok {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, s.errf("pattern", "%v", err)
		}
		n.Regex(re)
	}
	if f, ok, err := s.str("format"); err != nil {
		return nil, err
	} else if ok {
		switch f {
		case "email":
			n.Email()
		case "url":
			n.URL()
		case "uuid":
			n.UUID()
		default:
			return nil, s.errf("format", "unknown format %q", f)
		}
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildNumber(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Number(msg...)
	if v, ok, err := s.float("min"); err != nil {
		return nil, err
	} else if ok {
		n.Min(v)
	}
	if v, ok, err := s.float("max"); err != nil {
		return nil, err
	} else if ok {
		n.Max(v)
	}
	if v, ok, err := s.float("step"); err != nil {
		return nil, err
	} else if ok {
		if v <= 0 {
			return nil, s.errf("step", "must be positive")
		}
		n.Step(v)
	}
	flags := []struct {
		key   string
		apply func(...gosift.Replacer) *dsl.NumberSchema
	}{
		{"integer", n.Integer},
		{"positive", n.Positive},
		{"negative", n.Negative},
		{"safe_integer", n.SafeInteger},
	}
	for _, f := range flags {
		if ok, err := s.flag(f.key); err != nil {
			return nil, err
		} else if ok {
			f.apply()
		}
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildInt(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Int(msg...)
	if v, ok, err := s.integer("min"); err != nil {
		return nil, err
	} else if ok {
		n.Min(v)
	}
	if v, ok, err := s.integer("max"); err != nil {
		return nil, err
	} else if ok {
		n.Max(v)
	}
	if ok, err := s.flag("positive"); err != nil {
		return nil, err
	} else if ok {
		n.Positive()
	}
	if ok, err := s.flag("negative"); err != nil {
		return nil, err
	} else if ok {
		n.Negative()
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildBigint(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Bigint(msg...)
	if v, ok, err := s.bigint("min"); err != nil {
		return nil, err
	} else if ok {
		n.Min(v)
	}
	if v, ok, err := s.bigint("max"); err != nil {
		return nil, err
	} else if ok {
		n.Max(v)
	}
	if ok, err := s.flag("positive"); err != nil {
		return nil, err
	} else if ok {
		n.Positive()
	}
	if ok, err := s.flag("negative"); err != nil {
		return nil, err
	} else if ok {
		n.Negative()
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildBoolean(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Boolean(msg...)
	return decorate(c, s, n, n.Pipeline)
}

func buildBooleanish(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	tv, ok, err := s.strs("true_values")
	if err != nil {
		return nil, err
	}
	if !ok {
		tv = []string{"true", "1", "yes", "on"}
	}
	fv, ok, err := s.strs("false_values")
	if err != nil {
		return nil, err
	}
	if !ok {
		fv = []string{"false", "0", "no", "off"}
	}
	n := dsl.Booleanish(tv, fv, msg...)
	return decorate(c, s, n, n.Pipeline)
}

// dateRange reads min/max bounds shared by date-like types.
func dateRange(s spec, n *dsl.DateSchema) error {
	if t, ok, err := s.instant("min"); err != nil {
		return err
	} else if ok {
		n.Min(t)
	}
	if t, ok, err := s.instant("max"); err != nil {
		return err
	} else if ok {
		n.Max(t)
	}
	return nil
}

// buildDate accepts time values as well as RFC3339 strings, since text
// formats carry dates as strings.
func buildDate(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Date(msg...).Preprocess(func(v any) any {
		str, ok := v.(string)
		if !ok {
			return v
		}
		if t, err := codec.ParseRFC3339(str); err == nil {
			return t
		}
		return v
	})
	if err := dateRange(s, n); err != nil {
		return nil, err
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildRFC3339(c *compiler, s spec) (gosift.Node, error) {
	var to []gosift.Schema[time.Time]
	if s.has("min") || s.has("max") {
		d := dsl.Date()
		if err := dateRange(s, d); err != nil {
			return nil, err
		}
		to = append(to, d)
	}
	n := codec.RFC3339Time(to...)
	return decorate(c, s, n, n.Pipeline)
}

func buildNumberString(c *compiler, s spec) (gosift.Node, error) {
	var to []gosift.Schema[float64]
	if s.has("min") || s.has("max") {
		num := dsl.Number()
		if v, ok, err := s.float("min"); err != nil {
			return nil, err
		} else if ok {
			num.Min(v)
		}
		if v, ok, err := s.float("max"); err != nil {
			return nil, err
		} else if ok {
			num.Max(v)
		}
		to = append(to, num)
	}
	n := codec.NumberFromString(to...)
	return decorate(c, s, n, n.Pipeline)
}

func buildIntString(c *compiler, s spec) (gosift.Node, error) {
	var to []gosift.Schema[int64]
	if s.has("min") || s.has("max") {
		i := dsl.Int()
		if v, ok, err := s.integer("min"); err != nil {
			return nil, err
		} else if ok {
			i.Min(v)
		}
		if v, ok, err := s.integer("max"); err != nil {
			return nil, err
		} else if ok {
			i.Max(v)
		}
		to = append(to, i)
	}
	n := codec.IntFromString(to...)
	return decorate(c, s, n, n.Pipeline)
}

func buildFile(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.File(msg...)
	if v, ok, err := s.size("min"); err != nil {
		return nil, err
	} else if ok {
		n.Min(v)
	}
	if v, ok, err := s.size("max"); err != nil {
		return nil, err
	} else if ok {
		n.Max(v)
	}
	if types, ok, err := s.strs("mime"); err != nil {
		return nil, err
	} else if ok {
		n.Mime(types)
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildLiteral(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	v, ok := s.m["value"]
	if !ok {
		return nil, s.errf("", "literal requires value")
	}
	if !scalar(v) {
		return nil, s.errf("value", "literal value must be a scalar, got %T", v)
	}
	n := dsl.Literal[any](v, msg...)
	return decorate(c, s, n, n.Pipeline)
}

func buildEnum(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	values, ok, err := s.list("values")
	if err != nil {
		return nil, err
	}
	if !ok || len(values) == 0 {
		return nil, s.errf("values", "enum requires at least one value")
	}
	for i, v := range values {
		if !scalar(v) {
			return nil, spec{at: join(s.at, "values")}.errf(fmt.Sprint(i), "enum values must be scalars, got %T", v)
		}
	}
	n := dsl.Enum(values, msg...)
	return decorate(c, s, n, n.Pipeline)
}

func scalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}

func buildUndefined(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Undefined(msg...)
	return decorate(c, s, n, n.Pipeline)
}

func buildNull(c *compiler, s spec) (gosift.Node, error) {
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.Null(msg...)
	return decorate(c, s, n, n.Pipeline)
}

func buildAny(c *compiler, s spec) (gosift.Node, error) {
	n := dsl.Any()
	return decorate(c, s, n, n.Pipeline)
}

// buildObject reads fields either as an ordered list of {name, ...node}
// entries or as a mapping (visited in key order).
func buildObject(c *compiler, s spec) (gosift.Node, error) {
	var fields []dsl.FieldDef
	switch fs := s.m["fields"].(type) {
	case nil:
	case []any:
		at := join(s.at, "fields")
		for i, e := range fs {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, spec{at: at}.errf(fmt.Sprint(i), "expected a mapping, got %T", e)
			}
			entry := spec{at: join(at, fmt.Sprint(i)), m: m}
			name, ok, err := entry.str("name")
			if err != nil {
				return nil, err
			}
			if !ok || name == "" {
				return nil, entry.errf("name", "field name is required")
			}
			rest := make(map[string]any, len(m)-1)
			for k, v := range m {
				if k != "name" {
					rest[k] = v
				}
			}
			n, err := c.node(entry.at, rest)
			if err != nil {
				return nil, err
			}
			fields = append(fields, dsl.Field(name, n))
		}
	case map[string]any:
		at := join(s.at, "fields")
		for _, name := range sortedKeys(fs) {
			n, err := c.node(join(at, name), fs[name])
			if err != nil {
				return nil, err
			}
			fields = append(fields, dsl.Field(name, n))
		}
	default:
		return nil, s.errf("fields", "expected a list or a mapping, got %T", fs)
	}

	n := dsl.Object(fields...)
	if msg, ok, err := s.str("message"); err != nil {
		return nil, err
	} else if ok {
		n.TypeError(msg)
	}
	conds, err := conditions(s)
	if err != nil {
		return nil, err
	}
	for _, r := range conds {
		n.Validate(r)
	}
	return decorate(c, s, n, n.Pipeline)
}

// conditions compiles object "when" entries:
//
//	when:
//	  - if: {path: /kind, op: eq, value: company}
//	    require: [/vat]
//	    at_least_one: [/owners]
func conditions(s spec) ([]rules.Object, error) {
	list, ok, err := s.list("when")
	if err != nil || !ok {
		return nil, err
	}
	at := join(s.at, "when")
	var out []rules.Object
	for i, e := range list {
		m, isMap := e.(map[string]any)
		if !isMap {
			return nil, spec{at: at}.errf(fmt.Sprint(i), "expected a mapping, got %T", e)
		}
		w := spec{at: join(at, fmt.Sprint(i)), m: m}
		for _, k := range sortedKeys(m) {
			if !slices.Contains([]string{"if", "require", "at_least_one", "message"}, k) {
				return nil, w.errf(k, "unknown key")
			}
		}
		ifm, isMap := m["if"].(map[string]any)
		if !isMap {
			return nil, w.errf("if", "expected a mapping")
		}
		cond := spec{at: join(w.at, "if"), m: ifm}
		path, _, err := cond.str("path")
		if err != nil {
			return nil, err
		}
		opName, ok, err := cond.str("op")
		if err != nil {
			return nil, err
		}
		if !ok {
			opName = "eq"
		}
		op, err := rules.ParseOp(opName)
		if err != nil {
			return nil, cond.errf("op", "%v", err)
		}
		var rs []gosift.Replacer
		if msg, ok, err := w.str("message"); err != nil {
			return nil, err
		} else if ok {
			rs = append(rs, gosift.Msg(msg))
		}
		var then []rules.Object
		req, _, err := w.strs("require")
		if err != nil {
			return nil, err
		}
		for _, p := range req {
			then = append(then, rules.Required(p, rs...))
		}
		nonEmpty, _, err := w.strs("at_least_one")
		if err != nil {
			return nil, err
		}
		for _, p := range nonEmpty {
			then = append(then, rules.AtLeastOne(p, rs...))
		}
		if len(then) == 0 {
			return nil, w.errf("", "nothing to require")
		}
		out = append(out, rules.If(path, op, cond.m["value"]).Then(then...))
	}
	return out, nil
}

func buildArray(c *compiler, s spec) (gosift.Node, error) {
	items, ok := s.m["items"]
	if !ok {
		return nil, s.errf("", "array requires items")
	}
	elem, err := c.node(join(s.at, "items"), items)
	if err != nil {
		return nil, err
	}
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.ArrayOf(elem, msg...)
	if ok, err := s.flag("non_empty"); err != nil {
		return nil, err
	} else if ok {
		n.NonEmpty()
	}
	if v, ok, err := s.size("min"); err != nil {
		return nil, err
	} else if ok {
		n.Min(v)
	}
	if v, ok, err := s.size("max"); err != nil {
		return nil, err
	} else if ok {
		n.Max(v)
	}
	switch u := s.m["unique"].(type) {
	case nil:
	case bool:
		if u {
			n.Validate(rules.UniqueBy[any](""))
		}
	case string:
		n.Validate(rules.UniqueBy[any](u))
	default:
		return nil, s.errf("unique", "expected a boolean or a key pointer, got %T", u)
	}
	return decorate(c, s, n, n.Pipeline)
}

func (c *compiler) children(s spec, key string) ([]gosift.Node, error) {
	list, ok, err := s.list(key)
	if err != nil {
		return nil, err
	}
	if !ok || len(list) == 0 {
		return nil, s.errf(key, "at least one entry is required")
	}
	at := join(s.at, key)
	out := make([]gosift.Node, len(list))
	for i, e := range list {
		n, err := c.node(join(at, fmt.Sprint(i)), e)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func buildTuple(c *compiler, s spec) (gosift.Node, error) {
	items, err := c.children(s, "items")
	if err != nil {
		return nil, err
	}
	n := dsl.Tuple(items...)
	if msg, ok, err := s.str("message"); err != nil {
		return nil, err
	} else if ok {
		n.TypeError(msg)
	}
	return decorate(c, s, n, n.Pipeline)
}

func buildRecord(c *compiler, s spec) (gosift.Node, error) {
	values, ok := s.m["values"]
	if !ok {
		return nil, s.errf("", "record requires values")
	}
	val, err := c.node(join(s.at, "values"), values)
	if err != nil {
		return nil, err
	}
	var key gosift.Schema[string]
	if raw, ok := s.m["keys"]; ok {
		kn, err := c.node(join(s.at, "keys"), raw)
		if err != nil {
			return nil, err
		}
		ks, isString := kn.(gosift.Schema[string])
		if !isString {
			return nil, s.errf("keys", "record keys must be a string schema, got %s", kn.Kind())
		}
		key = ks
	}
	msg, err := message(s)
	if err != nil {
		return nil, err
	}
	n := dsl.RecordOf(key, val, msg...)
	return decorate(c, s, n, n.Pipeline)
}

func buildUnion(c *compiler, s spec) (gosift.Node, error) {
	opts, err := c.children(s, "options")
	if err != nil {
		return nil, err
	}
	n := dsl.Union(opts...)
	return decorate(c, s, n, n.Pipeline)
}

func buildIntersection(c *compiler, s spec) (gosift.Node, error) {
	members, err := c.children(s, "members")
	if err != nil {
		return nil, err
	}
	n := dsl.Intersection(members...)
	return decorate(c, s, n, n.Pipeline)
}
