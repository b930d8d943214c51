package dsl

import (
	"context"

	"github.com/reoring/gosift"
)

// FieldDef declares one object property.
type FieldDef struct {
	Name string
	Node gosift.Node
}

// Field declares property name validated by n.
func Field(name string, n gosift.Node) FieldDef { return FieldDef{Name: name, Node: n} }

// ObjectSchema validates a fixed set of properties. Properties not declared
// are dropped from the output; declared properties missing from the input are
// parsed as gosift.Missing and left out when the child yields Missing.
type ObjectSchema struct {
	*gosift.Pipeline[map[string]any, *ObjectSchema]
	fields []FieldDef
	msg    string
}

// Object returns an object schema. Each field schema is cloned, so later
// changes to the arguments do not affect the object.
func Object(fields ...FieldDef) *ObjectSchema {
	s := &ObjectSchema{fields: make([]FieldDef, len(fields))}
	for i, f := range fields {
		s.fields[i] = FieldDef{Name: f.Name, Node: f.Node.CloneNode()}
	}
	s.Pipeline = gosift.NewPipeline[map[string]any, *ObjectSchema](s, "object", s.narrow, s.clone)
	return s
}

// TypeError replaces the invalid-type message.
func (s *ObjectSchema) TypeError(msg string) *ObjectSchema {
	s.msg = msg
	return s
}

// Shape returns the declared fields in order.
func (s *ObjectSchema) Shape() []FieldDef {
	out := make([]FieldDef, len(s.fields))
	copy(out, s.fields)
	return out
}

// Extend returns a new object with the fields of s followed by more; a field
// in more replaces a field of s with the same name in place.
func (s *ObjectSchema) Extend(more ...FieldDef) *ObjectSchema {
	merged := make([]FieldDef, 0, len(s.fields)+len(more))
	merged = append(merged, s.fields...)
	for _, f := range more {
		replaced := false
		for i := range merged {
			if merged[i].Name == f.Name {
				merged[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}
	return Object(merged...).TypeError(s.msg)
}

func (s *ObjectSchema) narrow(ctx context.Context, in any, mode gosift.Mode) (map[string]any, error) {
	m, ok := asMap(in)
	if !ok {
		return nil, invalidType("object", s.msg)
	}
	out := make(map[string]any, len(s.fields))
	var issues gosift.Issues
	for _, f := range s.fields {
		v, present := m[f.Name]
		if !present {
			v = gosift.Missing
		}
		got, iss, err := gosift.SafeParseNode(ctx, f.Node, v, mode)
		if err != nil {
			return nil, err
		}
		if iss != nil {
			issues = gosift.AppendIssues(issues, iss.WithPrefix(gosift.Key(f.Name))...)
			continue
		}
		if !gosift.IsMissing(got) {
			out[f.Name] = got
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (s *ObjectSchema) clone() *ObjectSchema {
	c := Object(s.fields...).TypeError(s.msg)
	c.Adopt(s.Pipeline)
	return c
}
