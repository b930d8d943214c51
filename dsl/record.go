package dsl

import (
	"context"

	"github.com/reoring/gosift"
)

// RecordSchema validates every entry of a string-keyed map with a key schema
// and a value schema. Entries are visited in ascending key order; the output
// is keyed by the key schema's output.
type RecordSchema[V any] struct {
	*gosift.Pipeline[map[string]V, *RecordSchema[V]]
	key   gosift.Schema[string]
	value gosift.Node
	msg   string
}

// Record returns a typed map schema. A nil key schema accepts every key.
func Record[V any](key gosift.Schema[string], value gosift.Schema[V], msg ...string) *RecordSchema[V] {
	return newRecord[V](key, value, first(msg))
}

// RecordOf returns a map schema over a type-erased value schema.
func RecordOf(key gosift.Schema[string], value gosift.Node, msg ...string) *RecordSchema[any] {
	return newRecord[any](key, value, first(msg))
}

func newRecord[V any](key gosift.Schema[string], value gosift.Node, msg string) *RecordSchema[V] {
	if key == nil {
		key = String()
	}
	k, ok := key.CloneNode().(gosift.Schema[string])
	if !ok {
		k = key
	}
	s := &RecordSchema[V]{key: k, value: value.CloneNode(), msg: msg}
	s.Pipeline = gosift.NewPipeline[map[string]V, *RecordSchema[V]](s, "record", s.narrow, s.clone)
	return s
}

func (s *RecordSchema[V]) narrow(ctx context.Context, in any, mode gosift.Mode) (map[string]V, error) {
	m, ok := asMap(in)
	if !ok {
		return nil, invalidType("record", s.msg)
	}
	out := make(map[string]V, len(m))
	var issues gosift.Issues
	for _, k := range sortedKeys(m) {
		seg := gosift.Key(k)
		key, keyErr := s.key.Run(ctx, k, mode)
		keyIss, keyOK := gosift.AsIssues(keyErr)
		if keyErr != nil && !keyOK {
			return nil, keyErr
		}
		got, valIss, err := gosift.SafeParseNode(ctx, s.value, m[k], mode)
		if err != nil {
			return nil, err
		}
		if keyIss != nil || valIss != nil {
			issues = gosift.AppendIssues(issues, keyIss.WithPrefix(seg)...)
			issues = gosift.AppendIssues(issues, valIss.WithPrefix(seg)...)
			continue
		}
		if out[key], err = cast[V](got); err != nil {
			return nil, err
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (s *RecordSchema[V]) clone() *RecordSchema[V] {
	c := newRecord[V](s.key, s.value, s.msg)
	c.Adopt(s.Pipeline)
	return c
}
