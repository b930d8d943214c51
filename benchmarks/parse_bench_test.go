package benchmarks_test

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/gosift"
	g "github.com/reoring/gosift/dsl"
	"github.com/reoring/gosift/rules"
	"github.com/reoring/gosift/source"
)

// ---- Helpers ----

func userSchema() *g.ObjectSchema {
	return g.Object(
		g.Field("id", g.String().NonEmpty()),
		g.Field("name", g.String()),
		g.Field("age", g.Int().Min(0)),
		g.Field("active", g.Boolean()),
		g.Field("meta", g.Object(g.Field("score", g.Number()))),
	)
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice","age":30,"active":true,"meta":{"score":1.5}}`)
}

// generateJSONArray returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateJSONArray(numObjects, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"obj_%d","name":"n%d","age":%d,"active":%t,"meta":{"score":%d}`, i, i, i, i%2 == 0, i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(`,"k`)
			buf.WriteString(strconv.Itoa(k))
			buf.WriteString(`":"v`)
			buf.WriteString(strconv.Itoa(i))
			buf.WriteString(`"`)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func mustDecode(b *testing.B, f source.Format, data []byte) any {
	b.Helper()
	v, err := source.Decode(f, data)
	if err != nil {
		b.Fatal(err)
	}
	return v
}

// ---- Benchmarks ----

func BenchmarkParse_SmallObject(b *testing.B) {
	ctx := context.Background()
	s := userSchema()
	in := mustDecode(b, source.JSON, smallUserJSON())
	b.ReportAllocs()
	for b.Loop() {
		if _, err := s.Parse(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseAsync_SmallObject(b *testing.B) {
	ctx := context.Background()
	s := userSchema()
	in := mustDecode(b, source.JSON, smallUserJSON())
	b.ReportAllocs()
	for b.Loop() {
		if _, err := s.ParseAsync(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseFrom_Formats(b *testing.B) {
	ctx := context.Background()
	s := userSchema()
	packed, err := msgpack.Marshal(map[string]any{
		"id": "u_1", "name": "alice", "age": 30, "active": true,
		"meta": map[string]any{"score": 1.5},
	})
	if err != nil {
		b.Fatal(err)
	}
	yamlDoc := []byte("id: u_1\nname: alice\nage: 30\nactive: true\nmeta: {score: 1.5}\n")
	inputs := []struct {
		name string
		src  func() gosift.Source
	}{
		{"json", func() gosift.Source { return gosift.JSONBytes(smallUserJSON()) }},
		{"yaml", func() gosift.Source { return gosift.YAMLBytes(yamlDoc) }},
		{"msgpack", func() gosift.Source { return gosift.MsgPackBytes(packed) }},
	}
	for _, in := range inputs {
		b.Run(in.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := gosift.ParseFrom[map[string]any](ctx, s, in.src()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkParse_LargeArray(b *testing.B) {
	ctx := context.Background()
	for _, n := range []int{100, 1000} {
		in := mustDecode(b, source.JSON, generateJSONArray(n, 8))
		s := g.ArrayOf(userSchema()).Validate(rules.UniqueBy[any]("/id"))
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := s.Parse(ctx, in); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSafeParse_Invalid(b *testing.B) {
	ctx := context.Background()
	s := userSchema()
	in := map[string]any{"id": "", "name": 1, "age": -1, "active": "no", "meta": map[string]any{}}
	b.ReportAllocs()
	for b.Loop() {
		res, err := s.SafeParse(ctx, in)
		if err != nil || res.Success {
			b.Fatal("expected issues")
		}
	}
}
