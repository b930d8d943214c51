package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gosift"
	g "github.com/reoring/gosift/dsl"
)

func issuesOf(t *testing.T, err error) gosift.Issues {
	t.Helper()
	iss, ok := gosift.AsIssues(err)
	require.True(t, ok, "expected Issues, got %v", err)
	return iss
}

func pointers(iss gosift.Issues) []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Path.Pointer()
	}
	return out
}

func TestArray_ElementIssuesArePrefixed(t *testing.T) {
	s := g.Array(g.String().Min(3))

	_, err := s.Parse(context.Background(), []any{"ab", "abcd"})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, gosift.CodeStringMin, iss[0].Code)
	assert.Equal(t, []any{0}, iss[0].Path.Values())
}

func TestArray_AllElementsReported(t *testing.T) {
	s := g.Array(g.Number())
	_, err := s.Parse(context.Background(), []any{"a", 1, "b", true})
	assert.Equal(t, []string{"/0", "/2", "/3"}, pointers(issuesOf(t, err)))
}

func TestArray_TypedOutputAndSlices(t *testing.T) {
	ctx := context.Background()
	out, err := g.Array(g.Int()).Parse(ctx, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, out)

	_, err = g.Array(g.Int()).Parse(ctx, map[string]any{})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, gosift.CodeInvalidType, iss[0].Code)
	assert.Equal(t, "Invalid input type: array was expected", iss[0].Message)
}

func TestArray_Rules(t *testing.T) {
	ctx := context.Background()
	s := g.ArrayOf(g.Any()).NonEmpty().Max(2)

	_, err := s.Parse(ctx, []any{})
	assert.Equal(t, gosift.CodeArrayNonEmpty, issuesOf(t, err)[0].Code)

	_, err = s.Parse(ctx, []any{1, 2, 3})
	assert.Equal(t, gosift.CodeArrayMax, issuesOf(t, err)[0].Code)

	_, err = g.ArrayOf(g.Any()).Min(2).Parse(ctx, []any{1})
	iss := issuesOf(t, err)
	assert.Equal(t, "Array must be at least 2 items long", iss[0].Message)
	assert.Empty(t, iss[0].Path)
}

func TestArray_ElementFailureSkipsArrayValidators(t *testing.T) {
	s := g.Array(g.String()).Min(5)
	_, err := s.Parse(context.Background(), []any{1})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/0", iss[0].Path.Pointer())
}

func TestObject_ParsesDeclaredFields(t *testing.T) {
	s := g.Object(
		g.Field("name", g.String()),
		g.Field("age", g.Optional(g.Int())),
		g.Field("role", g.String().Default("member")),
	)

	out, err := s.Parse(context.Background(), map[string]any{"name": "ann", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ann", "role": "member"}, out)
}

func TestObject_IssuePathsAndCount(t *testing.T) {
	s := g.Object(
		g.Field("name", g.String().Min(2).Max(1)),
		g.Field("tags", g.Array(g.String().Min(3))),
		g.Field("address", g.Object(g.Field("zip", g.String().Length(5)))),
	)

	_, err := s.Parse(context.Background(), map[string]any{
		"name":    "x",
		"tags":    []any{"ok!", "no", 7},
		"address": map[string]any{"zip": "123"},
	})
	iss := issuesOf(t, err)
	assert.Equal(t, []string{"/name", "/tags/1", "/tags/2", "/address/zip"}, pointers(iss))
	assert.Equal(t, []any{"tags", 2}, iss[2].Path.Values())
}

func TestObject_MissingFieldIsInvalidType(t *testing.T) {
	_, err := g.Object(g.Field("id", g.String())).Parse(context.Background(), map[string]any{})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/id", iss[0].Path.Pointer())
	assert.Equal(t, gosift.CodeInvalidType, iss[0].Code)
}

func TestObject_RejectsNonObjects(t *testing.T) {
	s := g.Object().TypeError("need an object")
	for _, in := range []any{nil, []any{}, "x", gosift.Missing} {
		_, err := s.Parse(context.Background(), in)
		iss := issuesOf(t, err)
		require.Len(t, iss, 1)
		assert.Equal(t, "need an object", iss[0].Message)
	}
}

func TestObject_ChildrenAreCloned(t *testing.T) {
	name := g.String()
	s := g.Object(g.Field("name", name))
	name.Min(10)

	_, err := s.Parse(context.Background(), map[string]any{"name": "ann"})
	assert.NoError(t, err)
}

func TestObject_Extend(t *testing.T) {
	base := g.Object(g.Field("id", g.String()), g.Field("n", g.Int()))
	ext := base.Extend(g.Field("n", g.String()), g.Field("extra", g.Boolean()))

	names := []string{}
	for _, f := range ext.Shape() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "n", "extra"}, names)

	out, err := ext.Parse(context.Background(), map[string]any{"id": "a", "n": "b", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, "b", out["n"])
}

func TestObject_StringKeyedMaps(t *testing.T) {
	out, err := g.Object(g.Field("a", g.Int())).Parse(context.Background(), map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out["a"])
}

func TestTuple(t *testing.T) {
	ctx := context.Background()
	s := g.Tuple(g.String(), g.Number(), g.Boolean())

	out, err := s.Parse(ctx, []any{"a", 1, true})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", float64(1), true}, out)

	_, err = s.Parse(ctx, []any{1, "x", true})
	assert.Equal(t, []string{"/0", "/1"}, pointers(issuesOf(t, err)))

	_, err = s.Parse(ctx, []any{"a", 1})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "Invalid input type: tuple was expected", iss[0].Message)
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	s := g.Record(g.String().Min(2), g.Number())

	out, err := s.Parse(ctx, map[string]any{"ab": 1, "cd": 2.5})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"ab": 1, "cd": 2.5}, out)

	_, err = s.Parse(ctx, map[string]any{"zz": "x", "a": 1, "b": "y"})
	iss := issuesOf(t, err)
	// entries are visited in key order; a bad key and a bad value on the same
	// entry are both reported
	assert.Equal(t, []string{"/a", "/b", "/b", "/zz"}, pointers(iss))
	assert.Equal(t, gosift.CodeStringMin, iss[1].Code)
	assert.Equal(t, gosift.CodeInvalidType, iss[2].Code)
}

func TestRecord_KeyTransform(t *testing.T) {
	s := g.RecordOf(g.String().Process(func(k string) string { return "k_" + k }), g.Any())
	out, err := s.Parse(context.Background(), map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k_a": 1}, out)
}

func TestContainers_AsyncChildInSyncMode(t *testing.T) {
	child := g.String().ValidateAsync(func(context.Context, string) (gosift.Replacer, error) { return nil, nil })
	ctx := context.Background()

	cases := map[string]gosift.Node{
		"object": g.Object(g.Field("a", child)),
		"array":  g.ArrayOf(child),
		"tuple":  g.Tuple(child),
		"record": g.RecordOf(nil, child),
	}
	inputs := map[string]any{
		"object": map[string]any{"a": "x"},
		"array":  []any{"x"},
		"tuple":  []any{"x"},
		"record": map[string]any{"a": "x"},
	}
	for name, n := range cases {
		_, err := n.ParseAny(ctx, inputs[name])
		assert.ErrorIs(t, err, gosift.ErrAsyncStage, name)

		_, err = n.ParseAnyAsync(ctx, inputs[name])
		assert.NoError(t, err, name)
	}
}
