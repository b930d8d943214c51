package dsl_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gosift"
	g "github.com/reoring/gosift/dsl"
)

func TestUnion_FirstSuccessWins(t *testing.T) {
	ctx := context.Background()
	s := g.Union(
		g.String().Process(func(v string) string { return "first:" + v }),
		g.String().Process(func(v string) string { return "second:" + v }),
		g.Number(),
	)

	v, err := s.Parse(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "first:x", v)

	v, err = s.Parse(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)
}

func TestUnion_ConcatenatesIssuesInOrder(t *testing.T) {
	s := g.Union(g.String().Min(3), g.Number().Min(10))

	_, err := s.Parse(context.Background(), 3)
	iss := issuesOf(t, err)
	require.Len(t, iss, 2)
	assert.Equal(t, gosift.CodeInvalidType, iss[0].Code)
	assert.Equal(t, gosift.CodeNumberMin, iss[1].Code)
}

func TestUnion_InsideObjectKeepsPaths(t *testing.T) {
	s := g.Object(g.Field("id", g.Union(g.String(), g.Int())))
	_, err := s.Parse(context.Background(), map[string]any{"id": true})
	assert.Equal(t, []string{"/id", "/id"}, pointers(issuesOf(t, err)))
}

func TestIntersection_MergesObjects(t *testing.T) {
	s := g.Intersection(
		g.Object(g.Field("id", g.Int())),
		g.Object(g.Field("name", g.String())),
	)
	v, err := s.Parse(context.Background(), map[string]any{"id": 1, "name": "ann", "x": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "ann"}, v)
}

func TestIntersection_ConflictingMembersFail(t *testing.T) {
	s := g.Intersection(
		g.Object(g.Field("id", g.String())),
		g.Object(g.Field("id", g.Number())),
	)
	_, err := s.Parse(context.Background(), map[string]any{"id": 1})
	iss := issuesOf(t, err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/id", iss[0].Path.Pointer())
}

func TestIntersection_LaterMemberWinsOnSharedKey(t *testing.T) {
	s := g.Intersection(
		g.Object(g.Field("v", g.Any().Process(func(any) any { return "left" }))),
		g.Object(g.Field("v", g.Any().Process(func(any) any { return "right" }))),
	)
	v, err := s.Parse(context.Background(), map[string]any{"v": 0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"v": "right"}, v)
}

func TestIntersection_MergesTypedRecords(t *testing.T) {
	s := g.Intersection(
		g.Record(g.String(), g.Number()),
		g.Object(g.Field("b", g.Int())),
	)
	v, err := s.Parse(context.Background(), map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": int64(2)}, v)
}

func TestIntersection_NonObjectReplaces(t *testing.T) {
	s := g.Intersection(g.String(), g.String().Min(1))
	v, err := s.Parse(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestLazy_Recursive(t *testing.T) {
	var category gosift.Node
	category = g.Object(
		g.Field("name", g.String()),
		g.Field("children", g.ArrayOf(g.LazyNode(func() gosift.Node { return category }))),
	)

	in := map[string]any{
		"name": "root",
		"children": []any{
			map[string]any{"name": "a", "children": []any{}},
			map[string]any{"name": 1, "children": []any{}},
		},
	}
	_, err := category.ParseAny(context.Background(), in)
	iss := issuesOf(t, err)
	assert.Equal(t, []string{"/children/1/name"}, pointers(iss))
}

func TestLazy_FactoryPerParse(t *testing.T) {
	calls := 0
	s := g.Lazy(func() gosift.Schema[string] { calls++; return g.String() })
	_, _ = s.Parse(context.Background(), "a")
	_, _ = s.Parse(context.Background(), "b")
	assert.Equal(t, 2, calls)
}

func TestMutate(t *testing.T) {
	ctx := context.Background()
	s := g.Mutate(g.String(), g.Number().Min(1), func(v string) any {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return v
		}
		return f
	})

	v, err := s.Parse(ctx, "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = s.Parse(ctx, "0")
	assert.Equal(t, gosift.CodeNumberMin, issuesOf(t, err)[0].Code)

	_, err = s.Parse(ctx, 3)
	assert.Equal(t, gosift.CodeInvalidType, issuesOf(t, err)[0].Code)
}

func TestMutateAsync(t *testing.T) {
	ctx := context.Background()
	s := g.MutateAsync(g.String(), g.Int(), func(_ context.Context, v string) (any, error) {
		if v == "boom" {
			return nil, errors.New("upstream")
		}
		return len(v), nil
	})

	_, err := s.Parse(ctx, "abc")
	assert.ErrorIs(t, err, gosift.ErrAsyncStage)

	// the source schema runs first, so its issues win over the misuse error
	_, err = s.Parse(ctx, 1)
	issuesOf(t, err)

	v, err := s.ParseAsync(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = s.ParseAsync(ctx, "boom")
	assert.EqualError(t, err, "upstream")
}

func TestWrappers(t *testing.T) {
	ctx := context.Background()

	opt := g.Optional(g.String())
	v, err := opt.Parse(ctx, gosift.Missing)
	require.NoError(t, err)
	assert.True(t, gosift.IsMissing(v))
	_, err = opt.Parse(ctx, nil)
	assert.Error(t, err)

	nul := g.Nullable(g.String())
	v, err = nul.Parse(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
	_, err = nul.Parse(ctx, gosift.Missing)
	assert.Error(t, err)

	nish := g.Nullish(g.String().Min(2))
	for _, in := range []any{nil, gosift.Missing, "ab"} {
		_, err = nish.Parse(ctx, in)
		assert.NoError(t, err, "%v", in)
	}
	_, err = nish.Parse(ctx, "a")
	assert.Equal(t, gosift.CodeStringMin, issuesOf(t, err)[0].Code)
	assert.Equal(t, "nullish", nish.Kind())
	assert.Equal(t, "nullish", nish.Clone().Kind())
}

func TestWrappers_DefaultBeforePassThrough(t *testing.T) {
	s := g.Optional(g.String()).Default("d")
	v, err := s.Parse(context.Background(), gosift.Missing)
	require.NoError(t, err)
	assert.Equal(t, "d", v)
}
