package gosift_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gosift"
	g "github.com/reoring/gosift/dsl"
)

func mustRe(p string) *regexp.Regexp { return regexp.MustCompile(p) }

func codes(iss gosift.Issues) []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

func pointers(iss gosift.Issues) []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Path.Pointer()
	}
	return out
}

func TestPipeline_ParseAndSafeParseAgree(t *testing.T) {
	ctx := context.Background()
	s := g.String().Min(3)

	for _, in := range []any{"abcd", "ab", 42, nil, gosift.Missing} {
		v, err := s.Parse(ctx, in)
		res, ferr := s.SafeParse(ctx, in)
		require.NoError(t, ferr)
		if err == nil {
			assert.True(t, res.Success)
			assert.Equal(t, v, res.Data)
			continue
		}
		iss, ok := gosift.AsIssues(err)
		require.True(t, ok, "input %v: %v", in, err)
		assert.False(t, res.Success)
		assert.Equal(t, iss, res.Issues)
	}
}

func TestPipeline_StageOrder(t *testing.T) {
	ctx := context.Background()
	var trace []string
	s := g.String().
		Preprocess(func(v any) any {
			trace = append(trace, "pre")
			if str, ok := v.(string); ok {
				return strings.TrimSpace(str)
			}
			return v
		}).
		Validate(func(v string) gosift.Replacer {
			trace = append(trace, "validate:"+v)
			return nil
		}).
		Process(func(v string) string {
			trace = append(trace, "process")
			return strings.ToUpper(v)
		})

	out, err := s.Parse(ctx, "  go ")
	require.NoError(t, err)
	assert.Equal(t, "GO", out)
	assert.Equal(t, []string{"pre", "validate:go", "process"}, trace)
}

func TestPipeline_ValidatorsAccumulate(t *testing.T) {
	ctx := context.Background()
	s := g.String().Min(5).Regex(mustRe(`^\d+$`)).Max(1)

	_, err := s.Parse(ctx, "ab")
	iss, ok := gosift.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{gosift.CodeStringMin, gosift.CodeStringRegex, gosift.CodeStringMax}, codes(iss))
	assert.Equal(t, "String must be at least 5 characters long", iss[0].Message)
}

func TestPipeline_ProcessorsSkippedOnValidationFailure(t *testing.T) {
	called := false
	s := g.Number().Positive().Process(func(v float64) float64 { called = true; return v })
	_, err := s.Parse(context.Background(), -1)
	require.Error(t, err)
	assert.False(t, called)
}

func TestPipeline_AdHocValidatorDefaults(t *testing.T) {
	ctx := context.Background()
	fails := func(string) gosift.Replacer { return gosift.IssueOverride{} }

	_, err := g.String().Validate(fails).Parse(ctx, "x")
	iss, _ := gosift.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, gosift.CodeValidator, iss[0].Code)
	assert.Equal(t, "Validator failed", iss[0].Message)
	assert.Empty(t, iss[0].Path)

	_, err = g.String().Validate(func(string) gosift.Replacer { return gosift.Msg("nope") }).Parse(ctx, "x")
	iss, _ = gosift.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, gosift.CodeValidator, iss[0].Code)
	assert.Equal(t, "nope", iss[0].Message)

	override := gosift.IssueOverride{Code: "custom.code", Path: gosift.PathOf("inner", 2)}
	_, err = g.String().Validate(func(string) gosift.Replacer { return override }).Parse(ctx, "x")
	iss, _ = gosift.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "custom.code", iss[0].Code)
	assert.Equal(t, "Validator failed", iss[0].Message)
	assert.Equal(t, "/inner/2", iss[0].Path.Pointer())
}

func TestPipeline_RuleReplacers(t *testing.T) {
	ctx := context.Background()
	_, err := g.String().Min(5, gosift.Msg("Custom: must be at least 5 chars")).Parse(ctx, "abc")
	iss, _ := gosift.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, gosift.CodeStringMin, iss[0].Code)
	assert.Equal(t, "Custom: must be at least 5 chars", iss[0].Message)

	_, err = g.String().Min(5, gosift.IssueOverride{Code: "name.short"}).Parse(ctx, "abc")
	iss, _ = gosift.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "name.short", iss[0].Code)
	assert.Equal(t, "String must be at least 5 characters long", iss[0].Message)
}

func TestPipeline_DefaultOnlyOnMissing(t *testing.T) {
	ctx := context.Background()
	s := g.String().Default("anon")

	v, err := s.Parse(ctx, gosift.Missing)
	require.NoError(t, err)
	assert.Equal(t, "anon", v)

	_, err = s.Parse(ctx, nil)
	iss, ok := gosift.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{gosift.CodeInvalidType}, codes(iss))
}

func TestPipeline_DefaultSkipsOtherStages(t *testing.T) {
	s := g.String().Default("x").Min(10).Process(func(v string) string { return v + "!" })
	v, err := s.Parse(context.Background(), gosift.Missing)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestPipeline_DefaultValueIsCopied(t *testing.T) {
	ctx := context.Background()
	s := g.ArrayOf(g.Any()).Default([]any{map[string]any{"k": "v"}})

	first, err := s.Parse(ctx, gosift.Missing)
	require.NoError(t, err)
	first[0].(map[string]any)["k"] = "mutated"

	second, err := s.Parse(ctx, gosift.Missing)
	require.NoError(t, err)
	assert.Equal(t, "v", second[0].(map[string]any)["k"])
}

func TestPipeline_DefaultFunc(t *testing.T) {
	n := 0
	s := g.Int().DefaultFunc(func() int64 { n++; return int64(n) })
	a, _ := s.Parse(context.Background(), gosift.Missing)
	b, _ := s.Parse(context.Background(), gosift.Missing)
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
}

func TestPipeline_FallbackReplacesIssues(t *testing.T) {
	ctx := context.Background()
	s := g.Number().Min(10).Fallback(10)

	v, err := s.Parse(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, float64(10), v)

	v, err = s.Parse(ctx, "not a number")
	require.NoError(t, err)
	assert.Equal(t, float64(10), v)

	v, err = s.Parse(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, float64(12), v)
}

func TestPipeline_FallbackDoesNotHideAsyncMisuse(t *testing.T) {
	s := g.String().
		ValidateAsync(func(context.Context, string) (gosift.Replacer, error) { return nil, nil }).
		Fallback("fb")

	_, err := s.Parse(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gosift.ErrAsyncStage))

	_, ferr := s.SafeParse(context.Background(), "x")
	assert.ErrorIs(t, ferr, gosift.ErrAsyncStage)
}

func TestPipeline_AsyncStagesInSyncMode(t *testing.T) {
	ctx := context.Background()
	cases := map[string]*g.StringSchema{
		"validator":    g.String().ValidateAsync(func(context.Context, string) (gosift.Replacer, error) { return nil, nil }),
		"processor":    g.String().ProcessAsync(func(_ context.Context, v string) (string, error) { return v, nil }),
		"preprocessor": g.String().PreprocessAsync(func(_ context.Context, v any) (any, error) { return v, nil }),
		"default":      g.String().DefaultAsync(func(context.Context) (string, error) { return "d", nil }),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Parse(ctx, gosift.Missing)
			if name != "default" {
				_, err = s.Parse(ctx, "v")
			}
			require.ErrorIs(t, err, gosift.ErrAsyncStage)
			assert.Contains(t, err.Error(), name)

			_, err = s.ParseAsync(ctx, "v")
			assert.NoError(t, err)
		})
	}
}

func TestPipeline_AsyncFallbackInSyncMode(t *testing.T) {
	s := g.String().FallbackAsync(func(context.Context) (string, error) { return "fb", nil })

	_, err := s.Parse(context.Background(), 1)
	require.ErrorIs(t, err, gosift.ErrAsyncStage)

	v, err := s.ParseAsync(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "fb", v)
}

func TestPipeline_AsyncValidatorParity(t *testing.T) {
	ctx := context.Background()
	s := g.String().
		ValidateAsync(func(_ context.Context, v string) (gosift.Replacer, error) {
			if v == "taken" {
				return gosift.IssueOverride{Code: "user.taken", Message: "already taken"}, nil
			}
			return nil, nil
		}).
		Min(3)

	res, err := s.SafeParseAsync(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.SafeParseAsync(ctx, "ab")
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, []string{gosift.CodeStringMin}, codes(res.Issues))

	res, err = s.SafeParseAsync(ctx, "taken")
	require.NoError(t, err)
	assert.Equal(t, []string{"user.taken"}, codes(res.Issues))
	assert.Equal(t, "already taken", res.Issues[0].Message)

	s2 := s.Clone().Min(10)
	res, err = s2.SafeParseAsync(ctx, "taken")
	require.NoError(t, err)
	assert.Equal(t, []string{"user.taken", gosift.CodeStringMin}, codes(res.Issues))
}

func TestPipeline_AsyncStageErrorPropagates(t *testing.T) {
	boom := errors.New("lookup failed")
	s := g.String().ValidateAsync(func(context.Context, string) (gosift.Replacer, error) { return nil, boom }).Fallback("fb")

	_, err := s.ParseAsync(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, err = s.SafeParseAsync(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_AsyncIssuesAreBatchFailures(t *testing.T) {
	s := g.String().ProcessAsync(func(context.Context, string) (string, error) {
		return "", gosift.Issues{{Code: "remote.rejected", Message: "rejected"}}
	}).Fallback("fb")

	v, err := s.ParseAsync(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "fb", v)
}

func TestPipeline_CloneIsolation(t *testing.T) {
	ctx := context.Background()
	base := g.String()
	strict := base.Clone().Min(5)

	_, err := base.Parse(ctx, "ab")
	assert.NoError(t, err)
	_, err = strict.Parse(ctx, "ab")
	assert.Error(t, err)

	// mutating the original after cloning does not leak either
	base.Max(1)
	_, err = strict.Parse(ctx, "abcdef")
	assert.NoError(t, err)
}

func TestPipeline_ValidatorReceivesCopy(t *testing.T) {
	ctx := context.Background()
	s := g.Object(g.Field("tags", g.ArrayOf(g.String()))).
		Validate(func(v map[string]any) gosift.Replacer {
			v["tags"].([]any)[0] = "mutated"
			delete(v, "tags")
			return nil
		})

	out, err := s.Parse(ctx, map[string]any{"tags": []any{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, out["tags"])
}

func TestPipeline_InputNotMutated(t *testing.T) {
	in := map[string]any{"name": " x "}
	s := g.Object(g.Field("name", g.String().Process(strings.TrimSpace)))
	out, err := s.Parse(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "x", out["name"])
	assert.Equal(t, " x ", in["name"])
}

func TestPipeline_KindAndNodeView(t *testing.T) {
	var n gosift.Node = g.Number()
	assert.Equal(t, "number", n.Kind())

	v, err := gosift.ParseNode(context.Background(), n, 3, gosift.Async)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	c := n.CloneNode()
	assert.Equal(t, "number", c.Kind())
	assert.NotSame(t, n, c)
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, "ok", gosift.MustParse[string](context.Background(), g.String(), "ok"))
	assert.Panics(t, func() { gosift.MustParse[string](context.Background(), g.String(), 1) })
}
