package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/gosift"
	g "github.com/reoring/gosift/dsl"
	"github.com/reoring/gosift/metrics"
	"github.com/reoring/gosift/middleware"
)

func userNode() gosift.Node {
	return g.Object(
		g.Field("name", g.String().Min(2)),
		g.Field("age", g.Int().Positive()),
	)
}

// echoHandler writes the parsed body back as JSON.
var echoHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	v, ok := middleware.ValueAs[map[string]any](r.Context())
	if !ok {
		http.Error(w, "no value", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(v)
})

func do(h http.Handler, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(string(body)))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidate_Success(t *testing.T) {
	h := middleware.Validate(userNode())(echoHandler)
	rec := do(h, "application/json", []byte(`{"name":"ann","age":3,"extra":true}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"ann","age":3}`, rec.Body.String())
}

func TestValidate_OtherFormats(t *testing.T) {
	h := middleware.Validate(userNode())(echoHandler)

	rec := do(h, "application/yaml", []byte("name: ann\nage: 3\n"))
	assert.Equal(t, http.StatusOK, rec.Code)

	packed, err := msgpack.Marshal(map[string]any{"name": "ann", "age": 3})
	require.NoError(t, err)
	rec = do(h, "application/msgpack", packed)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidate_IssuesAre422(t *testing.T) {
	h := middleware.Validate(userNode())(echoHandler)
	rec := do(h, "application/json", []byte(`{"name":"a","age":-1}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Issues []struct {
			Code string `json:"code"`
			Path []any  `json:"path"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Issues, 2)
	assert.Equal(t, gosift.CodeStringMin, body.Issues[0].Code)
	assert.Equal(t, []any{"name"}, body.Issues[0].Path)
	assert.Equal(t, gosift.CodeIntPositive, body.Issues[1].Code)
}

func TestValidate_BadBodyAndContentType(t *testing.T) {
	h := middleware.Validate(userNode())(echoHandler)

	rec := do(h, "application/json", []byte(`{"name":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), gosift.CodeParseError)

	rec = do(h, "text/html", []byte(`<p>`))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestValidate_ParseErrorCodeFromSchemaIs422(t *testing.T) {
	n := g.String().Validate(func(string) gosift.Replacer {
		return gosift.IssueOverride{Code: gosift.CodeParseError, Message: "not a date"}
	})
	h := middleware.Validate(n)(echoHandler)
	rec := do(h, "application/json", []byte(`"x"`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a date")
}

func TestValidate_BodyLimit(t *testing.T) {
	h := middleware.Validate(userNode(), middleware.WithMaxBodyBytes(8))(echoHandler)
	rec := do(h, "application/json", []byte(`{"name":"ann","age":3}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate_FatalIs500(t *testing.T) {
	n := g.String().ValidateAsync(func(context.Context, string) (gosift.Replacer, error) {
		return nil, assert.AnError
	})
	h := middleware.Validate(n)(echoHandler)
	rec := do(h, "application/json", []byte(`"x"`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestValidate_AsyncStagesRun(t *testing.T) {
	taken := g.Object(g.Field("name", g.String().ValidateAsync(func(_ context.Context, v string) (gosift.Replacer, error) {
		if v == "root" {
			return gosift.Msg("name is taken"), nil
		}
		return nil, nil
	})))
	h := middleware.Validate(taken)(echoHandler)

	assert.Equal(t, http.StatusOK, do(h, "", []byte(`{"name":"ann"}`)).Code)
	rec := do(h, "", []byte(`{"name":"root"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is taken")
}

func TestValidate_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := middleware.Validate(userNode(), middleware.WithMetrics(m))(echoHandler)

	do(h, "application/json", []byte(`{"name":"ann","age":3}`))
	do(h, "application/json", []byte(`{"name":"a","age":3}`))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Parses.WithLabelValues("object", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Parses.WithLabelValues("object", metrics.OutcomeInvalid)))
}

func TestValue_NilOutputIsFound(t *testing.T) {
	ctx := middleware.ContextWithValue(context.Background(), nil)
	v, ok := middleware.Value(ctx)
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = middleware.Value(context.Background())
	assert.False(t, ok)
}
