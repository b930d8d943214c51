package middleware

import (
	"context"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/metrics"
	"github.com/reoring/gosift/source"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// ctxKeyValue is a typed context key for the parsed request body.
type ctxKeyValue struct{}

// parsed boxes the body so a nil output is still found.
type parsed struct{ v any }

// ContextWithValue attaches a parsed body to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, parsed{v: v})
}

// Value retrieves the parsed body stored by Validate.
func Value(ctx context.Context) (any, bool) {
	p, ok := ctx.Value(ctxKeyValue{}).(parsed)
	return p.v, ok
}

// ValueAs is Value with a type assertion, e.g. ValueAs[map[string]any].
func ValueAs[T any](ctx context.Context) (T, bool) {
	p, _ := ctx.Value(ctxKeyValue{}).(parsed)
	v, ok := p.v.(T)
	return v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues gosift.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

type config struct {
	log     *slog.Logger
	metrics *metrics.Metrics
	limit   int64
}

// Option configures Validate.
type Option func(*config)

// WithLogger logs rejected requests at debug level and fatal errors at error
// level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records every parse.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithMaxBodyBytes bounds the request body. Zero or less disables the limit.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) { c.limit = n }
}

// Validate decodes request bodies according to their Content-Type (JSON,
// YAML, TOML or MessagePack), parses them with n using the async pipeline,
// and stores the output for Value before calling next.
//
// Responses on failure:
//   - 415 for unsupported content types
//   - 400 when the body cannot be decoded
//   - 422 with {"issues": [...]} when parsing reports issues
//   - 500 when the schema fails with a non-data error
func Validate(n gosift.Node, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{log: slog.Default(), limit: DefaultMaxBodyBytes}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.metrics != nil {
		n = cfg.metrics.Instrument(n)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f, ok := source.FormatFromContentType(r.Header.Get("Content-Type"))
			if !ok {
				writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"error": "unsupported content type"})
				return
			}
			limit := cfg.limit
			if limit < 0 {
				limit = 0
			}
			in, err := gosift.ReaderOf(f, r.Body, limit).Decode()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorPayload(gosift.DecodeIssues(err)))
				return
			}
			out, err := gosift.ParseNode(r.Context(), n, in, gosift.Async)
			if err != nil {
				iss, isIssues := gosift.AsIssues(err)
				if !isIssues {
					cfg.log.Error("schema failed", slog.String("path", r.URL.Path), slog.Any("error", err))
					writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
					return
				}
				cfg.log.Debug("request rejected", slog.String("path", r.URL.Path), slog.Int("issues", len(iss)))
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), out)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
