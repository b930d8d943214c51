package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reoring/gosift"
)

// Parse outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics counts parses and the issues they report.
type Metrics struct {
	// Parses by schema kind and outcome
	Parses *prometheus.CounterVec

	// Issues by code
	Issues *prometheus.CounterVec

	// Parse latency by schema kind
	Duration *prometheus.HistogramVec
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Parses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gosift_parses_total",
			Help: "Total parses by schema kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: "success", "invalid", "error"

		Issues: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gosift_issues_total",
			Help: "Total issues reported by code",
		}, []string{"code"}),

		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gosift_parse_duration_seconds",
			Help:    "Duration of parses by schema kind",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"kind"}),
	}
}

// Observe records one finished parse. err is classified as a batch failure
// when it holds Issues, as a fatal error otherwise.
func (m *Metrics) Observe(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.Parses.WithLabelValues(kind, OutcomeSuccess).Inc()
		return
	}
	iss, ok := gosift.AsIssues(err)
	if !ok {
		m.Parses.WithLabelValues(kind, OutcomeError).Inc()
		return
	}
	m.Parses.WithLabelValues(kind, OutcomeInvalid).Inc()
	for _, it := range iss {
		m.Issues.WithLabelValues(it.Code).Inc()
	}
}

// Instrument wraps n so every parse through the returned node is observed.
func (m *Metrics) Instrument(n gosift.Node) gosift.Node {
	return &instrumented{Node: n, m: m}
}

type instrumented struct {
	gosift.Node
	m *Metrics
}

func (i *instrumented) ParseAny(ctx context.Context, v any) (any, error) {
	start := time.Now()
	out, err := i.Node.ParseAny(ctx, v)
	i.m.Observe(i.Kind(), time.Since(start), err)
	return out, err
}

func (i *instrumented) ParseAnyAsync(ctx context.Context, v any) (any, error) {
	start := time.Now()
	out, err := i.Node.ParseAnyAsync(ctx, v)
	i.m.Observe(i.Kind(), time.Since(start), err)
	return out, err
}

func (i *instrumented) CloneNode() gosift.Node {
	return &instrumented{Node: i.Node.CloneNode(), m: i.m}
}
