package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/internal/config"
	"github.com/reoring/gosift/metrics"
	"github.com/reoring/gosift/middleware"
	"github.com/reoring/gosift/schemadoc"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <schema>",
	Short: "Serve an HTTP endpoint that validates request bodies",
	Long: `Serve compiles the schema document and answers POST requests on the
configured path. Bodies are decoded by Content-Type (JSON, YAML, TOML or
MessagePack). Valid bodies are echoed back as parsed; invalid ones get 422
with the issue list. Prometheus metrics are exposed on /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
		s := cfg.Serve
		if cmd.Flags().Changed("addr") {
			s.Addr = serveAddr
		}

		doc, err := schemadoc.Load(args[0], schemadoc.WithLogger(log))
		if err != nil {
			return err
		}
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		srv := &http.Server{
			Addr:              s.Addr,
			Handler:           newRouter(doc.Root, s, reg, log),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		log.Info("listening", slog.String("addr", s.Addr), slog.String("path", s.Path))

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

// newRouter mounts the validating endpoint, /metrics and /healthz. Parse
// metrics are registered on reg.
func newRouter(n gosift.Node, s config.Serve, reg *prometheus.Registry, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	validate := middleware.Validate(n,
		middleware.WithLogger(log),
		middleware.WithMetrics(metrics.New(reg)),
		middleware.WithMaxBodyBytes(s.MaxBodyBytes),
	)
	r.With(validate).Post(s.Path, accept)
	return r
}

// accept echoes the parsed value.
func accept(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.Value(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"value": v})
}
