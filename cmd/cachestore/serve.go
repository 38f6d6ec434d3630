package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vango-dev/cachestore/internal/config"
	"github.com/vango-dev/cachestore/internal/gallery"
	"github.com/vango-dev/cachestore/pkg/cachestore"
	"github.com/vango-dev/cachestore/pkg/devtools"
	"github.com/vango-dev/cachestore/pkg/instrument"
)

type serveFlags struct {
	port     int
	host     string
	interval time.Duration
	tracing  bool
	logLevel string
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspector and metrics for the gallery",
		Long: `Run the example gallery and serve its stores.

Endpoints:
  GET /stores            registered stores
  GET /stores/{id}       current values of one store
  GET /stores/{id}/ws    live change stream (WebSocket)
  GET /metrics           Prometheus metrics

With --interval the gallery is replayed periodically so the
change stream has something to show.

--trace wraps every dispatch in a span from the globally registered
OpenTelemetry TracerProvider. This binary does not install an exporter,
so spans are dropped unless the provider is set up elsewhere, e.g. by a
wrapper that calls otel.SetTracerProvider before running the command.

Examples:
  cachestore serve
  cachestore serve --port=9000 --interval=5s
  cachestore serve --trace --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to run on (default from cachestore.json)")
	cmd.Flags().StringVarP(&flags.host, "host", "H", "", "Host to bind to (default from cachestore.json)")
	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Replay the gallery at this interval")
	cmd.Flags().BoolVar(&flags.tracing, "trace", false, "Record dispatch spans on the global OpenTelemetry TracerProvider (no-op unless one is installed)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

func runServe(flags serveFlags) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if flags.port > 0 {
			cfg.Devtools.Port = flags.port
		}
		if flags.host != "" {
			cfg.Devtools.Host = flags.host
		}
		if flags.tracing {
			cfg.Tracing.Enabled = true
		}
		if flags.logLevel != "" {
			cfg.Log.Level = flags.logLevel
		}
	})
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stderr)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := instrument.NewMetrics(
		instrument.WithNamespace(cfg.Metrics.Namespace),
		instrument.WithSubsystem(cfg.Metrics.Subsystem),
		instrument.WithRegistry(registry),
	)

	inspector := devtools.NewInspector(logger)
	defer inspector.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	if cfg.Devtools.Enabled {
		r.Mount("/", inspector.Handler())
	}

	server := &http.Server{
		Addr:              cfg.DevtoolsAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	replay := &replayer{cfg: cfg, logger: logger, inspector: inspector, metrics: metrics}
	defer replay.close()
	go replay.loop(ctx, flags.interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	success("Inspector at %s/stores", cfg.DevtoolsURL())
	info("Metrics at %s%s", cfg.DevtoolsURL(), cfg.Metrics.Path)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return server.Shutdown(shutdownCtx)
}

// replayer runs the gallery against the inspector and metrics. Each round
// replaces the stores of the previous one.
type replayer struct {
	cfg       *config.Config
	logger    *slog.Logger
	inspector *devtools.Inspector
	metrics   *instrument.Metrics

	mu  sync.Mutex
	env *gallery.Env
}

func (p *replayer) loop(ctx context.Context, interval time.Duration) {
	p.round(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.round(ctx)
		}
	}
}

func (p *replayer) round(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()

	env := newEnv(p.cfg, p.logger)
	env.Inspector = p.inspector
	env.Metrics = p.metrics

	mw := []cachestore.Middleware{instrument.Logging(p.logger), p.metrics.Middleware()}
	if p.cfg.Tracing.Enabled {
		mw = append([]cachestore.Middleware{
			instrument.OpenTelemetry(instrument.WithTracerName(p.cfg.Tracing.TracerName)),
		}, mw...)
	}
	env.Options = append(env.Options, cachestore.WithMiddleware(mw...))
	p.env = env

	for _, e := range gallery.All() {
		if _, err := e.Run(ctx, env); err != nil {
			p.logger.Warn("experiment failed", "experiment", e.ID(), "error", err)
		}
	}
}

func (p *replayer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *replayer) closeLocked() {
	if p.env != nil {
		p.env.Close()
		p.env = nil
	}
}
