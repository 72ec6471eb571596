// Command jobmart runs one batch refresh of the job posting mart:
// detect changed source datasets, rebuild the dimensional model, load
// it into the warehouse, and commit the source fingerprints.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobmart/internal/config"
	"jobmart/internal/pipeline"
	"jobmart/internal/pipeline/observe"
	"jobmart/internal/source"
	"jobmart/internal/state"
	"jobmart/internal/warehouse"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (defaults plus JOBMART_* env when empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "jobmart: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.Open(ctx, cfg.SourceOptions())
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	store, err := warehouse.Open(cfg.WarehouseOptions())
	if err != nil {
		return fmt.Errorf("open warehouse: %w", err)
	}
	defer func() { _ = store.Close() }()

	var metrics observe.MetricsRecorder = observe.NopRecorder{}
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = observe.NewPrometheusRecorder(reg)
		srv := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer shutdownMetrics(srv, log)
	}

	p, err := pipeline.New(src, state.NewStore(cfg.State.Path), store, cfg.Pipeline(), pipeline.Options{
		Logger:  log,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	log.Info("pipeline run complete", zap.Duration("elapsed", time.Since(started)))
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics endpoint stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func shutdownMetrics(srv *http.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
}
