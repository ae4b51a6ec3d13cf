package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"github.com/specialistvlad/addongraph/internal/manifest"
	"github.com/specialistvlad/addongraph/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger     *slog.Logger
	config     *Config
	runID      string
	reader     manifest.Reader
	registry   *prometheus.Registry
	metrics    *metrics.Recorder
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Logs go to logW; a
// nil reader means manifests are read from disk.
func NewApp(logW io.Writer, cfg *Config, reader manifest.Reader) *App {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	if reader == nil {
		reader = manifest.NewFileReader()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &App{
		logger:   logger,
		config:   cfg,
		runID:    runID,
		reader:   reader,
		registry: reg,
		metrics:  metrics.NewRecorder(reg),
	}
}

// Context attaches the app logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// RunID identifies this App instance in logs.
func (a *App) RunID() string {
	return a.runID
}

// Config returns the validated configuration.
func (a *App) Config() *Config {
	return a.config
}

// Registry returns the Prometheus registry holding the app metrics.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}
