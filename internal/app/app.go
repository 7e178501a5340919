package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/deploygrid/internal/ctxlog"
	"github.com/specialistvlad/deploygrid/internal/deployer"
	"github.com/specialistvlad/deploygrid/internal/metrics"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	deploy     orchestrator.DeployFunc
	metrics    *metrics.Collector
	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithLogOutput sends logs to w instead of the report output.
func WithLogOutput(w io.Writer) Option {
	return func(a *App) { a.logger = newLogger(a.config.LogLevel, a.config.LogFormat, w) }
}

// WithDeployFunc replaces the deployer selected by the configuration.
func WithDeployFunc(fn orchestrator.DeployFunc) Option {
	return func(a *App) { a.deploy = fn }
}

// NewApp is the constructor for the main application. The report is
// written to outW; so are logs unless WithLogOutput is given.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	a := &App{
		outW:    outW,
		config:  cfg,
		logger:  newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ctx = ctxlog.WithLogger(context.Background(), a.logger)
	a.logger.Debug("Logger configured successfully.")

	if a.deploy == nil {
		fn, err := deployer.New(deployer.Options{
			Kind:    cfg.Deployer,
			URL:     cfg.DeployerURL,
			Timeout: cfg.DeployerTimeout,
		})
		if err != nil {
			return nil, err
		}
		a.deploy = fn
	}
	a.logger.Debug("Deployer configured.", "deployer", cfg.Deployer)

	return a, nil
}

// Metrics returns the application's metrics collector. This is primarily for testing.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}
