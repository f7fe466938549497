package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/charts"
	"github.com/chrissnell/wxreport/internal/export"
	"github.com/chrissnell/wxreport/internal/fetcher"
	"github.com/chrissnell/wxreport/internal/log"
	"github.com/chrissnell/wxreport/internal/managers"
	"github.com/chrissnell/wxreport/internal/metrics"
	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/pkg/config"
)

// healthInterval is how often the record store is pinged while serving
const healthInterval = 30 * time.Second

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Services is the wired report stack
type Services struct {
	Config   *config.ConfigData
	Storage  *managers.StorageManager
	Pipeline *report.Pipeline
	Registry *prometheus.Registry
}

// Close releases the record store
func (s *Services) Close() error {
	return s.Storage.Close()
}

// Build loads the configuration and wires storage, rendering, export and the pipeline
func (a *App) Build(ctx context.Context) (*Services, error) {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	storageManager, err := managers.NewStorageManager(ctx, cfg.Storage, a.logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(registry)

	var renderer charts.Renderer
	switch cfg.Renderer.Engine {
	case config.EngineStatic:
		renderer = charts.NewStaticRenderer()
	default:
		renderer = charts.NewBrowserRenderer(charts.BrowserConfig{
			ChromePath:       cfg.Renderer.ChromePath,
			EChartsAsset:     cfg.Renderer.EChartsAsset,
			DebugScreenshots: cfg.Renderer.DebugScreenshots,
		}, a.logger)
	}

	pipeline := report.NewPipeline(
		fetcher.New(storageManager.Store, cfg.Pipeline.Workers, a.logger, rec),
		charts.NewGenerator(renderer, charts.Options{
			Width:         cfg.Renderer.Width,
			Height:        cfg.Renderer.Height,
			RenderTimeout: cfg.Renderer.RenderTimeout,
		}, a.logger, rec),
		export.NewTableExporter(cfg.Pipeline.Precision, a.logger, rec),
		report.Options{
			WorkspaceRoot: cfg.Pipeline.WorkspaceRoot,
			JobTimeout:    cfg.Pipeline.JobTimeout,
		},
		a.logger,
		rec,
	)

	a.logger.Infow("report stack ready",
		"backend", cfg.Storage.Backend,
		"renderer", cfg.Renderer.Engine,
		"workers", cfg.Pipeline.Workers)

	return &Services{
		Config:   cfg,
		Storage:  storageManager,
		Pipeline: pipeline,
		Registry: registry,
	}, nil
}

// Run serves the HTTP API and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := a.Build(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, managers.ControllerDeps{
		Server:         svc.Config.Server,
		Runner:         svc.Pipeline,
		Health:         svc.Storage.Health,
		HealthInterval: healthInterval,
		Metrics:        promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{}),
	}, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
