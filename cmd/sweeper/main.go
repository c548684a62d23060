package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/bootstrap"
	"github.com/safient/safient-escrow/internal/config"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/metrics"
	"github.com/safient/safient-escrow/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	resources, err := bootstrap.OpenStore(ctx, cfg.Store, cfg.Database, cfg.Redis)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open store", zap.Error(err))
	}
	defer resources.Close()

	// Initialize clock adapter
	clock := adapter.NewClock()

	ledger, err := bootstrap.NewLedger(cfg.Algorand)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize Algorand client", zap.Error(err))
	}

	secrets, err := bootstrap.NewSecretBox(cfg.Escrow)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize secret box", zap.Error(err))
	}

	publisher, err := bootstrap.NewPublisher(ctx, cfg.NATS)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	var recorder metrics.Recorder = metrics.NewNoop()
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus()
		recorder = prom

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, prom.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.InfoCtx(ctx, "Serving metrics", zap.String("addr", cfg.MetricsAddr), zap.String("path", cfg.Metrics.Path))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorCtx(ctx, err, zap.String("component", "metrics"))
			}
		}()
	}

	engine := escrow.NewEngine(bootstrap.EscrowConfig(cfg.Escrow), ledger, resources.Store, secrets, clock,
		escrow.WithPublisher(publisher),
		escrow.WithMetrics(recorder),
	)

	// Initialize escrow release sweeper
	releaseSweeperConfig := &sweeper.EscrowReleaseSweeperConfig{
		Interval:       cfg.EscrowReleaseSweeper.Interval,
		BatchSize:      cfg.EscrowReleaseSweeper.BatchSize,
		WorkerPoolSize: cfg.EscrowReleaseSweeper.Worker.WorkerPoolSize,
	}
	releaseSweeper := sweeper.NewEscrowReleaseSweeper(releaseSweeperConfig, resources.Store, engine, clock, recorder)

	logger.InfoCtx(ctx, "Initialized escrow release sweeper (continuous mode)",
		zap.Duration("interval", cfg.EscrowReleaseSweeper.Interval),
		zap.Int("batch_size", cfg.EscrowReleaseSweeper.BatchSize),
		zap.Int("worker_pool_size", cfg.EscrowReleaseSweeper.Worker.WorkerPoolSize),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := releaseSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give in-flight releases time to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := releaseSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err, zap.String("component", "metrics"))
		}
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
