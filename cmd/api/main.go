package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/api/middleware"
	"github.com/safient/safient-escrow/internal/api/rest"
	"github.com/safient/safient-escrow/internal/api/server"
	"github.com/safient/safient-escrow/internal/api/shared/executor"
	"github.com/safient/safient-escrow/internal/bootstrap"
	"github.com/safient/safient-escrow/internal/config"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/metrics"
	temporal "github.com/safient/safient-escrow/internal/providers/temporal"
	"github.com/safient/safient-escrow/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Safient Escrow API", zap.String("store", cfg.Store.Driver))

	// Open store (and Redis when configured)
	resources, err := bootstrap.OpenStore(ctx, cfg.Store, cfg.Database, cfg.Redis)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open store", zap.Error(err))
	}
	defer resources.Close()

	// Initialize adapters
	clock := adapter.NewClock()

	// Metrics
	var recorder metrics.Recorder = metrics.NewNoop()
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		recorder = prom
	}

	// Ledger
	ledger, err := bootstrap.NewLedger(cfg.Algorand)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize Algorand client", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Algorand client ready", zap.String("algod_address", cfg.Algorand.AlgodAddress))

	secrets, err := bootstrap.NewSecretBox(cfg.Escrow)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize secret box", zap.Error(err))
	}

	publisher, err := bootstrap.NewPublisher(ctx, cfg.NATS)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	engineOpts := []escrow.Option{
		escrow.WithPublisher(publisher),
		escrow.WithMetrics(recorder),
	}

	// Temporal is optional for the API: without it expiries are settled by sweeps only
	if cfg.Temporal.HostPort != "" {
		temporalClient, err := bootstrap.DialTemporal(cfg.Temporal)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err))
		}
		defer temporalClient.Close()
		logger.InfoCtx(ctx, "Connected to Temporal", zap.String("host_port", cfg.Temporal.HostPort))

		scheduler := workflows.NewReleaseScheduler(temporal.NewOrchestrator(temporalClient), cfg.Temporal.EscrowTaskQueue)
		engineOpts = append(engineOpts, escrow.WithScheduler(scheduler))
	} else {
		logger.WarnCtx(ctx, "Temporal not configured, expired escrows are released by sweeps only")
	}

	engine := escrow.NewEngine(bootstrap.EscrowConfig(cfg.Escrow), ledger, resources.Store, secrets, clock, engineOpts...)

	exec := executor.NewExecutor(executor.Config{
		OpportunisticSweep:    cfg.Escrow.OpportunisticSweep,
		OpportunisticInterval: cfg.Escrow.OpportunisticInterval,
	}, engine, resources.Store, clock, recorder)

	// Rate limiter
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		var distributed adapter.RedisRateLimiter
		if resources.Redis != nil {
			distributed = resources.Redis.NewRateLimiter()
		}
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
			KeyPrefix:         cfg.Redis.KeyPrefix,
		}, distributed, clock)
		logger.InfoCtx(ctx, "Rate limiting enabled",
			zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute),
			zap.Bool("distributed", distributed != nil))
	}

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Routes: rest.RouteConfig{
			Auth: middleware.AuthConfig{
				JWTPublicKey: cfg.Auth.JWTPublicKey,
				APIKeys:      cfg.Auth.APIKeys,
			},
			CronSecret:   cfg.Escrow.CronSecret,
			ProtectReads: cfg.Auth.ProtectReads,
			RateLimiter:  limiter,
		},
	}
	if prom != nil {
		serverConfig.MetricsPath = cfg.Metrics.Path
		serverConfig.MetricsHandler = prom.Handler()
	}
	if cfg.Escrow.CronSecret == "" && !serverConfig.Routes.Auth.Enabled() {
		logger.WarnCtx(ctx, "Sweep endpoint is not protected, set escrow.cron_secret")
	}

	srv := server.New(serverConfig, exec)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Don't reuse the canceled ctx for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	logger.Info("API server stopped")
}
