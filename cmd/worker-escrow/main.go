package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/bootstrap"
	"github.com/safient/safient-escrow/internal/config"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
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
	cfg, err := config.LoadWorkerEscrowConfig(*configFile, *envPath)
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
			"service": "worker-escrow",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Worker Escrow")

	resources, err := bootstrap.OpenStore(ctx, cfg.Store, cfg.Database, cfg.Redis)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open store", zap.Error(err))
	}
	defer resources.Close()

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

	// The worker settles through the engine directly; it never schedules new releases
	engine := escrow.NewEngine(bootstrap.EscrowConfig(cfg.Escrow), ledger, resources.Store, secrets, adapter.NewClock(),
		escrow.WithPublisher(publisher),
	)

	// Initialize executor for activities
	executor := workflows.NewExecutor(engine, adapter.NewActivity())

	// Connect to Temporal
	temporalClient, err := bootstrap.DialTemporal(cfg.Temporal)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// Create Temporal worker
	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.EscrowTaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors: []interceptor.WorkerInterceptor{
				temporal.NewSentryActivityInterceptor(),
			},
		})
	logger.InfoCtx(ctx, "Created Temporal worker", zap.String("taskQueue", cfg.Temporal.EscrowTaskQueue))

	workerEscrow := workflows.NewWorkerEscrow(executor, workflows.DefaultWorkerEscrowConfig())

	// Register workflows
	temporalWorker.RegisterWorkflowWithOptions(workerEscrow.ReleaseOnExpiry, workflow.RegisterOptions{
		Name: workflows.WORKFLOW_RELEASE_ON_EXPIRY,
	})
	logger.InfoCtx(ctx, "Registered workflows")

	// Register activities
	temporalWorker.RegisterActivity(executor.ReleaseTransfer)
	logger.InfoCtx(ctx, "Registered activities")

	// Start worker
	if err := temporalWorker.Start(); err != nil {
		logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Worker started and listening for tasks")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	logger.Info("Shutting down worker...")
	temporalWorker.Stop()
	logger.Info("Worker stopped")
}
