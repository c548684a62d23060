package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"
)

const (
	WORKFLOW_RELEASE_ON_EXPIRY = "ReleaseOnExpiry"
	DEFAULT_ESCROW_TASK_QUEUE  = "escrow-release"
)

// WorkerEscrow defines the workflows hosted by the escrow worker
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_escrow.go -package=mocks -mock_names=WorkerEscrow=MockWorkerEscrow
type WorkerEscrow interface {
	// ReleaseOnExpiry waits until expiresAt with a durable timer, then auto-releases the transfer
	ReleaseOnExpiry(ctx workflow.Context, transferID string, expiresAt time.Time) error
}

// WorkerEscrowConfig tunes the release activity
type WorkerEscrowConfig struct {
	ActivityTimeout      time.Duration
	RetryInitialInterval time.Duration
	RetryMaxAttempts     int32
}

// DefaultWorkerEscrowConfig retries every 10s, up to 5 attempts
func DefaultWorkerEscrowConfig() WorkerEscrowConfig {
	return WorkerEscrowConfig{
		ActivityTimeout:      2 * time.Minute,
		RetryInitialInterval: 10 * time.Second,
		RetryMaxAttempts:     5,
	}
}

type workerEscrow struct {
	config   WorkerEscrowConfig
	executor Executor
}

// NewWorkerEscrow creates the escrow worker
func NewWorkerEscrow(executor Executor, config WorkerEscrowConfig) WorkerEscrow {
	return &workerEscrow{
		config:   config,
		executor: executor,
	}
}
