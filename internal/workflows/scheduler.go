package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/providers/temporal"
)

// ReleaseScheduler schedules ReleaseOnExpiry workflows for new escrows
type ReleaseScheduler struct {
	orchestrator temporal.TemporalOrchestrator
	taskQueue    string
}

var _ escrow.Scheduler = (*ReleaseScheduler)(nil)

// NewReleaseScheduler creates a scheduler starting workflows on taskQueue
func NewReleaseScheduler(orchestrator temporal.TemporalOrchestrator, taskQueue string) *ReleaseScheduler {
	if taskQueue == "" {
		taskQueue = DEFAULT_ESCROW_TASK_QUEUE
	}
	return &ReleaseScheduler{orchestrator: orchestrator, taskQueue: taskQueue}
}

// ReleaseWorkflowID returns the workflow id used for a transfer
func ReleaseWorkflowID(transferID string) string {
	return fmt.Sprintf("escrow-release-%s", transferID)
}

func (s *ReleaseScheduler) ScheduleRelease(ctx context.Context, transferID string, expiresAt time.Time) error {
	options := client.StartWorkflowOptions{
		ID:                    ReleaseWorkflowID(transferID),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}

	run, err := s.orchestrator.ExecuteWorkflow(ctx, options, WORKFLOW_RELEASE_ON_EXPIRY, transferID, expiresAt)
	if err != nil {
		if temporal.IsWorkflowAlreadyStarted(err) {
			return nil
		}
		return fmt.Errorf("failed to start release workflow for %s: %w", transferID, err)
	}

	logger.InfoCtx(ctx, "Release workflow started",
		zap.String("transfer_id", transferID),
		zap.String("workflow_id", run.GetID()),
		zap.String("run_id", run.GetRunID()))
	return nil
}

func (s *ReleaseScheduler) CancelRelease(ctx context.Context, transferID string) error {
	err := s.orchestrator.CancelWorkflow(ctx, ReleaseWorkflowID(transferID), "")
	if err != nil && !temporal.IsWorkflowNotFound(err) {
		return fmt.Errorf("failed to cancel release workflow for %s: %w", transferID, err)
	}
	return nil
}
