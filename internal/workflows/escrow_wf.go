package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/logger"
)

// ReleaseOnExpiry sleeps until the protection window is over, then runs ReleaseTransfer.
// Cancelling the workflow during the sleep (after a reclaim) ends it without releasing.
func (w *workerEscrow) ReleaseOnExpiry(ctx workflow.Context, transferID string, expiresAt time.Time) error {
	logger.InfoWf(ctx, "Scheduled escrow release",
		zap.String("transfer_id", transferID),
		zap.Time("expires_at", expiresAt))

	if wait := expiresAt.Sub(workflow.Now(ctx)); wait > 0 {
		if err := workflow.Sleep(ctx, wait); err != nil {
			if temporal.IsCanceledError(err) {
				logger.InfoWf(ctx, "Escrow release cancelled", zap.String("transfer_id", transferID))
				return nil
			}
			return err
		}
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: w.config.ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    w.config.RetryInitialInterval,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    w.config.RetryMaxAttempts,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)

	var outcome ReleaseOutcome
	err := workflow.ExecuteActivity(activityCtx, w.executor.ReleaseTransfer, transferID).Get(activityCtx, &outcome)
	if err != nil {
		logger.ErrorWf(ctx, err, zap.String("transfer_id", transferID))
		return err
	}

	if outcome.AlreadySettled {
		logger.InfoWf(ctx, "Escrow settled before expiry handling", zap.String("transfer_id", transferID))
		return nil
	}

	logger.InfoWf(ctx, "Escrow released",
		zap.String("transfer_id", transferID),
		zap.String("tx_hash", outcome.TxHash),
		zap.Uint64("amount", outcome.Amount))
	return nil
}
