package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
)

// Executor defines the activities of the escrow worker
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor_escrow.go -package=mocks -mock_names=Executor=MockEscrowExecutor
type Executor interface {
	// ReleaseTransfer auto-releases an expired escrow to its recipient.
	// A transfer that is already settled is reported through ReleaseOutcome.AlreadySettled, not as an error.
	ReleaseTransfer(ctx context.Context, transferID string) (*ReleaseOutcome, error)
}

// ReleaseOutcome is the result of the ReleaseTransfer activity
type ReleaseOutcome struct {
	TransferID     string `json:"transfer_id"`
	Status         string `json:"status,omitempty"`
	TxHash         string `json:"tx_hash,omitempty"`
	Amount         uint64 `json:"amount,omitempty"`
	AlreadySettled bool   `json:"already_settled"`
}

type executor struct {
	engine   escrow.Engine
	activity adapter.Activity
}

// NewExecutor creates the activity executor over the escrow engine
func NewExecutor(engine escrow.Engine, activity adapter.Activity) Executor {
	return &executor{engine: engine, activity: activity}
}

func (e *executor) ReleaseTransfer(ctx context.Context, transferID string) (*ReleaseOutcome, error) {
	attempt := e.activity.Attempt(ctx)
	logger.InfoCtx(ctx, "Releasing expired escrow",
		zap.String("transfer_id", transferID),
		zap.Int32("attempt", attempt))

	result, err := e.engine.Release(ctx, transferID, true)
	if err == nil {
		return &ReleaseOutcome{
			TransferID: transferID,
			Status:     string(result.Status),
			TxHash:     result.TransactionHash,
			Amount:     result.Amount,
		}, nil
	}

	kind := domain.KindOf(err)
	switch kind {
	case domain.ErrorKindConflict:
		logger.InfoCtx(ctx, "Escrow already settled",
			zap.String("transfer_id", transferID),
			zap.String("reason", err.Error()))
		return &ReleaseOutcome{TransferID: transferID, AlreadySettled: true}, nil

	case domain.ErrorKindNotFound,
		domain.ErrorKindInsufficientFunds,
		domain.ErrorKindValidation,
		domain.ErrorKindAuthorization,
		domain.ErrorKindExpired:
		logger.ErrorCtx(ctx, err,
			zap.String("transfer_id", transferID),
			zap.String("kind", string(kind)))
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), string(kind), unwrapCause(err))

	case domain.ErrorKindNotYetExpired:
		// timer fired early against the engine clock, retry
		return nil, temporal.NewApplicationError(err.Error(), string(kind))
	}

	logger.WarnCtx(ctx, "Release failed, will retry",
		zap.String("transfer_id", transferID),
		zap.Int32("attempt", attempt),
		zap.Error(err))
	return nil, err
}

func unwrapCause(err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Err != nil {
		return derr.Err
	}
	return nil
}
