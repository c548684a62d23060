package executor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/api/shared/constants"
	"github.com/safient/safient-escrow/internal/api/shared/dto"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/metrics"
	"github.com/safient/safient-escrow/internal/store"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/mock_api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// CreateTransfer creates an escrow or regular transfer
	CreateTransfer(ctx context.Context, input escrow.CreateTransferInput) (*dto.TransferResponse, error)

	// ListTransfers lists transfers newest first, optionally for one sender or recipient
	ListTransfers(ctx context.Context, user domain.Address, limit int) (*dto.TransferListResponse, error)

	// GetTransferStatus returns a transfer with the live state of its protection window
	GetTransferStatus(ctx context.Context, transferID string) (*dto.TransferStatusResponse, error)

	// GetTransferHistory returns the status transitions of a transfer
	GetTransferHistory(ctx context.Context, transferID string) (*dto.TransferHistoryResponse, error)

	// ReclaimTransfer returns escrowed funds to the sender
	ReclaimTransfer(ctx context.Context, transferID string, senderSecret string) (*dto.SettlementResponse, error)

	// ReleaseTransfer pays an expired escrow to the recipient
	ReleaseTransfer(ctx context.Context, transferID string) (*dto.SettlementResponse, error)

	// Sweep releases every expired escrow
	Sweep(ctx context.Context) (*dto.SweepResponse, error)
}

// Config holds the executor options
type Config struct {
	// OpportunisticSweep runs a sweep before listing transfers
	OpportunisticSweep bool
	// OpportunisticInterval is the minimum time between two opportunistic sweeps
	OpportunisticInterval time.Duration
}

type executor struct {
	config  Config
	engine  escrow.Engine
	store   store.Store
	clock   adapter.Clock
	metrics metrics.Recorder

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewExecutor(cfg Config, engine escrow.Engine, st store.Store, clock adapter.Clock, recorder metrics.Recorder) Executor {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &executor{
		config:  cfg,
		engine:  engine,
		store:   st,
		clock:   clock,
		metrics: recorder,
	}
}

func (e *executor) CreateTransfer(ctx context.Context, input escrow.CreateTransferInput) (*dto.TransferResponse, error) {
	rec, err := e.engine.CreateTransfer(ctx, input)
	if err != nil {
		return nil, err
	}

	resp := dto.MapTransferToDTO(rec)
	return &resp, nil
}

func (e *executor) ListTransfers(ctx context.Context, user domain.Address, limit int) (*dto.TransferListResponse, error) {
	if limit <= 0 {
		limit = constants.DEFAULT_TRANSFERS_LIMIT
	}
	limit = min(limit, constants.MAX_TRANSFERS_LIMIT)

	e.opportunisticSweep(ctx)

	records, err := e.store.ListTransfers(ctx, store.ListTransfersFilter{
		User:  user,
		Limit: limit,
	})
	if err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to list transfers")
	}

	transfers := make([]dto.TransferResponse, len(records))
	for i, rec := range records {
		transfers[i] = dto.MapTransferToDTO(rec)
	}

	return &dto.TransferListResponse{
		Transfers: transfers,
		Total:     len(transfers),
		Returned:  len(transfers),
	}, nil
}

func (e *executor) GetTransferStatus(ctx context.Context, transferID string) (*dto.TransferStatusResponse, error) {
	rec, err := e.getTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}

	return dto.MapTransferStatusToDTO(rec, e.clock.Now()), nil
}

func (e *executor) GetTransferHistory(ctx context.Context, transferID string) (*dto.TransferHistoryResponse, error) {
	rec, err := e.getTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}

	events, err := e.store.GetTransferHistory(ctx, rec.TransferID)
	if err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to get transfer history")
	}

	return dto.MapTransferEventsToDTO(rec.TransferID, events), nil
}

func (e *executor) ReclaimTransfer(ctx context.Context, transferID string, senderSecret string) (*dto.SettlementResponse, error) {
	result, err := e.engine.Reclaim(ctx, transferID, senderSecret)
	if err != nil {
		return nil, err
	}
	return dto.MapSettlementToDTO(result), nil
}

func (e *executor) ReleaseTransfer(ctx context.Context, transferID string) (*dto.SettlementResponse, error) {
	result, err := e.engine.Release(ctx, transferID, false)
	if err != nil {
		return nil, err
	}
	return dto.MapSettlementToDTO(result), nil
}

func (e *executor) Sweep(ctx context.Context) (*dto.SweepResponse, error) {
	result, err := e.sweep(ctx, metrics.SWEEP_SOURCE_CRON)
	if err != nil {
		return nil, err
	}
	return dto.MapSweepToDTO(result), nil
}

func (e *executor) sweep(ctx context.Context, source string) (*escrow.SweepResult, error) {
	start := e.clock.Now()
	result, err := e.engine.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	e.metrics.SweepCompleted(source, result.Counts(), e.clock.Since(start))
	return result, nil
}

// opportunisticSweep runs at most one sweep per OpportunisticInterval. Failures are only logged.
func (e *executor) opportunisticSweep(ctx context.Context) {
	if !e.config.OpportunisticSweep {
		return
	}

	e.sweepMu.Lock()
	now := e.clock.Now()
	if !e.lastSweep.IsZero() && now.Sub(e.lastSweep) < e.config.OpportunisticInterval {
		e.sweepMu.Unlock()
		return
	}
	e.lastSweep = now
	e.sweepMu.Unlock()

	result, err := e.sweep(ctx, metrics.SWEEP_SOURCE_OPPORTUNISTIC)
	if err != nil {
		logger.WarnCtx(ctx, "Opportunistic sweep failed", zap.Error(err))
		return
	}
	if result.Released > 0 || result.Failed > 0 {
		logger.InfoCtx(ctx, "Opportunistic sweep released expired escrows",
			zap.Int("released", result.Released),
			zap.Int("failed", result.Failed),
		)
	}
}

// getTransfer looks a transfer up by its public transfer id, then by record uuid
func (e *executor) getTransfer(ctx context.Context, id string) (*domain.TransferRecord, error) {
	rec, err := e.store.GetTransferByTransferID(ctx, id)
	if err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to get transfer")
	}
	if rec != nil {
		return rec, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewNotFoundError("Transfer not found")
	}

	rec, err = e.store.GetTransfer(ctx, id)
	if err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to get transfer")
	}
	if rec == nil {
		return nil, domain.NewNotFoundError("Transfer not found")
	}
	return rec, nil
}
