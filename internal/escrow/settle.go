package escrow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/events"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/store"
)

// settlement describes where escrowed funds go
type settlement struct {
	operation string
	to        domain.Address
	// limit caps the payout: the locked amount for reclaim, the net amount for release
	limit     uint64
	status    domain.TransferStatus
	auto      bool
	eventType string
}

func (e *engine) Reclaim(ctx context.Context, transferID string, senderSecret string) (result *SettlementResult, err error) {
	defer e.recordRejection(OPERATION_RECLAIM, &err)

	rec, err := e.lookup(ctx, transferID)
	if err != nil {
		return nil, err
	}

	caller, err := e.ledger.AccountFromSecret(senderSecret)
	if err != nil {
		return nil, domain.NewValidationError("Invalid sender secret")
	}
	if caller != rec.SenderAddress {
		return nil, domain.NewAuthorizationError("Unauthorized: only the sender can reclaim funds")
	}

	if rec.Status != domain.TransferStatusEscrowed {
		return nil, domain.NewConflictError("transfer is already %s", rec.Status)
	}
	if rec.Timer == nil {
		return nil, domain.NewConflictError("transfer has no protection timer")
	}

	now := e.clock.Now()
	if rec.Timer.Expired(now) {
		ago := int64(now.Sub(rec.Timer.ExpiresAt) / time.Minute)
		return nil, domain.NewExpiredError("Reclaim period has expired. Expired %d minutes ago.", ago).
			WithDetail("expires_at", rec.Timer.ExpiresAt)
	}

	return e.settle(ctx, rec, settlement{
		operation: OPERATION_RECLAIM,
		to:        rec.SenderAddress,
		limit:     rec.LockedAmount,
		status:    domain.TransferStatusReclaimed,
		eventType: events.EventTypeTransferReclaimed,
	})
}

func (e *engine) Release(ctx context.Context, transferID string, auto bool) (result *SettlementResult, err error) {
	defer e.recordRejection(OPERATION_RELEASE, &err)

	rec, err := e.lookup(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if rec.Status != domain.TransferStatusEscrowed {
		return nil, domain.NewConflictError("transfer is already %s", rec.Status)
	}
	if rec.AutoReleased {
		return nil, domain.NewConflictError("transfer was already auto-released")
	}
	if rec.Timer == nil {
		return nil, domain.NewConflictError("transfer has no protection timer")
	}

	now := e.clock.Now()
	if !rec.Timer.Expired(now) {
		remaining := rec.Timer.Remaining(now)
		return nil, domain.NewNotYetExpiredError("Protection period not expired yet. %d minutes remaining.", domain.CeilMinutes(remaining)).
			WithDetail("remaining_seconds", int64(remaining.Seconds())).
			WithDetail("expires_at", rec.Timer.ExpiresAt)
	}

	return e.settle(ctx, rec, settlement{
		operation: OPERATION_RELEASE,
		to:        rec.RecipientAddress,
		limit:     rec.Amount,
		status:    domain.TransferStatusCompleted,
		auto:      auto,
		eventType: events.EventTypeTransferReleased,
	})
}

// settle claims the record, pays out from the escrow account and writes the final status
func (e *engine) settle(ctx context.Context, rec *domain.TransferRecord, s settlement) (*SettlementResult, error) {
	claimed := rec.Clone()
	claimed.Status = domain.TransferStatusSettling
	claimed.UpdatedAt = e.clock.Now()
	if err := e.store.UpdateTransfer(ctx, claimed, domain.TransferStatusEscrowed); err != nil {
		switch {
		case errors.Is(err, store.ErrStatusConflict):
			return nil, domain.NewConflictError("transfer is already being settled")
		case errors.Is(err, store.ErrNotFound):
			return nil, domain.NewNotFoundError("Transfer not found")
		}
		return nil, domain.NewExternalServiceError(err, "Failed to claim transfer")
	}

	payout, err := e.computePayout(ctx, claimed, s.limit)
	if err != nil {
		e.releaseClaim(ctx, claimed)
		return nil, err
	}

	secret, err := e.secrets.Open(claimed.EscrowSecret)
	if err != nil {
		e.releaseClaim(ctx, claimed)
		return nil, domain.NewExternalServiceError(err, "Failed to open escrow secret")
	}

	// the hash is on the record before the payment leaves, so a settling record without one was never sent
	recordHash := func(txID string) error {
		signed := claimed.Clone()
		setSettlementHash(signed, s.status, txID)
		signed.UpdatedAt = e.clock.Now()
		if err := e.store.UpdateTransfer(ctx, signed, domain.TransferStatusSettling); err != nil {
			return err
		}
		claimed = signed
		return nil
	}

	paid, err := e.pay(ctx, secret, claimed.EscrowAddress, s.to, payout.Amount, payout.Fee, recordHash)
	if err != nil {
		if !paid.Broadcast {
			if errors.Is(err, store.ErrStatusConflict) || errors.Is(err, store.ErrNotFound) {
				return nil, domain.NewConflictError("transfer claim was lost before the %s payment was sent", s.operation)
			}
			e.releaseClaim(ctx, claimed)
			return nil, domain.NewExternalServiceError(err, "Failed to send %s payment", s.operation)
		}

		// the payment may still land, keep the claim with its hash
		logger.WarnCtx(ctx, "Settlement transaction broadcast but not confirmed",
			zap.String("transfer_id", claimed.TransferID),
			zap.String("operation", s.operation),
			zap.String("tx_hash", paid.TxID),
			zap.Error(err))
		return nil, domain.NewExternalServiceError(err, "Settlement transaction %s was broadcast but not confirmed", paid.TxID)
	}

	now := e.clock.Now()
	final := claimed.Clone()
	final.Status = s.status
	final.SettlementAmount = payout.Amount
	setSettlementHash(final, s.status, paid.TxID)
	if s.status == domain.TransferStatusReclaimed {
		final.ReclaimedAt = &now
	} else {
		final.ReleasedAt = &now
		final.AutoReleased = s.auto
	}

	if err := e.writeStatus(ctx, final, domain.TransferStatusSettling); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("reason", "Settlement confirmed but status write failed"),
			zap.String("transfer_id", final.TransferID),
			zap.String("tx_hash", paid.TxID))
		return nil, domain.NewExternalServiceError(err, "Settlement transaction %s confirmed but the transfer could not be updated", paid.TxID)
	}

	e.metrics.TransferSettled(final.Status, final.AutoReleased, payout.Amount)
	e.publish(ctx, s.eventType, final, paid.TxID)
	if s.status == domain.TransferStatusReclaimed && e.scheduler != nil {
		if err := e.scheduler.CancelRelease(ctx, final.TransferID); err != nil {
			logger.WarnCtx(ctx, "Failed to cancel scheduled release",
				zap.String("transfer_id", final.TransferID),
				zap.Error(err))
		}
	}

	logger.InfoCtx(ctx, "Transfer settled",
		zap.String("transfer_id", final.TransferID),
		zap.String("status", string(final.Status)),
		zap.Bool("auto", final.AutoReleased),
		zap.Uint64("payout", payout.Amount),
		zap.String("tx_hash", paid.TxID))

	return &SettlementResult{
		TransferID:      final.TransferID,
		Status:          final.Status,
		TransactionHash: paid.TxID,
		Amount:          payout.Amount,
		Payout:          payout,
		Record:          final,
	}, nil
}

// computePayout reads the live escrow balance and fee. A zero payout is InsufficientFunds.
func (e *engine) computePayout(ctx context.Context, rec *domain.TransferRecord, limit uint64) (domain.Payout, error) {
	balance, err := e.ledger.GetBalance(ctx, rec.EscrowAddress)
	if err != nil {
		return domain.Payout{}, domain.NewExternalServiceError(err, "Failed to read escrow balance")
	}

	fee, err := e.ledger.GetSuggestedFee(ctx)
	if err != nil {
		return domain.Payout{}, domain.NewExternalServiceError(err, "Failed to fetch the network fee")
	}

	payout := domain.ComputePayout(limit, balance, e.cfg.MinimumBalance, fee)
	if payout.Amount == 0 {
		return payout, domain.NewInsufficientFundsError("Insufficient funds in escrow: balance %s cannot cover the minimum balance %s and fee %s",
			domain.FormatAlgo(balance), domain.FormatAlgo(payout.MinimumBalance), domain.FormatAlgo(fee)).
			WithDetail("balance", balance).
			WithDetail("minimum_balance", payout.MinimumBalance).
			WithDetail("fee", fee).
			WithDetail("shortfall", payout.Shortfall())
	}

	return payout, nil
}

// releaseClaim moves a claimed record back to escrowed after a failure that sent nothing.
// A settlement hash written ahead of a rejected broadcast is cleared.
func (e *engine) releaseClaim(ctx context.Context, claimed *domain.TransferRecord) {
	reverted := claimed.Clone()
	reverted.Status = domain.TransferStatusEscrowed
	reverted.ReleaseTransactionHash = ""
	reverted.ReclaimTransactionHash = ""
	if err := e.writeStatus(ctx, reverted, domain.TransferStatusSettling); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("reason", "Failed to release settlement claim"),
			zap.String("transfer_id", claimed.TransferID))
	}
}

func (e *engine) lookup(ctx context.Context, transferID string) (*domain.TransferRecord, error) {
	rec, err := e.store.GetTransferByTransferID(ctx, transferID)
	if err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to load transfer")
	}
	if rec == nil {
		return nil, domain.NewNotFoundError("Transfer not found")
	}
	return rec, nil
}

func (e *engine) recordRejection(operation string, err *error) {
	if *err != nil {
		e.metrics.SettlementRejected(operation, domain.KindOf(*err))
	}
}

func setSettlementHash(rec *domain.TransferRecord, status domain.TransferStatus, txID string) {
	if status == domain.TransferStatusReclaimed {
		rec.ReclaimTransactionHash = txID
		return
	}
	rec.ReleaseTransactionHash = txID
}
