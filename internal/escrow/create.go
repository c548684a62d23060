package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/events"
	"github.com/safient/safient-escrow/internal/logger"
)

func (e *engine) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.TransferRecord, error) {
	if input.Purpose == "" {
		input.Purpose = domain.TransferPurposeEscrow
	}

	sender, err := e.validateCreate(input)
	if err != nil {
		return nil, err
	}

	fee, err := e.ledger.GetSuggestedFee(ctx)
	if err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to fetch the network fee")
	}

	now := e.clock.Now()
	rec := &domain.TransferRecord{
		ID:               uuid.NewString(),
		TransferID:       ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Purpose:          input.Purpose,
		Status:           domain.TransferStatusPending,
		SenderAddress:    sender,
		RecipientAddress: input.Recipient,
		Amount:           input.Amount,
		LockedAmount:     input.Amount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	payee := input.Recipient
	if input.Purpose == domain.TransferPurposeEscrow {
		if err := e.prepareEscrow(rec, input, fee, now); err != nil {
			return nil, err
		}
		payee = rec.EscrowAddress
	}

	if err := e.store.PutTransfer(ctx, rec); err != nil {
		return nil, domain.NewExternalServiceError(err, "Failed to save transfer")
	}

	logger.InfoCtx(ctx, "Transfer created, funding",
		zap.String("transfer_id", rec.TransferID),
		zap.String("purpose", string(rec.Purpose)),
		zap.Uint64("locked_amount", rec.LockedAmount),
		zap.Uint64("amount", rec.Amount))

	paid, err := e.pay(ctx, input.SenderSecret, sender, payee, rec.LockedAmount, fee, nil)
	if err != nil {
		return nil, e.fundingFailed(ctx, rec, paid, err)
	}

	rec.TransactionHash = paid.TxID
	rec.BlockRound = paid.ConfirmedRound
	rec.Status = domain.TransferStatusEscrowed
	if !rec.IsEscrow() {
		rec.Status = domain.TransferStatusCompleted
	}

	if err := e.writeStatus(ctx, rec, domain.TransferStatusPending); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("reason", "Funding confirmed but status write failed"),
			zap.String("transfer_id", rec.TransferID),
			zap.String("tx_hash", paid.TxID))
		return nil, domain.NewExternalServiceError(err, "Funding transaction %s confirmed but the transfer could not be updated", paid.TxID)
	}

	e.metrics.TransferCreated(rec.Purpose, rec.LockedAmount)
	e.publish(ctx, events.EventTypeTransferCreated, rec, paid.TxID)
	if rec.IsEscrow() {
		e.scheduleRelease(ctx, rec)
	}

	logger.InfoCtx(ctx, "Transfer funded",
		zap.String("transfer_id", rec.TransferID),
		zap.String("status", string(rec.Status)),
		zap.String("tx_hash", rec.TransactionHash))

	return rec, nil
}

// validateCreate checks the input without side effects and returns the sender address
func (e *engine) validateCreate(input CreateTransferInput) (domain.Address, error) {
	if !input.Purpose.Valid() {
		return "", domain.NewValidationError("Invalid purpose %q", input.Purpose)
	}
	if input.Amount == 0 {
		return "", domain.NewValidationError("Amount must be greater than zero")
	}
	if e.cfg.MaxTransferAmount > 0 && input.Amount > e.cfg.MaxTransferAmount {
		return "", domain.NewValidationError("Amount exceeds the maximum of %s", domain.FormatAlgo(e.cfg.MaxTransferAmount)).
			WithDetail("max_amount", e.cfg.MaxTransferAmount)
	}
	if !input.Recipient.Valid() {
		return "", domain.NewValidationError("Invalid recipient address")
	}

	sender, err := e.ledger.AccountFromSecret(input.SenderSecret)
	if err != nil {
		return "", domain.NewValidationError("Invalid sender secret")
	}
	if sender == input.Recipient {
		return "", domain.NewValidationError("Sender and recipient must be different")
	}

	return sender, nil
}

// prepareEscrow computes the reserve, creates the escrow account and starts the timer
func (e *engine) prepareEscrow(rec *domain.TransferRecord, input CreateTransferInput, fee uint64, now time.Time) error {
	reserve := domain.ComputeReserve(fee, e.cfg.MinimumBalance, e.cfg.FeeFloor)
	net, ok := domain.NetAmount(input.Amount, reserve)
	if !ok {
		minimum := reserve.SafientReserve + 1
		return domain.NewValidationError("Amount %s does not cover the escrow reserve of %s", domain.FormatAlgo(input.Amount), domain.FormatAlgo(reserve.SafientReserve)).
			WithDetail("safient_reserve", reserve.SafientReserve).
			WithDetail("minimum_amount", minimum).
			WithDetail("shortfall", minimum-input.Amount)
	}

	keypair, err := e.ledger.GenerateKeypair()
	if err != nil {
		return domain.NewExternalServiceError(err, "Failed to generate escrow account")
	}
	sealed, err := e.secrets.Seal(keypair.Secret)
	if err != nil {
		return domain.NewExternalServiceError(err, "Failed to seal escrow secret")
	}

	hours := input.DurationHours
	if hours <= 0 {
		hours = e.cfg.DefaultDurationHours
	}
	hours = domain.ClampDurationHours(hours, e.cfg.MinDuration, e.cfg.MaxDuration)

	rec.EscrowAddress = keypair.Address
	rec.EscrowSecret = sealed
	rec.Amount = net
	rec.ReservedFunds = &reserve
	rec.Timer = &domain.Timer{
		DurationHours: hours,
		CreatedAt:     now,
		ExpiresAt:     now.Add(domain.DurationFromHours(hours)),
	}
	return nil
}

// fundingFailed records the outcome of a failed funding payment and returns the error for the caller
func (e *engine) fundingFailed(ctx context.Context, rec *domain.TransferRecord, paid *payment, cause error) error {
	if paid.Broadcast {
		// the payment may still land, keep the record pending with the hash for inspection
		rec.TransactionHash = paid.TxID
		if err := e.writeStatus(ctx, rec, domain.TransferStatusPending); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("transfer_id", rec.TransferID))
		}
		logger.WarnCtx(ctx, "Funding transaction broadcast but not confirmed",
			zap.String("transfer_id", rec.TransferID),
			zap.String("tx_hash", paid.TxID),
			zap.Error(cause))
		return domain.NewExternalServiceError(cause, "Funding transaction %s was broadcast but not confirmed", paid.TxID)
	}

	rec.Status = domain.TransferStatusFailed
	rec.FailureReason = cause.Error()
	if err := e.writeStatus(ctx, rec, domain.TransferStatusPending); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("transfer_id", rec.TransferID))
	}

	e.metrics.TransferFailed(rec.Purpose)
	e.publish(ctx, events.EventTypeTransferFailed, rec, "")

	logger.WarnCtx(ctx, "Funding transaction rejected",
		zap.String("transfer_id", rec.TransferID),
		zap.Error(cause))
	return domain.NewExternalServiceError(cause, "Failed to fund transfer")
}

func (e *engine) scheduleRelease(ctx context.Context, rec *domain.TransferRecord) {
	if e.scheduler == nil {
		return
	}
	if err := e.scheduler.ScheduleRelease(ctx, rec.TransferID, rec.Timer.ExpiresAt); err != nil {
		logger.WarnCtx(ctx, "Failed to schedule release",
			zap.String("transfer_id", rec.TransferID),
			zap.Error(err))
	}
}

func (e *engine) publish(ctx context.Context, eventType string, rec *domain.TransferRecord, txHash string) {
	event := events.NewTransferEvent(eventType, rec, txHash, e.clock.Now())
	if err := e.publisher.PublishTransferEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish transfer event",
			zap.String("transfer_id", rec.TransferID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
