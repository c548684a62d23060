package dto

import (
	"time"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
)

// MapTransferToDTO maps a record to its public shape. The escrow secret is never copied.
func MapTransferToDTO(rec *domain.TransferRecord) TransferResponse {
	resp := TransferResponse{
		ID:                     rec.ID,
		TransferID:             rec.TransferID,
		Purpose:                rec.Purpose,
		Status:                 rec.Status,
		SenderAddress:          rec.SenderAddress.String(),
		RecipientAddress:       rec.RecipientAddress.String(),
		EscrowAddress:          rec.EscrowAddress.String(),
		Amount:                 rec.Amount,
		AmountFormatted:        domain.FormatAlgo(rec.Amount),
		LockedAmount:           rec.LockedAmount,
		LockedAmountFormatted:  domain.FormatAlgo(rec.LockedAmount),
		TransactionHash:        rec.TransactionHash,
		BlockRound:             rec.BlockRound,
		ReleaseTransactionHash: rec.ReleaseTransactionHash,
		ReclaimTransactionHash: rec.ReclaimTransactionHash,
		SettlementAmount:       rec.SettlementAmount,
		AutoReleased:           rec.AutoReleased,
		FailureReason:          rec.FailureReason,
		ReleasedAt:             rec.ReleasedAt,
		ReclaimedAt:            rec.ReclaimedAt,
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}

	if rec.SettlementAmount > 0 {
		resp.SettlementAmountFormatted = domain.FormatAlgo(rec.SettlementAmount)
	}

	if rec.ReservedFunds != nil {
		resp.ReservedFunds = &ReservedFundsResponse{
			MinimumBalance:          rec.ReservedFunds.MinimumBalance,
			ProjectedNetworkFee:     rec.ReservedFunds.ProjectedNetworkFee,
			SafientReserve:          rec.ReservedFunds.SafientReserve,
			SafientReserveFormatted: domain.FormatAlgo(rec.ReservedFunds.SafientReserve),
		}
	}

	if rec.Timer != nil {
		expiresAt := rec.Timer.ExpiresAt
		resp.Timer = &TimerResponse{
			DurationHours: rec.Timer.DurationHours,
			CreatedAt:     rec.Timer.CreatedAt,
			ExpiresAt:     expiresAt,
		}
		resp.ExpiresAt = &expiresAt
	}

	return resp
}

// MapTransferStatusToDTO adds the protection window state at now
func MapTransferStatusToDTO(rec *domain.TransferRecord, now time.Time) *TransferStatusResponse {
	resp := &TransferStatusResponse{
		TransferResponse:       MapTransferToDTO(rec),
		RemainingTimeFormatted: domain.FormatRemaining(0),
	}
	if rec.Timer == nil {
		return resp
	}

	remaining := rec.Timer.Remaining(now)
	expired := rec.Timer.Expired(now)
	open := rec.Status == domain.TransferStatusEscrowed && !rec.AutoReleased

	resp.RemainingSeconds = int64(remaining / time.Second)
	resp.RemainingTimeFormatted = domain.FormatRemaining(remaining)
	resp.IsExpired = expired
	resp.CanReclaim = open && !expired
	resp.CanRelease = open && expired
	return resp
}

// MapTransferEventsToDTO maps a status history
func MapTransferEventsToDTO(transferID string, events []*domain.TransferEvent) *TransferHistoryResponse {
	resp := &TransferHistoryResponse{
		TransferID: transferID,
		Events:     make([]TransferEventResponse, len(events)),
	}
	for i, ev := range events {
		resp.Events[i] = TransferEventResponse{
			ID:         ev.ID,
			FromStatus: ev.FromStatus,
			ToStatus:   ev.ToStatus,
			CreatedAt:  ev.CreatedAt,
		}
	}
	return resp
}

// MapSettlementToDTO maps a reclaim or release result
func MapSettlementToDTO(result *escrow.SettlementResult) *SettlementResponse {
	resp := &SettlementResponse{
		TransferID:      result.TransferID,
		Status:          result.Status,
		TxHash:          result.TransactionHash,
		Amount:          result.Amount,
		AmountFormatted: domain.FormatAlgo(result.Amount),
	}
	if result.Record != nil {
		resp.AutoReleased = result.Record.AutoReleased
	}
	return resp
}

// MapSweepToDTO maps the counters of a sweep pass
func MapSweepToDTO(result *escrow.SweepResult) *SweepResponse {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return &SweepResponse{
		Checked:   result.Checked,
		Expired:   result.Expired,
		Released:  result.Released,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		Recovered: result.Recovered,
		Errors:    errs,
	}
}
