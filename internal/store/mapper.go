package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/store/schema"
)

func toSchemaTransfer(rec *domain.TransferRecord) (*schema.Transfer, error) {
	row := &schema.Transfer{
		ID:                     rec.ID,
		TransferID:             rec.TransferID,
		Purpose:                string(rec.Purpose),
		Status:                 string(rec.Status),
		SenderAddress:          rec.SenderAddress.String(),
		RecipientAddress:       rec.RecipientAddress.String(),
		EscrowAddress:          rec.EscrowAddress.String(),
		EscrowSecret:           rec.EscrowSecret,
		Amount:                 rec.Amount,
		LockedAmount:           rec.LockedAmount,
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

	if rec.ReservedFunds != nil {
		b, err := json.Marshal(rec.ReservedFunds)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal reserved funds: %w", err)
		}
		row.ReservedFunds = datatypes.JSON(b)
	}

	if rec.Timer != nil {
		hours := rec.Timer.DurationHours
		start := rec.Timer.CreatedAt
		expires := rec.Timer.ExpiresAt
		row.DurationHours = &hours
		row.TimerStartAt = &start
		row.ExpiresAt = &expires
	}

	return row, nil
}

func fromSchemaTransfer(row *schema.Transfer) (*domain.TransferRecord, error) {
	rec := &domain.TransferRecord{
		ID:                     row.ID,
		TransferID:             row.TransferID,
		Purpose:                domain.TransferPurpose(row.Purpose),
		Status:                 domain.TransferStatus(row.Status),
		SenderAddress:          domain.Address(row.SenderAddress),
		RecipientAddress:       domain.Address(row.RecipientAddress),
		EscrowAddress:          domain.Address(row.EscrowAddress),
		EscrowSecret:           row.EscrowSecret,
		Amount:                 row.Amount,
		LockedAmount:           row.LockedAmount,
		TransactionHash:        row.TransactionHash,
		BlockRound:             row.BlockRound,
		ReleaseTransactionHash: row.ReleaseTransactionHash,
		ReclaimTransactionHash: row.ReclaimTransactionHash,
		SettlementAmount:       row.SettlementAmount,
		AutoReleased:           row.AutoReleased,
		FailureReason:          row.FailureReason,
		ReleasedAt:             utcPtr(row.ReleasedAt),
		ReclaimedAt:            utcPtr(row.ReclaimedAt),
		CreatedAt:              row.CreatedAt.UTC(),
		UpdatedAt:              row.UpdatedAt.UTC(),
	}

	if len(row.ReservedFunds) > 0 {
		var rf domain.ReservedFunds
		if err := json.Unmarshal(row.ReservedFunds, &rf); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reserved funds: %w", err)
		}
		rec.ReservedFunds = &rf
	}

	if row.ExpiresAt != nil {
		timer := &domain.Timer{ExpiresAt: row.ExpiresAt.UTC()}
		if row.DurationHours != nil {
			timer.DurationHours = *row.DurationHours
		}
		if row.TimerStartAt != nil {
			timer.CreatedAt = row.TimerStartAt.UTC()
		}
		rec.Timer = timer
	}

	return rec, nil
}

// updateColumns lists every mutable column. Identity columns and created_at are never rewritten.
func updateColumns(row *schema.Transfer) map[string]interface{} {
	return map[string]interface{}{
		"status":                   row.Status,
		"escrow_address":           row.EscrowAddress,
		"escrow_secret":            row.EscrowSecret,
		"amount":                   row.Amount,
		"locked_amount":            row.LockedAmount,
		"reserved_funds":           row.ReservedFunds,
		"duration_hours":           row.DurationHours,
		"timer_start_at":           row.TimerStartAt,
		"expires_at":               row.ExpiresAt,
		"transaction_hash":         row.TransactionHash,
		"block_round":              row.BlockRound,
		"release_transaction_hash": row.ReleaseTransactionHash,
		"reclaim_transaction_hash": row.ReclaimTransactionHash,
		"settlement_amount":        row.SettlementAmount,
		"auto_released":            row.AutoReleased,
		"failure_reason":           row.FailureReason,
		"released_at":              row.ReleasedAt,
		"reclaimed_at":             row.ReclaimedAt,
		"updated_at":               row.UpdatedAt,
	}
}

func toSchemaEvent(rec *domain.TransferRecord, from *domain.TransferStatus) (*schema.TransferEvent, error) {
	b, err := json.Marshal(snapshot(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ev := &schema.TransferEvent{
		TransferID: rec.TransferID,
		ToStatus:   string(rec.Status),
		Snapshot:   datatypes.JSON(b),
		CreatedAt:  rec.UpdatedAt,
	}
	if from != nil {
		s := string(*from)
		ev.FromStatus = &s
	}
	return ev, nil
}

func fromSchemaEvent(row *schema.TransferEvent) (*domain.TransferEvent, error) {
	ev := &domain.TransferEvent{
		ID:         row.ID,
		TransferID: row.TransferID,
		ToStatus:   domain.TransferStatus(row.ToStatus),
		CreatedAt:  row.CreatedAt.UTC(),
	}
	if row.FromStatus != nil {
		s := domain.TransferStatus(*row.FromStatus)
		ev.FromStatus = &s
	}
	if len(row.Snapshot) > 0 {
		var snap domain.TransferRecord
		if err := json.Unmarshal(row.Snapshot, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		ev.Snapshot = &snap
	}
	return ev, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
