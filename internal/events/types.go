package events

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/safient/safient-escrow/internal/domain"
)

// Event type constants
const (
	// EventTypeTransferCreated is fired when funds reach escrow, or the recipient for regular transfers
	EventTypeTransferCreated = "transfer.created"
	// EventTypeTransferReclaimed is fired when the sender took funds back during the protection window
	EventTypeTransferReclaimed = "transfer.reclaimed"
	// EventTypeTransferReleased is fired when escrowed funds were paid to the recipient
	EventTypeTransferReleased = "transfer.released"
	// EventTypeTransferFailed is fired when the funding payment was rejected
	EventTypeTransferFailed = "transfer.failed"
)

// TransferEvent is the message published for a transfer lifecycle change
type TransferEvent struct {
	// EventID is a ULID, also used as the JetStream de-duplication id
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Data      TransferEventData `json:"data"`
}

// TransferEventData is the public view of the record at the time of the event
type TransferEventData struct {
	TransferID    string `json:"transfer_id"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status"`
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	EscrowAddress string `json:"escrow_address,omitempty"`
	Amount        uint64 `json:"amount"`
	LockedAmount  uint64 `json:"locked_amount"`
	// SettlementAmount is set for reclaimed and released events
	SettlementAmount uint64     `json:"settlement_amount,omitempty"`
	TxHash           string     `json:"tx_hash,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	AutoReleased     bool       `json:"auto_released"`
	FailureReason    string     `json:"failure_reason,omitempty"`
}

// NewTransferEvent builds an event for rec. txHash is the transaction that caused the change.
func NewTransferEvent(eventType string, rec *domain.TransferRecord, txHash string, now time.Time) TransferEvent {
	data := TransferEventData{
		TransferID:       rec.TransferID,
		Purpose:          string(rec.Purpose),
		Status:           string(rec.Status),
		Sender:           rec.SenderAddress.String(),
		Recipient:        rec.RecipientAddress.String(),
		EscrowAddress:    rec.EscrowAddress.String(),
		Amount:           rec.Amount,
		LockedAmount:     rec.LockedAmount,
		SettlementAmount: rec.SettlementAmount,
		TxHash:           txHash,
		AutoReleased:     rec.AutoReleased,
		FailureReason:    rec.FailureReason,
	}
	if rec.Timer != nil {
		expires := rec.Timer.ExpiresAt
		data.ExpiresAt = &expires
	}

	return TransferEvent{
		EventID:   ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		EventType: eventType,
		Timestamp: now.UTC(),
		Data:      data,
	}
}
