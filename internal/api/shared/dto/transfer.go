package dto

import (
	"time"

	"github.com/safient/safient-escrow/internal/domain"
)

// ReservedFundsResponse represents the funds withheld from an escrow
type ReservedFundsResponse struct {
	MinimumBalance          uint64 `json:"minimum_balance"`
	ProjectedNetworkFee     uint64 `json:"projected_network_fee"`
	SafientReserve          uint64 `json:"safient_reserve"`
	SafientReserveFormatted string `json:"safient_reserve_formatted"`
}

// TimerResponse represents the protection window of an escrow
type TimerResponse struct {
	DurationHours float64   `json:"duration_hours"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// TransferResponse is a transfer record without its escrow secret
type TransferResponse struct {
	ID                        string                 `json:"id"`
	TransferID                string                 `json:"transfer_id"`
	Purpose                   domain.TransferPurpose `json:"purpose"`
	Status                    domain.TransferStatus  `json:"status"`
	SenderAddress             string                 `json:"sender_address"`
	RecipientAddress          string                 `json:"recipient_address"`
	EscrowAddress             string                 `json:"escrow_address,omitempty"`
	Amount                    uint64                 `json:"amount"`
	AmountFormatted           string                 `json:"amount_formatted"`
	LockedAmount              uint64                 `json:"locked_amount"`
	LockedAmountFormatted     string                 `json:"locked_amount_formatted"`
	ReservedFunds             *ReservedFundsResponse `json:"reserved_funds,omitempty"`
	Timer                     *TimerResponse         `json:"timer,omitempty"`
	ExpiresAt                 *time.Time             `json:"expires_at,omitempty"`
	TransactionHash           string                 `json:"transaction_hash,omitempty"`
	BlockRound                uint64                 `json:"block_round,omitempty"`
	ReleaseTransactionHash    string                 `json:"release_transaction_hash,omitempty"`
	ReclaimTransactionHash    string                 `json:"reclaim_transaction_hash,omitempty"`
	SettlementAmount          uint64                 `json:"settlement_amount,omitempty"`
	SettlementAmountFormatted string                 `json:"settlement_amount_formatted,omitempty"`
	AutoReleased              bool                   `json:"auto_released"`
	FailureReason             string                 `json:"failure_reason,omitempty"`
	ReleasedAt                *time.Time             `json:"released_at,omitempty"`
	ReclaimedAt               *time.Time             `json:"reclaimed_at,omitempty"`
	CreatedAt                 time.Time              `json:"created_at"`
	UpdatedAt                 time.Time              `json:"updated_at"`
}

// TransferListResponse represents a list of transfers
type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
	Total     int                `json:"total"`
	Returned  int                `json:"returned"`
}

// TransferStatusResponse is a transfer plus the live state of its protection window
type TransferStatusResponse struct {
	TransferResponse
	RemainingSeconds       int64  `json:"remaining_seconds"`
	RemainingTimeFormatted string `json:"remaining_time_formatted"`
	CanReclaim             bool   `json:"can_reclaim"`
	CanRelease             bool   `json:"can_release"`
	IsExpired              bool   `json:"is_expired"`
}

// TransferEventResponse represents one status transition
type TransferEventResponse struct {
	ID         uint64                 `json:"id"`
	FromStatus *domain.TransferStatus `json:"from_status,omitempty"`
	ToStatus   domain.TransferStatus  `json:"to_status"`
	CreatedAt  time.Time              `json:"created_at"`
}

// TransferHistoryResponse represents the status history of a transfer
type TransferHistoryResponse struct {
	TransferID string                  `json:"transfer_id"`
	Events     []TransferEventResponse `json:"events"`
}

// SettlementResponse represents the result of a reclaim or release
type SettlementResponse struct {
	TransferID      string                `json:"transfer_id"`
	Status          domain.TransferStatus `json:"status"`
	TxHash          string                `json:"tx_hash"`
	Amount          uint64                `json:"amount"`
	AmountFormatted string                `json:"amount_formatted"`
	AutoReleased    bool                  `json:"auto_released"`
}

// SweepResponse represents the counters of one sweep pass
type SweepResponse struct {
	Checked   int      `json:"checked"`
	Expired   int      `json:"expired"`
	Released  int      `json:"released"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Recovered int      `json:"recovered"`
	Errors    []string `json:"errors"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
