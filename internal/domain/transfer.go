package domain

import (
	"math"
	"time"
)

// TransferPurpose distinguishes protected escrow transfers from direct payments
type TransferPurpose string

const (
	TransferPurposeEscrow  TransferPurpose = "escrow_transfer"
	TransferPurposeRegular TransferPurpose = "regular_transfer"
)

// Valid reports whether the purpose is known
func (p TransferPurpose) Valid() bool {
	return p == TransferPurposeEscrow || p == TransferPurposeRegular
}

// TransferStatus is the lifecycle state of a transfer record
type TransferStatus string

const (
	// TransferStatusPending is written before the funding broadcast
	TransferStatusPending TransferStatus = "pending"
	// TransferStatusEscrowed means funds are held by the escrow account
	TransferStatusEscrowed TransferStatus = "escrowed"
	// TransferStatusSettling means a reclaim or release has claimed the record and is broadcasting
	TransferStatusSettling TransferStatus = "settling"
	// TransferStatusCompleted means funds reached the recipient
	TransferStatusCompleted TransferStatus = "completed"
	// TransferStatusReclaimed means funds went back to the sender
	TransferStatusReclaimed TransferStatus = "reclaimed"
	// TransferStatusFailed means the funding broadcast was rejected
	TransferStatusFailed TransferStatus = "failed"
)

// Terminal reports whether no further transition is allowed
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferStatusCompleted, TransferStatusReclaimed, TransferStatusFailed:
		return true
	}
	return false
}

// ReservedFunds is the part of the gross escrow amount withheld at creation
type ReservedFunds struct {
	MinimumBalance      uint64 `json:"minimum_balance"`
	ProjectedNetworkFee uint64 `json:"projected_network_fee"`
	SafientReserve      uint64 `json:"safient_reserve"`
}

// Timer is the protection window of an escrow transfer
type Timer struct {
	DurationHours float64   `json:"duration_hours"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the protection window is over at now.
// now == ExpiresAt counts as expired.
func (t *Timer) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Remaining returns the time left in the protection window, zero when expired
func (t *Timer) Remaining(now time.Time) time.Duration {
	if t.Expired(now) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}

// TransferRecord is the persisted state of one escrow or regular transfer
type TransferRecord struct {
	ID               string          `json:"id"`
	TransferID       string          `json:"transfer_id"`
	Purpose          TransferPurpose `json:"purpose"`
	Status           TransferStatus  `json:"status"`
	SenderAddress    Address         `json:"sender_address"`
	RecipientAddress Address         `json:"recipient_address"`
	EscrowAddress    Address         `json:"escrow_address,omitempty"`
	// EscrowSecret is the sealed escrow mnemonic
	EscrowSecret string `json:"escrow_secret,omitempty"`

	// Amount is the net amount intended for the recipient
	Amount uint64 `json:"amount"`
	// LockedAmount is the gross amount funded into escrow
	LockedAmount  uint64         `json:"locked_amount"`
	ReservedFunds *ReservedFunds `json:"reserved_funds,omitempty"`
	Timer         *Timer         `json:"timer,omitempty"`

	TransactionHash        string `json:"transaction_hash,omitempty"`
	BlockRound             uint64 `json:"block_round,omitempty"`
	ReleaseTransactionHash string `json:"release_transaction_hash,omitempty"`
	ReclaimTransactionHash string `json:"reclaim_transaction_hash,omitempty"`
	// SettlementAmount is the payout actually sent by reclaim or release
	SettlementAmount uint64 `json:"settlement_amount,omitempty"`
	AutoReleased     bool   `json:"auto_released"`
	FailureReason    string `json:"failure_reason,omitempty"`

	ReleasedAt  *time.Time `json:"released_at,omitempty"`
	ReclaimedAt *time.Time `json:"reclaimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsEscrow reports whether the record went through an escrow account
func (r *TransferRecord) IsEscrow() bool {
	return r.Purpose == TransferPurposeEscrow
}

// Clone returns a deep copy of the record
func (r *TransferRecord) Clone() *TransferRecord {
	if r == nil {
		return nil
	}

	c := *r
	if r.ReservedFunds != nil {
		rf := *r.ReservedFunds
		c.ReservedFunds = &rf
	}
	if r.Timer != nil {
		t := *r.Timer
		c.Timer = &t
	}
	if r.ReleasedAt != nil {
		t := *r.ReleasedAt
		c.ReleasedAt = &t
	}
	if r.ReclaimedAt != nil {
		t := *r.ReclaimedAt
		c.ReclaimedAt = &t
	}
	return &c
}

// TransferEvent is one entry of a record's status history
type TransferEvent struct {
	ID         uint64          `json:"id"`
	TransferID string          `json:"transfer_id"`
	FromStatus *TransferStatus `json:"from_status,omitempty"`
	ToStatus   TransferStatus  `json:"to_status"`
	Snapshot   *TransferRecord `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ClampDurationHours applies the default and the accepted range to a requested duration
func ClampDurationHours(hours float64, minDuration, maxDuration time.Duration) float64 {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = DEFAULT_ESCROW_DURATION_HOURS
	}

	minHours := minDuration.Hours()
	maxHours := maxDuration.Hours()
	if minHours > 0 && hours < minHours {
		hours = minHours
	}
	if maxHours > 0 && hours > maxHours {
		hours = maxHours
	}
	return hours
}

// DurationFromHours converts fractional hours to a duration with second precision
func DurationFromHours(hours float64) time.Duration {
	return time.Duration(math.Round(hours*3600)) * time.Second
}
