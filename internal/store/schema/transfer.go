package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Transfer represents the transfers table - one row per escrow or regular transfer
type Transfer struct {
	// ID is the internal UUID
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// TransferID is the public ULID handed to clients
	TransferID string `gorm:"column:transfer_id;not null;uniqueIndex;type:varchar(26)"`
	// Purpose is escrow_transfer or regular_transfer
	Purpose string `gorm:"column:purpose;not null;type:varchar(32)"`
	// Status is the lifecycle state (pending, escrowed, settling, completed, reclaimed, failed)
	Status string `gorm:"column:status;not null;type:varchar(16)"`
	SenderAddress    string `gorm:"column:sender_address;not null;type:varchar(58)"`
	RecipientAddress string `gorm:"column:recipient_address;not null;type:varchar(58)"`
	EscrowAddress    string `gorm:"column:escrow_address;not null;default:'';type:varchar(58)"`
	// EscrowSecret is the sealed escrow mnemonic
	EscrowSecret string `gorm:"column:escrow_secret;not null;default:'';type:text"`
	// Amount is the net amount for the recipient in microAlgos
	Amount uint64 `gorm:"column:amount;not null;type:bigint"`
	// LockedAmount is the gross amount funded into escrow in microAlgos
	LockedAmount uint64 `gorm:"column:locked_amount;not null;type:bigint"`
	// ReservedFunds holds minimum balance, projected fee and total reserve
	ReservedFunds datatypes.JSON `gorm:"column:reserved_funds;type:jsonb"`
	DurationHours *float64       `gorm:"column:duration_hours;type:double precision"`
	TimerStartAt  *time.Time     `gorm:"column:timer_start_at;type:timestamptz"`
	// ExpiresAt is the end of the protection window, indexed for sweeps
	ExpiresAt              *time.Time `gorm:"column:expires_at;index;type:timestamptz"`
	TransactionHash        string     `gorm:"column:transaction_hash;not null;default:'';type:varchar(64)"`
	BlockRound             uint64     `gorm:"column:block_round;not null;default:0;type:bigint"`
	ReleaseTransactionHash string     `gorm:"column:release_transaction_hash;not null;default:'';type:varchar(64)"`
	ReclaimTransactionHash string     `gorm:"column:reclaim_transaction_hash;not null;default:'';type:varchar(64)"`
	SettlementAmount       uint64     `gorm:"column:settlement_amount;not null;default:0;type:bigint"`
	AutoReleased           bool       `gorm:"column:auto_released;not null;default:false"`
	FailureReason          string     `gorm:"column:failure_reason;not null;default:'';type:text"`
	ReleasedAt             *time.Time `gorm:"column:released_at;type:timestamptz"`
	ReclaimedAt            *time.Time `gorm:"column:reclaimed_at;type:timestamptz"`
	CreatedAt              time.Time  `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt              time.Time  `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Transfer model
func (Transfer) TableName() string {
	return "transfers"
}
