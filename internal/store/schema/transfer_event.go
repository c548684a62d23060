package schema

import (
	"time"

	"gorm.io/datatypes"
)

// TransferEvent represents the transfer_events table - append-only status history
type TransferEvent struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TransferID is the public transfer id the event belongs to
	TransferID string `gorm:"column:transfer_id;not null;index;type:varchar(26)"`
	// FromStatus is empty for the insert event
	FromStatus *string `gorm:"column:from_status;type:varchar(16)"`
	ToStatus   string  `gorm:"column:to_status;not null;type:varchar(16)"`
	// Snapshot is the record after the transition, without the escrow secret
	Snapshot  datatypes.JSON `gorm:"column:snapshot;not null;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TransferEvent model
func (TransferEvent) TableName() string {
	return "transfer_events"
}
