package store

import (
	"context"
	"errors"
	"time"

	"github.com/safient/safient-escrow/internal/domain"
)

const (
	DEFAULT_LIST_LIMIT = 50
	MAX_LIST_LIMIT     = 1000
)

var (
	// ErrNotFound is returned by UpdateTransfer when the record does not exist
	ErrNotFound = errors.New("transfer record not found")
	// ErrStatusConflict is returned by UpdateTransfer when the stored status is not the expected one
	ErrStatusConflict = errors.New("transfer status changed concurrently")
	// ErrDuplicate is returned by PutTransfer when the id or transfer id is taken
	ErrDuplicate = errors.New("transfer record already exists")
)

// Cursor is a position in the listing order (created_at, then id, both descending)
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorOf returns the position of rec, so that a listing after it continues with the next record
func CursorOf(rec *domain.TransferRecord) *Cursor {
	return &Cursor{CreatedAt: rec.CreatedAt, ID: rec.ID}
}

// precedes reports whether rec comes after c in the listing order
func (c *Cursor) precedes(rec *domain.TransferRecord) bool {
	if c == nil {
		return true
	}
	if rec.CreatedAt.Equal(c.CreatedAt) {
		return rec.ID < c.ID
	}
	return rec.CreatedAt.Before(c.CreatedAt)
}

// ListTransfersFilter narrows ListTransfers. The zero value lists everything up to DEFAULT_LIST_LIMIT.
type ListTransfersFilter struct {
	// User matches records where the address is the sender or the recipient
	User     domain.Address
	Statuses []domain.TransferStatus
	Limit    int
	// After continues a listing from the record the cursor points at
	After *Cursor
}

// PageLimit is the number of records one ListTransfers call returns at most
func (f ListTransfersFilter) PageLimit() int {
	if f.Limit <= 0 {
		return DEFAULT_LIST_LIMIT
	}
	return min(f.Limit, MAX_LIST_LIMIT)
}

func (f ListTransfersFilter) matches(rec *domain.TransferRecord) bool {
	if f.User != "" && rec.SenderAddress != f.User && rec.RecipientAddress != f.User {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if rec.Status == s {
			return true
		}
	}
	return false
}

// Store persists transfer records
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// PutTransfer inserts a new record and its first history event
	PutTransfer(ctx context.Context, rec *domain.TransferRecord) error

	// GetTransfer returns the record with the given id, or nil if absent
	GetTransfer(ctx context.Context, id string) (*domain.TransferRecord, error)

	// GetTransferByTransferID returns the record with the given public transfer id, or nil if absent
	GetTransferByTransferID(ctx context.Context, transferID string) (*domain.TransferRecord, error)

	// ListTransfers returns records newest first, ties broken by id. Unreadable records are skipped.
	// A page shorter than the filter's PageLimit means the listing is exhausted.
	ListTransfers(ctx context.Context, filter ListTransfersFilter) ([]*domain.TransferRecord, error)

	// UpdateTransfer replaces the mutable fields of rec only if the stored status equals expected.
	// It returns ErrStatusConflict when it does not and ErrNotFound when the record is missing.
	UpdateTransfer(ctx context.Context, rec *domain.TransferRecord, expected domain.TransferStatus) error

	// GetTransferHistory returns the status transitions of a transfer, oldest first
	GetTransferHistory(ctx context.Context, transferID string) ([]*domain.TransferEvent, error)
}

// snapshot returns the copy of rec kept in history events, without the sealed secret
func snapshot(rec *domain.TransferRecord) *domain.TransferRecord {
	c := rec.Clone()
	c.EscrowSecret = ""
	return c
}
