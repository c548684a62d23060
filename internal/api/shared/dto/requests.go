package dto

import (
	"strings"

	apierrors "github.com/safient/safient-escrow/internal/api/shared/errors"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
)

// CreateTransferRequest represents the request body for creating a transfer
type CreateTransferRequest struct {
	SenderSecret     string  `json:"sender_secret"`
	RecipientAddress string  `json:"recipient_address"`
	Amount           uint64  `json:"amount"` // microAlgos
	Purpose          string  `json:"purpose,omitempty"`
	DurationHours    float64 `json:"duration_hours,omitempty"`
}

// Validate validates the request body and returns the engine input
func (r *CreateTransferRequest) Validate() (*escrow.CreateTransferInput, error) {
	if strings.TrimSpace(r.SenderSecret) == "" {
		return nil, apierrors.NewValidationError("sender_secret is required")
	}
	if strings.TrimSpace(r.RecipientAddress) == "" {
		return nil, apierrors.NewValidationError("recipient_address is required")
	}

	recipient, err := domain.ParseAddress(r.RecipientAddress)
	if err != nil {
		return nil, apierrors.NewValidationError("Invalid recipient address")
	}

	if r.Amount == 0 {
		return nil, apierrors.NewValidationError("amount must be greater than zero")
	}

	purpose := domain.TransferPurpose(r.Purpose)
	if r.Purpose != "" && !purpose.Valid() {
		return nil, apierrors.NewValidationError("purpose must be escrow_transfer or regular_transfer")
	}

	if r.DurationHours < 0 {
		return nil, apierrors.NewValidationError("duration_hours must not be negative")
	}

	return &escrow.CreateTransferInput{
		SenderSecret:  strings.TrimSpace(r.SenderSecret),
		Recipient:     recipient,
		Amount:        r.Amount,
		Purpose:       purpose,
		DurationHours: r.DurationHours,
	}, nil
}

// ReclaimTransferRequest represents the request body for reclaiming an escrow
type ReclaimTransferRequest struct {
	SenderSecret string `json:"sender_secret"`
}

// Validate validates the request body
func (r *ReclaimTransferRequest) Validate() error {
	if strings.TrimSpace(r.SenderSecret) == "" {
		return apierrors.NewValidationError("sender_secret is required")
	}
	return nil
}
