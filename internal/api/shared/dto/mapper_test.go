package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/safient/safient-escrow/internal/api/shared/errors"
	"github.com/safient/safient-escrow/internal/domain"
)

func escrowedRecord(now time.Time) *domain.TransferRecord {
	return &domain.TransferRecord{
		ID:               "rec-1",
		TransferID:       "01J0TRANSFER",
		Purpose:          domain.TransferPurposeEscrow,
		Status:           domain.TransferStatusEscrowed,
		SenderAddress:    domain.Address(crypto.GenerateAccount().Address.String()),
		RecipientAddress: domain.Address(crypto.GenerateAccount().Address.String()),
		EscrowAddress:    domain.Address(crypto.GenerateAccount().Address.String()),
		EscrowSecret:     "secretbox:c2VhbGVk",
		Amount:           899_000,
		LockedAmount:     1_000_000,
		ReservedFunds: &domain.ReservedFunds{
			MinimumBalance:      100_000,
			ProjectedNetworkFee: 1000,
			SafientReserve:      101_000,
		},
		Timer: &domain.Timer{
			DurationHours: 0.5,
			CreatedAt:     now,
			ExpiresAt:     now.Add(30 * time.Minute),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMapTransferToDTO(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := escrowedRecord(now)

	resp := MapTransferToDTO(rec)
	assert.Equal(t, "0.899000 ALGO", resp.AmountFormatted)
	assert.Equal(t, "1.000000 ALGO", resp.LockedAmountFormatted)
	assert.Equal(t, "0.101000 ALGO", resp.ReservedFunds.SafientReserveFormatted)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, now.Add(30*time.Minute), *resp.ExpiresAt)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "secretbox:")
	assert.NotContains(t, string(body), "escrow_secret")
}

func TestMapTransferStatusToDTO(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("inside protection window", func(t *testing.T) {
		resp := MapTransferStatusToDTO(escrowedRecord(now), now.Add(25*time.Minute+55*time.Second))
		assert.Equal(t, int64(245), resp.RemainingSeconds)
		assert.Equal(t, "4m 5s", resp.RemainingTimeFormatted)
		assert.True(t, resp.CanReclaim)
		assert.False(t, resp.CanRelease)
		assert.False(t, resp.IsExpired)
	})

	t.Run("at expiry", func(t *testing.T) {
		resp := MapTransferStatusToDTO(escrowedRecord(now), now.Add(30*time.Minute))
		assert.Equal(t, int64(0), resp.RemainingSeconds)
		assert.Equal(t, "Expired", resp.RemainingTimeFormatted)
		assert.False(t, resp.CanReclaim)
		assert.True(t, resp.CanRelease)
		assert.True(t, resp.IsExpired)
	})

	t.Run("settled escrow", func(t *testing.T) {
		rec := escrowedRecord(now)
		rec.Status = domain.TransferStatusCompleted
		rec.AutoReleased = true
		resp := MapTransferStatusToDTO(rec, now.Add(time.Hour))
		assert.False(t, resp.CanReclaim)
		assert.False(t, resp.CanRelease)
		assert.True(t, resp.IsExpired)
	})

	t.Run("regular transfer", func(t *testing.T) {
		rec := escrowedRecord(now)
		rec.Purpose = domain.TransferPurposeRegular
		rec.Status = domain.TransferStatusCompleted
		rec.Timer = nil
		resp := MapTransferStatusToDTO(rec, now)
		assert.Equal(t, "Expired", resp.RemainingTimeFormatted)
		assert.False(t, resp.IsExpired)
		assert.Nil(t, resp.Timer)
	})
}

func TestCreateTransferRequestValidate(t *testing.T) {
	recipient := crypto.GenerateAccount().Address.String()

	tests := []struct {
		name    string
		req     CreateTransferRequest
		wantErr bool
	}{
		{name: "valid", req: CreateTransferRequest{SenderSecret: "words", RecipientAddress: recipient, Amount: 1_000_000}},
		{name: "missing secret", req: CreateTransferRequest{RecipientAddress: recipient, Amount: 1}, wantErr: true},
		{name: "missing recipient", req: CreateTransferRequest{SenderSecret: "words", Amount: 1}, wantErr: true},
		{name: "bad recipient", req: CreateTransferRequest{SenderSecret: "words", RecipientAddress: "nope", Amount: 1}, wantErr: true},
		{name: "zero amount", req: CreateTransferRequest{SenderSecret: "words", RecipientAddress: recipient}, wantErr: true},
		{name: "unknown purpose", req: CreateTransferRequest{SenderSecret: "words", RecipientAddress: recipient, Amount: 1, Purpose: "gift"}, wantErr: true},
		{name: "negative duration", req: CreateTransferRequest{SenderSecret: "words", RecipientAddress: recipient, Amount: 1, DurationHours: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := tt.req.Validate()
			if tt.wantErr {
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, apierrors.ErrCodeValidationFailed, apiErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.Address(recipient), input.Recipient)
			assert.Equal(t, tt.req.Amount, input.Amount)
		})
	}
}
