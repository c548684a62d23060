package escrow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/events"
	"github.com/safient/safient-escrow/internal/providers/algorand"
	"github.com/safient/safient-escrow/internal/store"
)

func TestCreateTransfer_Escrow(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	var scheduledAt time.Time
	m.scheduler.EXPECT().ScheduleRelease(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, expiresAt time.Time) error {
			scheduledAt = expiresAt
			return nil
		})

	rec, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret:  senderSecret,
		Recipient:     m.recipient,
		Amount:        1_000_000,
		Purpose:       domain.TransferPurposeEscrow,
		DurationHours: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransferStatusEscrowed, rec.Status)
	assert.Equal(t, uint64(899_000), rec.Amount)
	assert.Equal(t, uint64(1_000_000), rec.LockedAmount)
	require.NotNil(t, rec.ReservedFunds)
	assert.Equal(t, domain.ReservedFunds{MinimumBalance: 100_000, ProjectedNetworkFee: 1000, SafientReserve: 101_000}, *rec.ReservedFunds)
	require.NotNil(t, rec.Timer)
	assert.Equal(t, 0.5, rec.Timer.DurationHours)
	assert.Equal(t, m.now, rec.Timer.CreatedAt)
	assert.Equal(t, m.now.Add(1800*time.Second), rec.Timer.ExpiresAt)
	assert.Equal(t, rec.Timer.ExpiresAt, scheduledAt)
	assert.Equal(t, m.sender, rec.SenderAddress)
	assert.NotEmpty(t, rec.TransactionHash)
	assert.Equal(t, testConfirmRound, rec.BlockRound)
	assert.Len(t, rec.TransferID, 26)
	assert.NotEmpty(t, rec.ID)

	// funds and note
	assert.Equal(t, uint64(1_000_000), m.ledger.balance(rec.EscrowAddress))
	assert.Equal(t, startingBalance-1_001_000, m.ledger.balance(m.sender))
	assert.Equal(t, []byte(domain.PAYMENT_NOTE), m.ledger.lastSent().Note)

	// the escrow secret is sealed at rest
	stored := m.stored(t, rec.TransferID)
	assert.Equal(t, domain.TransferStatusEscrowed, stored.Status)
	assert.True(t, strings.HasPrefix(stored.EscrowSecret, escrow.SEALED_SECRET_PREFIX))
	assert.NotContains(t, stored.EscrowSecret, "escrow secret")

	history, err := m.store.GetTransferHistory(context.Background(), rec.TransferID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.TransferStatusPending, history[0].ToStatus)
	assert.Equal(t, domain.TransferStatusEscrowed, history[1].ToStatus)

	assert.Equal(t, []string{events.EventTypeTransferCreated}, m.eventTypes())
}

func TestCreateTransfer_DefaultAndClampedDuration(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		expected time.Duration
	}{
		{name: "default", hours: 0, expected: 30 * time.Minute},
		{name: "below minimum", hours: 0.01, expected: 5 * time.Minute},
		{name: "above maximum", hours: 72, expected: 24 * time.Hour},
		{name: "in range", hours: 2, expected: 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestEngine(t)
			defer m.ctrl.Finish()

			m.scheduler.EXPECT().ScheduleRelease(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			rec, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
				SenderSecret:  senderSecret,
				Recipient:     m.recipient,
				Amount:        1_000_000,
				DurationHours: tt.hours,
			})
			require.NoError(t, err)
			assert.Equal(t, domain.TransferPurposeEscrow, rec.Purpose)
			assert.Equal(t, tt.expected, rec.Timer.ExpiresAt.Sub(rec.Timer.CreatedAt))
		})
	}
}

func TestCreateTransfer_CongestedFee(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()
	m.ledger.fee = 4000

	rec := m.createEscrow(t)
	assert.Equal(t, uint64(104_000), rec.ReservedFunds.SafientReserve)
	assert.Equal(t, uint64(896_000), rec.Amount)
	assert.Equal(t, rec.LockedAmount, rec.Amount+rec.ReservedFunds.SafientReserve)
}

func TestCreateTransfer_AmountEqualsReserve(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	_, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret: senderSecret,
		Recipient:    m.recipient,
		Amount:       101_000,
		Purpose:      domain.TransferPurposeEscrow,
	})
	require.Error(t, err)

	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.ErrorKindValidation, derr.Kind)
	assert.Equal(t, uint64(1), derr.Details["shortfall"])
	assert.Equal(t, uint64(101_001), derr.Details["minimum_amount"])

	assert.Equal(t, 0, m.ledger.sentCount())
	records, err := m.store.ListTransfers(context.Background(), store.ListTransfersFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, m.eventTypes())
}

func TestCreateTransfer_Validation(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	tests := []struct {
		name  string
		input escrow.CreateTransferInput
	}{
		{
			name:  "zero amount",
			input: escrow.CreateTransferInput{SenderSecret: senderSecret, Recipient: m.recipient},
		},
		{
			name:  "above maximum",
			input: escrow.CreateTransferInput{SenderSecret: senderSecret, Recipient: m.recipient, Amount: domain.MAX_TRANSFER_AMOUNT + 1},
		},
		{
			name:  "invalid recipient",
			input: escrow.CreateTransferInput{SenderSecret: senderSecret, Recipient: "NOT-AN-ADDRESS", Amount: 1_000_000},
		},
		{
			name:  "invalid sender secret",
			input: escrow.CreateTransferInput{SenderSecret: "unknown words", Recipient: m.recipient, Amount: 1_000_000},
		},
		{
			name:  "sender is recipient",
			input: escrow.CreateTransferInput{SenderSecret: senderSecret, Recipient: m.sender, Amount: 1_000_000},
		},
		{
			name:  "unknown purpose",
			input: escrow.CreateTransferInput{SenderSecret: senderSecret, Recipient: m.recipient, Amount: 1_000_000, Purpose: "gift"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.engine.CreateTransfer(context.Background(), tt.input)
			assert.True(t, domain.IsKind(err, domain.ErrorKindValidation), "got %v", err)
		})
	}

	assert.Equal(t, 0, m.ledger.sentCount())
}

func TestCreateTransfer_Regular(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	rec, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret: senderSecret,
		Recipient:    m.recipient,
		Amount:       250_000,
		Purpose:      domain.TransferPurposeRegular,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransferStatusCompleted, rec.Status)
	assert.Equal(t, uint64(250_000), rec.Amount)
	assert.Equal(t, rec.Amount, rec.LockedAmount)
	assert.True(t, rec.EscrowAddress.IsZero())
	assert.Nil(t, rec.Timer)
	assert.Nil(t, rec.ReservedFunds)
	assert.Equal(t, uint64(250_000), m.ledger.balance(m.recipient))
	assert.Equal(t, []string{events.EventTypeTransferCreated}, m.eventTypes())
}

func TestCreateTransfer_BroadcastRejected(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()
	m.ledger.broadcastErr = algorand.ErrNetwork

	_, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret: senderSecret,
		Recipient:    m.recipient,
		Amount:       1_000_000,
	})
	assert.True(t, domain.IsKind(err, domain.ErrorKindExternalService))
	assert.ErrorIs(t, err, algorand.ErrNetwork)

	records, err := m.store.ListTransfers(context.Background(), store.ListTransfersFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TransferStatusFailed, records[0].Status)
	assert.NotEmpty(t, records[0].FailureReason)
	assert.Equal(t, []string{events.EventTypeTransferFailed}, m.eventTypes())
}

func TestCreateTransfer_ConfirmationTimeout(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()
	m.ledger.confirmErr = algorand.ErrTimeout

	_, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret: senderSecret,
		Recipient:    m.recipient,
		Amount:       1_000_000,
	})
	assert.True(t, domain.IsKind(err, domain.ErrorKindExternalService))

	records, err := m.store.ListTransfers(context.Background(), store.ListTransfersFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TransferStatusPending, records[0].Status)
	assert.NotEmpty(t, records[0].TransactionHash)
	assert.Empty(t, m.eventTypes())
}

func TestCreateTransfer_SchedulerFailureIsNotReturned(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	m.scheduler.EXPECT().ScheduleRelease(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("temporal unavailable"))

	rec, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret: senderSecret,
		Recipient:    m.recipient,
		Amount:       1_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusEscrowed, rec.Status)
}

func TestCreateTransfer_StatusWriteRetried(t *testing.T) {
	flaky := &flakyStore{Store: store.NewMemoryStore(), status: domain.TransferStatusEscrowed, failures: 2}
	m := setupTestEngine(t, withStore(flaky))
	defer m.ctrl.Finish()

	rec := m.createEscrow(t)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, domain.TransferStatusEscrowed, m.stored(t, rec.TransferID).Status)
}
