package escrow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/events"
	"github.com/safient/safient-escrow/internal/mocks"
	"github.com/safient/safient-escrow/internal/store"
)

func TestSweep_ReleasesExpired(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	rec := m.createEscrow(t)
	m.advance(40 * time.Minute)

	result, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &escrow.SweepResult{Checked: 1, Expired: 1, Released: 1, Errors: []string{}}, result)

	stored := m.stored(t, rec.TransferID)
	assert.Equal(t, domain.TransferStatusCompleted, stored.Status)
	assert.True(t, stored.AutoReleased)
	assert.NotEmpty(t, stored.ReleaseTransactionHash)
	assert.Equal(t, uint64(899_000), stored.SettlementAmount)
	assert.Equal(t, uint64(899_000), m.ledger.balance(m.recipient))
	assert.Equal(t, []string{events.EventTypeTransferCreated, events.EventTypeTransferReleased}, m.eventTypes())
}

func TestSweep_Idempotent(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	m.createEscrow(t)
	m.advance(time.Hour)

	first, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Released)
	sent := m.ledger.sentCount()

	second, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &escrow.SweepResult{Checked: 1, Skipped: 1, Errors: []string{}}, second)
	assert.Equal(t, sent, m.ledger.sentCount())
}

func TestSweep_Counters(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	expired := m.createEscrow(t)
	drained := m.createEscrow(t)
	m.ledger.setBalance(drained.EscrowAddress, 50_000)

	_, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret: senderSecret,
		Recipient:    m.recipient,
		Amount:       300_000,
		Purpose:      domain.TransferPurposeRegular,
	})
	require.NoError(t, err)

	m.advance(20 * time.Minute)
	// still inside its window at sweep time
	m.scheduler.EXPECT().ScheduleRelease(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	fresh, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret:  senderSecret,
		Recipient:     m.recipient,
		Amount:        2_000_000,
		DurationHours: 1,
	})
	require.NoError(t, err)

	m.advance(15 * time.Minute)

	result, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 1, result.Released)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Failed to release "+drained.TransferID+": "), result.Errors[0])

	assert.Equal(t, domain.TransferStatusCompleted, m.stored(t, expired.TransferID).Status)
	assert.Equal(t, domain.TransferStatusEscrowed, m.stored(t, drained.TransferID).Status)
	assert.Equal(t, domain.TransferStatusEscrowed, m.stored(t, fresh.TransferID).Status)
}

// putCompleted stores n settled regular transfers created after the current test time
func (m *testEngineMocks) putCompleted(t *testing.T, n int) {
	for i := range n {
		createdAt := m.now.Add(time.Duration(i+1) * time.Millisecond)
		require.NoError(t, m.store.PutTransfer(context.Background(), &domain.TransferRecord{
			ID:               uuid.NewString(),
			TransferID:       ulid.Make().String(),
			Purpose:          domain.TransferPurposeRegular,
			Status:           domain.TransferStatusCompleted,
			SenderAddress:    m.sender,
			RecipientAddress: m.recipient,
			Amount:           500_000,
			LockedAmount:     500_000,
			TransactionHash:  "REGULARTX",
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		}))
	}
}

func TestSweep_ReachesRecordsBeyondOnePage(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	rec := m.createEscrow(t)
	m.putCompleted(t, store.MAX_LIST_LIMIT)
	m.advance(40 * time.Minute)

	result, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.MAX_LIST_LIMIT+1, result.Checked)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Released)
	assert.Equal(t, store.MAX_LIST_LIMIT, result.Skipped)
	assert.Equal(t, domain.TransferStatusCompleted, m.stored(t, rec.TransferID).Status)
}

func TestSweep_SmallPages(t *testing.T) {
	m := setupTestEngine(t, func(cfg *escrow.Config, _ *testEngineMocks) { cfg.SweepLimit = 3 })
	defer m.ctrl.Finish()

	older := m.createEscrow(t)
	newer := m.createEscrow(t)
	m.putCompleted(t, 6)
	m.advance(40 * time.Minute)

	result, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &escrow.SweepResult{Checked: 8, Expired: 2, Released: 2, Skipped: 6, Errors: []string{}}, result)
	assert.Equal(t, domain.TransferStatusCompleted, m.stored(t, older.TransferID).Status)
	assert.Equal(t, domain.TransferStatusCompleted, m.stored(t, newer.TransferID).Status)
}

// claim moves rec to settling at the current test time, as a settlement that stopped before signing would
func (m *testEngineMocks) claim(t *testing.T, rec *domain.TransferRecord, txHash string) {
	claimed := m.stored(t, rec.TransferID)
	claimed.Status = domain.TransferStatusSettling
	claimed.ReleaseTransactionHash = txHash
	claimed.UpdatedAt = m.now
	require.NoError(t, m.store.UpdateTransfer(context.Background(), claimed, domain.TransferStatusEscrowed))
}

func TestSweep_RecoversStaleClaim(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	rec := m.createEscrow(t)
	m.advance(35 * time.Minute)
	m.claim(t, rec, "")

	m.advance(time.Minute)
	result, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &escrow.SweepResult{Checked: 1, Skipped: 1, Errors: []string{}}, result)
	assert.Equal(t, domain.TransferStatusSettling, m.stored(t, rec.TransferID).Status)

	m.advance(escrow.DEFAULT_SETTLING_TIMEOUT)
	result, err = m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &escrow.SweepResult{Checked: 1, Expired: 1, Released: 1, Recovered: 1, Errors: []string{}}, result)

	stored := m.stored(t, rec.TransferID)
	assert.Equal(t, domain.TransferStatusCompleted, stored.Status)
	assert.True(t, stored.AutoReleased)
	assert.Equal(t, 2, m.ledger.sentCount())
}

func TestSweep_KeepsClaimWithHash(t *testing.T) {
	m := setupTestEngine(t)
	defer m.ctrl.Finish()

	rec := m.createEscrow(t)
	m.advance(35 * time.Minute)
	m.claim(t, rec, "RELEASETX")
	m.advance(time.Hour)

	result, err := m.engine.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Recovered)
	assert.Equal(t, 1, result.Skipped)

	stored := m.stored(t, rec.TransferID)
	assert.Equal(t, domain.TransferStatusSettling, stored.Status)
	assert.Equal(t, "RELEASETX", stored.ReleaseTransactionHash)
	assert.Equal(t, 1, m.ledger.sentCount())
}

func TestSweep_LaterPageFailureKeepsProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	regular := &domain.TransferRecord{
		ID:         uuid.NewString(),
		TransferID: ulid.Make().String(),
		Purpose:    domain.TransferPurposeRegular,
		Status:     domain.TransferStatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	st := mocks.NewMockStore(ctrl)
	gomock.InOrder(
		st.EXPECT().ListTransfers(gomock.Any(), store.ListTransfersFilter{Limit: 1}).Return([]*domain.TransferRecord{regular}, nil),
		st.EXPECT().ListTransfers(gomock.Any(), store.ListTransfersFilter{Limit: 1, After: store.CursorOf(regular)}).
			Return(nil, errors.New("connection reset")),
	)

	secrets, err := escrow.NewSecretBox(testSecretKey, false, adapter.NewBase64())
	require.NoError(t, err)

	cfg := escrow.DefaultConfig()
	cfg.SweepLimit = 1
	e := escrow.NewEngine(cfg, newFakeLedger(), st, secrets, adapter.NewClock())

	result, err := e.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"Failed to list transfers: connection reset"}, result.Errors)
}

func TestStaleClaim(t *testing.T) {
	claimedAt := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	timeout := 10 * time.Minute

	tests := []struct {
		name     string
		rec      *domain.TransferRecord
		now      time.Time
		expected bool
	}{
		{
			name:     "settling past the timeout",
			rec:      &domain.TransferRecord{Status: domain.TransferStatusSettling, UpdatedAt: claimedAt},
			now:      claimedAt.Add(timeout),
			expected: true,
		},
		{
			name: "settling inside the timeout",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusSettling, UpdatedAt: claimedAt},
			now:  claimedAt.Add(timeout - time.Second),
		},
		{
			name: "release signed",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusSettling, UpdatedAt: claimedAt, ReleaseTransactionHash: "TX"},
			now:  claimedAt.Add(time.Hour),
		},
		{
			name: "reclaim signed",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusSettling, UpdatedAt: claimedAt, ReclaimTransactionHash: "TX"},
			now:  claimedAt.Add(time.Hour),
		},
		{
			name: "escrowed",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusEscrowed, UpdatedAt: claimedAt},
			now:  claimedAt.Add(time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escrow.StaleClaim(tt.rec, tt.now, timeout))
		})
	}
}

func TestSweep_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().ListTransfers(gomock.Any(), store.ListTransfersFilter{Limit: store.MAX_LIST_LIMIT}).Return(nil, errors.New("connection refused"))

	secrets, err := escrow.NewSecretBox(testSecretKey, false, adapter.NewBase64())
	require.NoError(t, err)

	e := escrow.NewEngine(escrow.DefaultConfig(), newFakeLedger(), st, secrets, adapter.NewClock())
	_, err = e.Sweep(context.Background())
	assert.True(t, domain.IsKind(err, domain.ErrorKindExternalService))
}

func TestEligible(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	timer := &domain.Timer{DurationHours: 0.5, CreatedAt: now.Add(-30 * time.Minute), ExpiresAt: now}

	tests := []struct {
		name     string
		rec      *domain.TransferRecord
		expected bool
	}{
		{
			name:     "expired escrow",
			rec:      &domain.TransferRecord{Status: domain.TransferStatusEscrowed, Timer: timer},
			expected: true,
		},
		{
			name: "not yet expired",
			rec: &domain.TransferRecord{Status: domain.TransferStatusEscrowed, Timer: &domain.Timer{
				ExpiresAt: now.Add(time.Second),
			}},
		},
		{
			name: "settling",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusSettling, Timer: timer},
		},
		{
			name: "no timer",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusEscrowed},
		},
		{
			name: "already auto released",
			rec:  &domain.TransferRecord{Status: domain.TransferStatusEscrowed, Timer: timer, AutoReleased: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escrow.Eligible(tt.rec, now))
		})
	}
}
