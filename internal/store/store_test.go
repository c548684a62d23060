package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/domain"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func newTestAddress() domain.Address {
	return domain.Address(crypto.GenerateAccount().Address.String())
}

// testNow is truncated to the precision PostgreSQL keeps
func testNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func buildEscrowRecord(sender, recipient domain.Address, createdAt time.Time) *domain.TransferRecord {
	reserve := domain.ComputeReserve(1000, domain.MINIMUM_BALANCE_MICROALGOS, domain.FEE_FLOOR_MICROALGOS)
	return &domain.TransferRecord{
		ID:               uuid.NewString(),
		TransferID:       ulid.Make().String(),
		Purpose:          domain.TransferPurposeEscrow,
		Status:           domain.TransferStatusPending,
		SenderAddress:    sender,
		RecipientAddress: recipient,
		EscrowAddress:    newTestAddress(),
		EscrowSecret:     "sealed-secret",
		Amount:           899_000,
		LockedAmount:     1_000_000,
		ReservedFunds:    &reserve,
		Timer: &domain.Timer{
			DurationHours: 0.5,
			CreatedAt:     createdAt,
			ExpiresAt:     createdAt.Add(30 * time.Minute),
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func buildRegularRecord(sender, recipient domain.Address, createdAt time.Time) *domain.TransferRecord {
	return &domain.TransferRecord{
		ID:               uuid.NewString(),
		TransferID:       ulid.Make().String(),
		Purpose:          domain.TransferPurposeRegular,
		Status:           domain.TransferStatusCompleted,
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Amount:           500_000,
		LockedAmount:     500_000,
		TransactionHash:  "REGULARTX",
		BlockRound:       42,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func assertRecordEqual(t *testing.T, expected, actual *domain.TransferRecord) {
	t.Helper()
	require.NotNil(t, actual)
	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.TransferID, actual.TransferID)
	assert.Equal(t, expected.Purpose, actual.Purpose)
	assert.Equal(t, expected.Status, actual.Status)
	assert.Equal(t, expected.SenderAddress, actual.SenderAddress)
	assert.Equal(t, expected.RecipientAddress, actual.RecipientAddress)
	assert.Equal(t, expected.EscrowAddress, actual.EscrowAddress)
	assert.Equal(t, expected.EscrowSecret, actual.EscrowSecret)
	assert.Equal(t, expected.Amount, actual.Amount)
	assert.Equal(t, expected.LockedAmount, actual.LockedAmount)
	assert.Equal(t, expected.ReservedFunds, actual.ReservedFunds)
	assert.Equal(t, expected.TransactionHash, actual.TransactionHash)
	assert.Equal(t, expected.BlockRound, actual.BlockRound)
	assert.Equal(t, expected.AutoReleased, actual.AutoReleased)
	assert.Equal(t, expected.SettlementAmount, actual.SettlementAmount)
	assert.True(t, expected.CreatedAt.Equal(actual.CreatedAt), "created_at %v != %v", expected.CreatedAt, actual.CreatedAt)

	if expected.Timer == nil {
		assert.Nil(t, actual.Timer)
	} else {
		require.NotNil(t, actual.Timer)
		assert.InDelta(t, expected.Timer.DurationHours, actual.Timer.DurationHours, 1e-9)
		assert.True(t, expected.Timer.ExpiresAt.Equal(actual.Timer.ExpiresAt))
		assert.True(t, expected.Timer.CreatedAt.Equal(actual.Timer.CreatedAt))
	}
}

// =============================================================================
// Test: Put / Get
// =============================================================================

func testPutAndGetTransfer(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("escrow record round trips", func(t *testing.T) {
		rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		require.NoError(t, store.PutTransfer(ctx, rec))

		byID, err := store.GetTransfer(ctx, rec.ID)
		require.NoError(t, err)
		assertRecordEqual(t, rec, byID)

		byTransferID, err := store.GetTransferByTransferID(ctx, rec.TransferID)
		require.NoError(t, err)
		assertRecordEqual(t, rec, byTransferID)
	})

	t.Run("regular record has no timer", func(t *testing.T) {
		rec := buildRegularRecord(newTestAddress(), newTestAddress(), testNow())
		require.NoError(t, store.PutTransfer(ctx, rec))

		got, err := store.GetTransferByTransferID(ctx, rec.TransferID)
		require.NoError(t, err)
		assertRecordEqual(t, rec, got)
		assert.Nil(t, got.ReservedFunds)
	})

	t.Run("missing record", func(t *testing.T) {
		got, err := store.GetTransfer(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = store.GetTransferByTransferID(ctx, ulid.Make().String())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		require.NoError(t, store.PutTransfer(ctx, rec))

		err := store.PutTransfer(ctx, rec)
		assert.ErrorIs(t, err, ErrDuplicate)

		other := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		other.TransferID = rec.TransferID
		err = store.PutTransfer(ctx, other)
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

// =============================================================================
// Test: UpdateTransfer
// =============================================================================

func testUpdateTransfer(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("conditional update moves status", func(t *testing.T) {
		rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		require.NoError(t, store.PutTransfer(ctx, rec))

		rec.Status = domain.TransferStatusEscrowed
		rec.TransactionHash = "FUNDINGTX"
		rec.BlockRound = 1234
		rec.UpdatedAt = testNow()
		require.NoError(t, store.UpdateTransfer(ctx, rec, domain.TransferStatusPending))

		got, err := store.GetTransfer(ctx, rec.ID)
		require.NoError(t, err)
		assertRecordEqual(t, rec, got)
	})

	t.Run("stale expected status conflicts", func(t *testing.T) {
		rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		rec.Status = domain.TransferStatusEscrowed
		require.NoError(t, store.PutTransfer(ctx, rec))

		reclaimed := rec.Clone()
		reclaimed.Status = domain.TransferStatusReclaimed
		reclaimed.ReclaimTransactionHash = "RECLAIMTX"
		require.NoError(t, store.UpdateTransfer(ctx, reclaimed, domain.TransferStatusEscrowed))

		released := rec.Clone()
		released.Status = domain.TransferStatusCompleted
		released.ReleaseTransactionHash = "RELEASETX"
		err := store.UpdateTransfer(ctx, released, domain.TransferStatusEscrowed)
		assert.ErrorIs(t, err, ErrStatusConflict)

		got, err := store.GetTransfer(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransferStatusReclaimed, got.Status)
		assert.Equal(t, "RECLAIMTX", got.ReclaimTransactionHash)
		assert.Empty(t, got.ReleaseTransactionHash)
	})

	t.Run("unknown record", func(t *testing.T) {
		rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		err := store.UpdateTransfer(ctx, rec, domain.TransferStatusPending)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("settlement fields persist", func(t *testing.T) {
		rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
		rec.Status = domain.TransferStatusSettling
		require.NoError(t, store.PutTransfer(ctx, rec))

		releasedAt := testNow()
		rec.Status = domain.TransferStatusCompleted
		rec.ReleaseTransactionHash = "RELEASETX"
		rec.SettlementAmount = 899_000
		rec.AutoReleased = true
		rec.ReleasedAt = &releasedAt
		require.NoError(t, store.UpdateTransfer(ctx, rec, domain.TransferStatusSettling))

		got, err := store.GetTransferByTransferID(ctx, rec.TransferID)
		require.NoError(t, err)
		assertRecordEqual(t, rec, got)
		require.NotNil(t, got.ReleasedAt)
		assert.True(t, releasedAt.Equal(*got.ReleasedAt))
		assert.Nil(t, got.ReclaimedAt)
	})
}

// =============================================================================
// Test: ListTransfers
// =============================================================================

func testListTransfers(t *testing.T, store Store) {
	ctx := context.Background()
	alice := newTestAddress()
	bob := newTestAddress()
	carol := newTestAddress()
	base := testNow().Add(time.Hour)

	first := buildEscrowRecord(alice, bob, base)
	second := buildRegularRecord(bob, carol, base.Add(time.Second))
	third := buildEscrowRecord(carol, alice, base.Add(2*time.Second))
	third.Status = domain.TransferStatusEscrowed
	for _, rec := range []*domain.TransferRecord{first, second, third} {
		require.NoError(t, store.PutTransfer(ctx, rec))
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := store.ListTransfers(ctx, ListTransfersFilter{Limit: 3})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, third.TransferID, records[0].TransferID)
		assert.Equal(t, second.TransferID, records[1].TransferID)
		assert.Equal(t, first.TransferID, records[2].TransferID)
	})

	t.Run("user matches sender or recipient", func(t *testing.T) {
		records, err := store.ListTransfers(ctx, ListTransfersFilter{User: alice})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, third.TransferID, records[0].TransferID)
		assert.Equal(t, first.TransferID, records[1].TransferID)

		records, err = store.ListTransfers(ctx, ListTransfersFilter{User: newTestAddress()})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("status filter", func(t *testing.T) {
		records, err := store.ListTransfers(ctx, ListTransfersFilter{
			User:     carol,
			Statuses: []domain.TransferStatus{domain.TransferStatusEscrowed},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, third.TransferID, records[0].TransferID)
	})

	t.Run("limit", func(t *testing.T) {
		records, err := store.ListTransfers(ctx, ListTransfersFilter{User: alice, Limit: 1})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, third.TransferID, records[0].TransferID)
	})
}

// testListPagination pages through a listing with cursors and checks every record is seen once, in order
func testListPagination(t *testing.T, store Store) {
	ctx := context.Background()
	alice := newTestAddress()
	base := testNow().Add(2 * time.Hour)

	var expected []*domain.TransferRecord
	for i := range 7 {
		rec := buildEscrowRecord(alice, newTestAddress(), base.Add(time.Duration(i)*time.Second))
		if i%2 == 0 {
			rec.Status = domain.TransferStatusEscrowed
		}
		expected = append(expected, rec)
	}
	// two records created in the same instant are ordered by id
	twin := buildRegularRecord(newTestAddress(), alice, expected[3].CreatedAt)
	expected = append(expected, twin)
	for _, rec := range expected {
		require.NoError(t, store.PutTransfer(ctx, rec))
	}

	sort.Slice(expected, func(i, j int) bool {
		if expected[i].CreatedAt.Equal(expected[j].CreatedAt) {
			return expected[i].ID > expected[j].ID
		}
		return expected[i].CreatedAt.After(expected[j].CreatedAt)
	})

	collect := func(filter ListTransfersFilter) ([]string, []int) {
		var ids []string
		var sizes []int
		for {
			page, err := store.ListTransfers(ctx, filter)
			require.NoError(t, err)
			sizes = append(sizes, len(page))
			for _, rec := range page {
				ids = append(ids, rec.ID)
			}
			if len(page) < filter.PageLimit() {
				return ids, sizes
			}
			filter.After = CursorOf(page[len(page)-1])
		}
	}

	t.Run("every record exactly once", func(t *testing.T) {
		ids, sizes := collect(ListTransfersFilter{User: alice, Limit: 3})
		want := make([]string, len(expected))
		for i, rec := range expected {
			want[i] = rec.ID
		}
		assert.Equal(t, want, ids)
		assert.Equal(t, []int{3, 3, 2}, sizes)
	})

	t.Run("exact multiple ends with an empty page", func(t *testing.T) {
		ids, sizes := collect(ListTransfersFilter{User: alice, Limit: 4})
		assert.Len(t, ids, len(expected))
		assert.Equal(t, []int{4, 4, 0}, sizes)
	})

	t.Run("status filter with cursor", func(t *testing.T) {
		ids, _ := collect(ListTransfersFilter{
			User:     alice,
			Statuses: []domain.TransferStatus{domain.TransferStatusEscrowed},
			Limit:    1,
		})
		var want []string
		for _, rec := range expected {
			if rec.Status == domain.TransferStatusEscrowed {
				want = append(want, rec.ID)
			}
		}
		assert.Equal(t, want, ids)
	})
}

// =============================================================================
// Test: GetTransferHistory
// =============================================================================

func testTransferHistory(t *testing.T, store Store) {
	ctx := context.Background()

	rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
	require.NoError(t, store.PutTransfer(ctx, rec))

	rec.Status = domain.TransferStatusEscrowed
	require.NoError(t, store.UpdateTransfer(ctx, rec, domain.TransferStatusPending))
	rec.Status = domain.TransferStatusSettling
	require.NoError(t, store.UpdateTransfer(ctx, rec, domain.TransferStatusEscrowed))
	rec.Status = domain.TransferStatusReclaimed
	require.NoError(t, store.UpdateTransfer(ctx, rec, domain.TransferStatusSettling))

	// a rejected update leaves no trace
	rec.Status = domain.TransferStatusCompleted
	assert.ErrorIs(t, store.UpdateTransfer(ctx, rec, domain.TransferStatusEscrowed), ErrStatusConflict)

	events, err := store.GetTransferHistory(ctx, rec.TransferID)
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Nil(t, events[0].FromStatus)
	assert.Equal(t, domain.TransferStatusPending, events[0].ToStatus)

	expected := [][2]domain.TransferStatus{
		{domain.TransferStatusPending, domain.TransferStatusEscrowed},
		{domain.TransferStatusEscrowed, domain.TransferStatusSettling},
		{domain.TransferStatusSettling, domain.TransferStatusReclaimed},
	}
	for i, pair := range expected {
		ev := events[i+1]
		require.NotNil(t, ev.FromStatus)
		assert.Equal(t, pair[0], *ev.FromStatus)
		assert.Equal(t, pair[1], ev.ToStatus)
		assert.Greater(t, ev.ID, events[i].ID)
	}

	for _, ev := range events {
		assert.Equal(t, rec.TransferID, ev.TransferID)
		require.NotNil(t, ev.Snapshot)
		assert.Empty(t, ev.Snapshot.EscrowSecret)
		assert.Equal(t, ev.ToStatus, ev.Snapshot.Status)
	}

	none, err := store.GetTransferHistory(ctx, ulid.Make().String())
	require.NoError(t, err)
	assert.Empty(t, none)
}

// testConcurrentClaim races many claims on one escrowed record; exactly one wins
func testConcurrentClaim(t *testing.T, store Store) {
	ctx := context.Background()

	rec := buildEscrowRecord(newTestAddress(), newTestAddress(), testNow())
	rec.Status = domain.TransferStatusEscrowed
	require.NoError(t, store.PutTransfer(ctx, rec))

	const workers = 10
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claim := rec.Clone()
			claim.Status = domain.TransferStatusSettling
			err := store.UpdateTransfer(ctx, claim, domain.TransferStatusEscrowed)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrStatusConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
}

// RunStoreTests runs the shared store behaviour tests against one backend
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"PutAndGetTransfer", testPutAndGetTransfer},
		{"UpdateTransfer", testUpdateTransfer},
		{"ListTransfers", testListTransfers},
		{"ListPagination", testListPagination},
		{"TransferHistory", testTransferHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
