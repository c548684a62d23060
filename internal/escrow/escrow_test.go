package escrow_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/events"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/mocks"
	"github.com/safient/safient-escrow/internal/providers/algorand"
	"github.com/safient/safient-escrow/internal/store"
)

const (
	testSecretKey    = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	senderSecret     = "sender secret"
	otherSecret      = "other secret"
	startingBalance  = uint64(10_000_000)
	testConfirmRound = uint64(1000)
)

// fakeLedger is an in-memory ledger. Broadcast moves balances immediately.
type fakeLedger struct {
	mu       sync.Mutex
	fee      uint64
	balances map[domain.Address]uint64
	accounts map[string]domain.Address
	pending  map[string]*algorand.UnsignedTx
	sent     []*algorand.UnsignedTx
	keypairs int

	broadcastErr error
	confirmErr   error
	balanceErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		fee:      1000,
		balances: make(map[domain.Address]uint64),
		accounts: make(map[string]domain.Address),
		pending:  make(map[string]*algorand.UnsignedTx),
	}
}

func newAddress(t *testing.T) domain.Address {
	account := crypto.GenerateAccount()
	addr, err := domain.AddressFromBytes(account.Address[:])
	require.NoError(t, err)
	return addr
}

func (l *fakeLedger) addAccount(secret string, addr domain.Address, balance uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[secret] = addr
	l.balances[addr] = balance
}

func (l *fakeLedger) balance(addr domain.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

func (l *fakeLedger) setBalance(addr domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] = amount
}

func (l *fakeLedger) sentCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}

func (l *fakeLedger) lastSent() *algorand.UnsignedTx {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.sent) == 0 {
		return nil
	}
	return l.sent[len(l.sent)-1]
}

func (l *fakeLedger) GetBalance(_ context.Context, address domain.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balanceErr != nil {
		return 0, l.balanceErr
	}
	return l.balances[address], nil
}

func (l *fakeLedger) GetSuggestedFee(context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fee, nil
}

func (l *fakeLedger) BuildPayment(_ context.Context, from, to domain.Address, amount, fee uint64, note []byte) (*algorand.UnsignedTx, error) {
	return &algorand.UnsignedTx{From: from, To: to, Amount: amount, Fee: max(fee, 1000), Note: note}, nil
}

func (l *fakeLedger) Sign(tx *algorand.UnsignedTx, secret string) (*algorand.SignedTx, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.accounts[secret] != tx.From {
		return nil, algorand.ErrInvalidSecret
	}
	txID := fmt.Sprintf("TX%d", len(l.pending)+1)
	l.pending[txID] = tx
	return &algorand.SignedTx{TxID: txID}, nil
}

func (l *fakeLedger) Broadcast(_ context.Context, signed *algorand.SignedTx) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.broadcastErr != nil {
		return "", l.broadcastErr
	}

	tx := l.pending[signed.TxID]
	if l.balances[tx.From] < tx.Amount+tx.Fee {
		return "", fmt.Errorf("%w: overspend by %s", algorand.ErrNetwork, tx.From)
	}
	l.balances[tx.From] -= tx.Amount + tx.Fee
	l.balances[tx.To] += tx.Amount
	l.sent = append(l.sent, tx)
	return signed.TxID, nil
}

func (l *fakeLedger) WaitForConfirmation(_ context.Context, txID string) (*algorand.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.confirmErr != nil {
		return nil, l.confirmErr
	}
	return &algorand.Confirmation{TxID: txID, ConfirmedRound: testConfirmRound}, nil
}

func (l *fakeLedger) GenerateKeypair() (*domain.Keypair, error) {
	account := crypto.GenerateAccount()
	addr, err := domain.AddressFromBytes(account.Address[:])
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.keypairs++
	secret := fmt.Sprintf("escrow secret %d", l.keypairs)
	l.accounts[secret] = addr
	return &domain.Keypair{Address: addr, Secret: secret}, nil
}

func (l *fakeLedger) AccountFromSecret(secret string) (domain.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	addr, ok := l.accounts[secret]
	if !ok {
		return "", algorand.ErrInvalidSecret
	}
	return addr, nil
}

func (l *fakeLedger) IsValidAddress(s string) bool {
	return domain.Address(s).Valid()
}

// flakyStore fails UpdateTransfer writes to a given status a number of times
type flakyStore struct {
	store.Store
	mu       sync.Mutex
	status   domain.TransferStatus
	failures int
	calls    int
}

func (s *flakyStore) UpdateTransfer(ctx context.Context, rec *domain.TransferRecord, expected domain.TransferStatus) error {
	s.mu.Lock()
	if rec.Status == s.status {
		s.calls++
		if s.failures > 0 {
			s.failures--
			s.mu.Unlock()
			return errors.New("connection reset")
		}
	}
	s.mu.Unlock()
	return s.Store.UpdateTransfer(ctx, rec, expected)
}

type testEngineMocks struct {
	ctrl      *gomock.Controller
	engine    escrow.Engine
	ledger    *fakeLedger
	store     store.Store
	clock     *mocks.MockClock
	publisher *mocks.MockPublisher
	scheduler *mocks.MockScheduler
	metrics   *mocks.MockRecorder

	sender    domain.Address
	recipient domain.Address

	mu        sync.Mutex
	now       time.Time
	published []events.TransferEvent
}

type testEngineOption func(*escrow.Config, *testEngineMocks)

func withStore(s store.Store) testEngineOption {
	return func(_ *escrow.Config, m *testEngineMocks) { m.store = s }
}

func setupTestEngine(t *testing.T, opts ...testEngineOption) *testEngineMocks {
	_ = logger.Initialize(logger.Config{Debug: true})

	ctrl := gomock.NewController(t)
	m := &testEngineMocks{
		ctrl:      ctrl,
		ledger:    newFakeLedger(),
		store:     store.NewMemoryStore(),
		clock:     mocks.NewMockClock(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		scheduler: mocks.NewMockScheduler(ctrl),
		metrics:   mocks.NewMockRecorder(ctrl),
		now:       time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	m.sender = newAddress(t)
	m.recipient = newAddress(t)
	m.ledger.addAccount(senderSecret, m.sender, startingBalance)
	m.ledger.addAccount(otherSecret, newAddress(t), startingBalance)

	cfg := escrow.DefaultConfig()
	cfg.StatusRetry = escrow.RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}
	for _, opt := range opts {
		opt(&cfg, m)
	}

	m.clock.EXPECT().Now().DoAndReturn(func() time.Time {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.now
	}).AnyTimes()
	m.publisher.EXPECT().PublishTransferEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event events.TransferEvent) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.published = append(m.published, event)
			return nil
		}).AnyTimes()
	m.metrics.EXPECT().TransferCreated(gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().TransferFailed(gomock.Any()).AnyTimes()
	m.metrics.EXPECT().TransferSettled(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().SettlementRejected(gomock.Any(), gomock.Any()).AnyTimes()

	secrets, err := escrow.NewSecretBox(testSecretKey, false, adapter.NewBase64())
	require.NoError(t, err)

	m.engine = escrow.NewEngine(cfg, m.ledger, m.store, secrets, m.clock,
		escrow.WithPublisher(m.publisher),
		escrow.WithScheduler(m.scheduler),
		escrow.WithMetrics(m.metrics),
	)
	return m
}

func (m *testEngineMocks) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *testEngineMocks) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.published))
	for _, e := range m.published {
		types = append(types, e.EventType)
	}
	return types
}

// createEscrow funds a 1 ALGO escrow with a 30 minute window
func (m *testEngineMocks) createEscrow(t *testing.T) *domain.TransferRecord {
	m.scheduler.EXPECT().ScheduleRelease(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	rec, err := m.engine.CreateTransfer(context.Background(), escrow.CreateTransferInput{
		SenderSecret:  senderSecret,
		Recipient:     m.recipient,
		Amount:        1_000_000,
		Purpose:       domain.TransferPurposeEscrow,
		DurationHours: 0.5,
	})
	require.NoError(t, err)
	return rec
}

func (m *testEngineMocks) stored(t *testing.T, transferID string) *domain.TransferRecord {
	rec, err := m.store.GetTransferByTransferID(context.Background(), transferID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}
