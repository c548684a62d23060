package escrow

import (
	"context"
	"time"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/messaging"
	"github.com/safient/safient-escrow/internal/metrics"
	"github.com/safient/safient-escrow/internal/providers/algorand"
	"github.com/safient/safient-escrow/internal/store"
)

const (
	OPERATION_CREATE  = "create"
	OPERATION_RECLAIM = "reclaim"
	OPERATION_RELEASE = "release"

	DEFAULT_SETTLING_TIMEOUT = 10 * time.Minute
)

// Config holds the escrow parameters
type Config struct {
	// MinimumBalance is the ledger minimum an account must keep (microAlgos)
	MinimumBalance uint64
	// FeeFloor is the lowest fee assumed when reserving for the settlement payment
	FeeFloor             uint64
	MinDuration          time.Duration
	MaxDuration          time.Duration
	DefaultDurationHours float64
	// MaxTransferAmount caps the gross amount of one transfer. Zero disables the cap.
	MaxTransferAmount uint64
	// SweepLimit is the page size a sweep pass lists records with
	SweepLimit int
	// SettlingTimeout is how long a claim may sit in settling without a settlement hash
	// before a sweep hands the record back to escrowed
	SettlingTimeout time.Duration
	// StatusRetry bounds the retries of status writes that follow a broadcast
	StatusRetry RetryConfig
}

// DefaultConfig returns the production escrow parameters
func DefaultConfig() Config {
	return Config{
		MinimumBalance:       domain.MINIMUM_BALANCE_MICROALGOS,
		FeeFloor:             domain.FEE_FLOOR_MICROALGOS,
		MinDuration:          domain.MIN_ESCROW_DURATION,
		MaxDuration:          domain.MAX_ESCROW_DURATION,
		DefaultDurationHours: domain.DEFAULT_ESCROW_DURATION_HOURS,
		MaxTransferAmount:    domain.MAX_TRANSFER_AMOUNT,
		SweepLimit:           store.MAX_LIST_LIMIT,
		SettlingTimeout:      DEFAULT_SETTLING_TIMEOUT,
		StatusRetry:          DefaultRetryConfig(),
	}
}

// CreateTransferInput is a request to move funds from the sender
type CreateTransferInput struct {
	SenderSecret string
	Recipient    domain.Address
	Amount       uint64
	Purpose      domain.TransferPurpose
	// DurationHours is the protection window of escrow transfers. Zero uses the default.
	DurationHours float64
}

// SettlementResult is returned by a successful reclaim or release
type SettlementResult struct {
	TransferID      string
	Status          domain.TransferStatus
	TransactionHash string
	// Amount is the payout sent to the sender or recipient
	Amount uint64
	Payout domain.Payout
	Record *domain.TransferRecord
}

// SweepResult holds the counters of one sweep pass.
// Recovered counts stale settlement claims handed back to escrowed.
type SweepResult struct {
	Checked   int      `json:"checked"`
	Expired   int      `json:"expired"`
	Released  int      `json:"released"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Recovered int      `json:"recovered"`
	Errors    []string `json:"errors"`
}

// Counts converts the result to metrics counters
func (r *SweepResult) Counts() metrics.SweepCounts {
	return metrics.SweepCounts{
		Checked:  r.Checked,
		Expired:  r.Expired,
		Released: r.Released,
		Failed:   r.Failed,
		Skipped:  r.Skipped,
	}
}

// Scheduler schedules the automatic release of an escrow at its expiry
//
//go:generate mockgen -source=engine.go -destination=../mocks/escrow.go -package=mocks -mock_names=Scheduler=MockScheduler,Engine=MockEngine
type Scheduler interface {
	// ScheduleRelease arranges for Release(transferID, true) to run at expiresAt
	ScheduleRelease(ctx context.Context, transferID string, expiresAt time.Time) error
	// CancelRelease drops a scheduled release. Missing schedules are not an error.
	CancelRelease(ctx context.Context, transferID string) error
}

// Engine creates transfers and settles escrows.
// All errors returned are *domain.Error.
type Engine interface {
	// CreateTransfer validates the input, funds the escrow (or the recipient) and persists the record
	CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.TransferRecord, error)

	// Reclaim returns escrowed funds to the sender before the protection window ends
	Reclaim(ctx context.Context, transferID string, senderSecret string) (*SettlementResult, error)

	// Release pays escrowed funds to the recipient once the protection window is over
	Release(ctx context.Context, transferID string, auto bool) (*SettlementResult, error)

	// Sweep releases every expired escrow and recovers stale settlement claims.
	// It pages through the whole store; only a failure to list the first page is returned as an error.
	Sweep(ctx context.Context) (*SweepResult, error)
}

type engine struct {
	cfg       Config
	ledger    algorand.Client
	store     store.Store
	secrets   SecretBox
	publisher messaging.Publisher
	scheduler Scheduler
	metrics   metrics.Recorder
	clock     adapter.Clock
}

// Option customizes the engine
type Option func(*engine)

// WithPublisher sets the event publisher
func WithPublisher(p messaging.Publisher) Option {
	return func(e *engine) { e.publisher = p }
}

// WithScheduler sets the release scheduler
func WithScheduler(s Scheduler) Option {
	return func(e *engine) { e.scheduler = s }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m metrics.Recorder) Option {
	return func(e *engine) { e.metrics = m }
}

// NewEngine creates the escrow engine
func NewEngine(cfg Config, ledger algorand.Client, st store.Store, secrets SecretBox, clock adapter.Clock, opts ...Option) Engine {
	e := &engine{
		cfg:       cfg,
		ledger:    ledger,
		store:     st,
		secrets:   secrets,
		publisher: messaging.NewNoopPublisher(),
		metrics:   metrics.NewNoop(),
		clock:     clock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
