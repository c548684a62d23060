package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/metrics"
	"github.com/safient/safient-escrow/internal/store"
)

const (
	DEFAULT_SWEEP_INTERVAL    = time.Minute
	DEFAULT_SWEEP_BATCH_SIZE  = store.MAX_LIST_LIMIT
	DEFAULT_SWEEP_WORKER_SIZE = 4
)

// EscrowReleaseSweeperConfig holds configuration for the escrow release sweeper
type EscrowReleaseSweeperConfig struct {
	Interval       time.Duration // Time to sleep between sweep cycles
	BatchSize      int           // Escrowed records fetched per page
	WorkerPoolSize int           // Concurrent releases
}

func (c *EscrowReleaseSweeperConfig) withDefaults() *EscrowReleaseSweeperConfig {
	out := *c
	if out.Interval <= 0 {
		out.Interval = DEFAULT_SWEEP_INTERVAL
	}
	if out.BatchSize <= 0 {
		out.BatchSize = DEFAULT_SWEEP_BATCH_SIZE
	}
	if out.WorkerPoolSize <= 0 {
		out.WorkerPoolSize = DEFAULT_SWEEP_WORKER_SIZE
	}
	return &out
}

// escrowReleaseSweeper implements the Sweeper interface for releasing expired escrows
type escrowReleaseSweeper struct {
	config    *EscrowReleaseSweeperConfig
	store     store.Store
	engine    escrow.Engine
	clock     adapter.Clock
	metrics   metrics.Recorder
	pool      pond.Pool
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewEscrowReleaseSweeper creates a sweeper that auto-releases escrows whose protection window has ended
func NewEscrowReleaseSweeper(
	config *EscrowReleaseSweeperConfig,
	st store.Store,
	engine escrow.Engine,
	clock adapter.Clock,
	recorder metrics.Recorder,
) Sweeper {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &escrowReleaseSweeper{
		config:    config.withDefaults(),
		store:     st,
		engine:    engine,
		clock:     clock,
		metrics:   recorder,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *escrowReleaseSweeper) Name() string {
	return "escrow-release-sweeper"
}

// Start begins the sweeper's main loop
func (s *escrowReleaseSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting escrow release sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	s.pool = s.newPool(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Escrow release sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Escrow release sweeper stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

func (s *escrowReleaseSweeper) newPool(ctx context.Context) pond.Pool {
	return pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *escrowReleaseSweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *escrowReleaseSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping escrow release sweeper")

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Escrow release sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Escrow release sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle pages through every escrowed record, releases the eligible ones, then sleeps for the interval
func (s *escrowReleaseSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	var checked, expired int
	var released, failed, skipped atomic.Int32

	filter := store.ListTransfersFilter{
		Statuses: []domain.TransferStatus{domain.TransferStatusEscrowed},
		Limit:    s.config.BatchSize,
	}
	for page := 0; ; page++ {
		records, err := s.listEscrowedWithRetry(ctx, filter)
		if err != nil {
			if page == 0 {
				if !s.sleep(ctx, s.config.Interval) {
					return ctx.Err()
				}
				return fmt.Errorf("failed to list escrowed transfers: %w", err)
			}
			// releases already queued still finish; the next cycle starts from the newest record again
			logger.WarnCtx(ctx, "Sweep cycle stopped paging early", zap.Int("page", page), zap.Error(err))
			break
		}

		now := s.clock.Now()
		for _, rec := range records {
			checked++
			if !escrow.Eligible(rec, now) {
				continue
			}
			expired++

			transferID := rec.TransferID
			s.pool.Submit(func() {
				_, err := s.engine.Release(ctx, transferID, true)
				switch {
				case err == nil:
					released.Add(1)
				case domain.IsKind(err, domain.ErrorKindConflict):
					skipped.Add(1)
				default:
					failed.Add(1)
					logger.WarnCtx(ctx, "Failed to auto-release transfer",
						zap.String("transfer_id", transferID),
						zap.Error(err),
					)
				}
			})
		}

		if len(records) < filter.PageLimit() || ctx.Err() != nil {
			break
		}
		filter.After = store.CursorOf(records[len(records)-1])
	}

	// Wait for the batch, then recreate the pool for the next cycle
	s.pool.StopAndWait()
	s.pool = s.newPool(ctx)

	counts := metrics.SweepCounts{
		Checked:  checked,
		Expired:  expired,
		Released: int(released.Load()),
		Failed:   int(failed.Load()),
		Skipped:  int(skipped.Load()),
	}
	duration := s.clock.Since(startTime)
	s.metrics.SweepCompleted(metrics.SWEEP_SOURCE_SWEEPER, counts, duration)

	if expired > 0 {
		logger.InfoCtx(ctx, "Sweep cycle completed",
			zap.Duration("duration", duration),
			zap.Int("checked", counts.Checked),
			zap.Int("expired", counts.Expired),
			zap.Int("released", counts.Released),
			zap.Int("failed", counts.Failed),
			zap.Int("skipped", counts.Skipped),
		)
	} else {
		logger.DebugCtx(ctx, "Sweep cycle found no expired escrows", zap.Int("checked", checked))
	}

	if !s.sleep(ctx, s.config.Interval) {
		return ctx.Err()
	}

	return nil
}

// listEscrowedWithRetry lists one page of escrowed records with exponential backoff
func (s *escrowReleaseSweeper) listEscrowedWithRetry(ctx context.Context, filter store.ListTransfersFilter) ([]*domain.TransferRecord, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = s.config.Interval
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	var records []*domain.TransferRecord
	operation := func() error {
		var err error
		records, err = s.store.ListTransfers(ctx, filter)
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Listing escrowed transfers failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return nil, fmt.Errorf("failed after %d attempts: %w", attemptCount+1, err)
	}
	return records, nil
}

// sleep sleeps for the given duration but can be interrupted by context cancellation or Stop
// Returns true if sleep completed normally
func (s *escrowReleaseSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
