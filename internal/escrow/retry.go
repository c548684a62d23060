package escrow

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/store"
)

// RetryConfig bounds the exponential backoff of status writes
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig returns 200ms initial, 5s max interval, 30s total
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  30 * time.Second,
	}
}

func (c RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.MaxElapsedTime = c.MaxElapsedTime
	return b
}

// writeStatus persists rec if the stored status is still expected.
// Transient store errors are retried; status conflicts and missing records are not.
// The write outlives cancellation of ctx because it records a broadcast that already happened.
func (e *engine) writeStatus(ctx context.Context, rec *domain.TransferRecord, expected domain.TransferStatus) error {
	ctx = context.WithoutCancel(ctx)
	rec.UpdatedAt = e.clock.Now()

	operation := func() error {
		err := e.store.UpdateTransfer(ctx, rec, expected)
		if errors.Is(err, store.ErrStatusConflict) || errors.Is(err, store.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.RetryNotify(
		operation,
		backoff.WithContext(e.cfg.StatusRetry.backOff(), ctx),
		func(err error, d time.Duration) {
			logger.WarnCtx(ctx, "Retrying transfer status write",
				zap.String("transfer_id", rec.TransferID),
				zap.String("status", string(rec.Status)),
				zap.Duration("retry_in", d),
				zap.Error(err))
		},
	)
}
