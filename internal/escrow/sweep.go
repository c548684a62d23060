package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/store"
)

// Eligible reports whether rec should be auto-released at now
func Eligible(rec *domain.TransferRecord, now time.Time) bool {
	return rec.Status == domain.TransferStatusEscrowed &&
		!rec.AutoReleased &&
		rec.Timer != nil &&
		rec.Timer.Expired(now)
}

// StaleClaim reports whether rec is a settlement claim that never got as far as a signed payment
func StaleClaim(rec *domain.TransferRecord, now time.Time, timeout time.Duration) bool {
	return rec.Status == domain.TransferStatusSettling &&
		rec.ReleaseTransactionHash == "" &&
		rec.ReclaimTransactionHash == "" &&
		!now.Before(rec.UpdatedAt.Add(timeout))
}

func (e *engine) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{Errors: []string{}}
	filter := store.ListTransfersFilter{Limit: e.cfg.SweepLimit}

	for page := 0; ; page++ {
		records, err := e.store.ListTransfers(ctx, filter)
		if err != nil {
			if page == 0 {
				return nil, domain.NewExternalServiceError(err, "Failed to list transfers")
			}
			// keep what this pass already did; the next pass starts over
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to list transfers: %s", err.Error()))
			logger.WarnCtx(ctx, "Sweep stopped early", zap.Int("page", page), zap.Error(err))
			break
		}

		for _, rec := range records {
			e.sweepRecord(ctx, rec, result)
		}

		if len(records) < filter.PageLimit() || ctx.Err() != nil {
			break
		}
		filter.After = store.CursorOf(records[len(records)-1])
	}

	logger.InfoCtx(ctx, "Sweep completed",
		zap.Int("checked", result.Checked),
		zap.Int("expired", result.Expired),
		zap.Int("released", result.Released),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Int("recovered", result.Recovered))

	return result, nil
}

func (e *engine) sweepRecord(ctx context.Context, rec *domain.TransferRecord, result *SweepResult) {
	result.Checked++
	now := e.clock.Now()

	if StaleClaim(rec, now, e.cfg.SettlingTimeout) {
		if reverted := e.recoverClaim(ctx, rec); reverted != nil {
			result.Recovered++
			rec = reverted
		}
	}

	if rec.Status != domain.TransferStatusEscrowed || rec.Timer == nil {
		result.Skipped++
		return
	}
	if !rec.Timer.Expired(now) {
		return
	}

	result.Expired++
	_, err := e.Release(ctx, rec.TransferID, true)
	switch {
	case err == nil:
		result.Released++
	case domain.IsKind(err, domain.ErrorKindConflict):
		// settled by someone else since the listing
		result.Skipped++
	default:
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to release %s: %s", rec.TransferID, err.Error()))
		logger.WarnCtx(ctx, "Sweep failed to release transfer",
			zap.String("transfer_id", rec.TransferID),
			zap.Error(err))
	}
}

// recoverClaim hands a stale claim back to escrowed. Nothing was signed for it, so nothing can have been sent.
func (e *engine) recoverClaim(ctx context.Context, rec *domain.TransferRecord) *domain.TransferRecord {
	reverted := rec.Clone()
	reverted.Status = domain.TransferStatusEscrowed
	reverted.UpdatedAt = e.clock.Now()
	if err := e.store.UpdateTransfer(ctx, reverted, domain.TransferStatusSettling); err != nil {
		if !errors.Is(err, store.ErrStatusConflict) {
			logger.WarnCtx(ctx, "Failed to recover stale settlement claim",
				zap.String("transfer_id", rec.TransferID),
				zap.Error(err))
		}
		return nil
	}

	logger.WarnCtx(ctx, "Recovered stale settlement claim",
		zap.String("transfer_id", rec.TransferID),
		zap.Time("claimed_at", rec.UpdatedAt))
	return reverted
}
