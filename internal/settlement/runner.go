// Package settlement runs the periodic profit/loss recalculation job.
package settlement

import (
	"context"
	"time"

	"pairs-ledger/internal/pairs"

	"go.uber.org/zap"
)

// Job is the part of the pair service the runner drives.
type Job interface {
	RefreshAllPrices(ctx context.Context) (pairs.BatchResult, error)
	RecalculateAll(ctx context.Context) (pairs.BatchResult, error)
}

// Runner recalculates profit/loss on a fixed interval, optionally refreshing
// quotes first.
type Runner struct {
	logger        *zap.Logger
	job           Job
	interval      time.Duration
	refreshQuotes bool
}

// NewRunner creates a new Runner.
func NewRunner(logger *zap.Logger, job Job, interval time.Duration, refreshQuotes bool) *Runner {
	return &Runner{
		logger:        logger.Named("settlement"),
		job:           job,
		interval:      interval,
		refreshQuotes: refreshQuotes,
	}
}

// Run performs one cycle immediately, then one per interval until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Starting recalculation loop",
		zap.Duration("interval", r.interval),
		zap.Bool("refresh_quotes", r.refreshQuotes))

	r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopping recalculation loop...")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single refresh-and-recalculate cycle and returns the
// recalculation counts. Failures are logged, not returned.
func (r *Runner) RunOnce(ctx context.Context) pairs.BatchResult {
	if r.refreshQuotes {
		refreshed, err := r.job.RefreshAllPrices(ctx)
		if err != nil {
			r.logger.Error("Quote refresh failed", zap.Error(err))
		} else if refreshed.ErrorCount > 0 {
			r.logger.Warn("Some quotes could not be refreshed",
				zap.Int("error_count", refreshed.ErrorCount),
				zap.Int("total_processed", refreshed.TotalProcessed))
		}
	}

	result, err := r.job.RecalculateAll(ctx)
	if err != nil {
		r.logger.Error("Recalculation failed", zap.Error(err))
		return result
	}
	r.logger.Info("Recalculation cycle complete",
		zap.Int("total_processed", result.TotalProcessed),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", result.ErrorCount))
	return result
}
