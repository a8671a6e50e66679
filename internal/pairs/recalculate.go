package pairs

import (
	"context"

	"pairs-ledger/internal/models"

	"go.uber.org/zap"
)

// BatchResult counts the outcome of a best-effort job over all pairs.
// SuccessCount + ErrorCount always equals TotalProcessed.
type BatchResult struct {
	TotalProcessed int `json:"totalProcessed"`
	SuccessCount   int `json:"successCount"`
	ErrorCount     int `json:"errorCount"`
}

func (r *BatchResult) record(err error) {
	r.TotalProcessed++
	if err != nil {
		r.ErrorCount++
		return
	}
	r.SuccessCount++
}

// RecalculateAll recomputes and saves profit/loss for every settled pair with
// both current prices known. Each pair is reloaded and written on its own; a
// failure on one pair is counted and the rest still run. Only failing to list
// the pairs aborts the job.
func (s *Service) RecalculateAll(ctx context.Context) (BatchResult, error) {
	return s.eachPair(ctx, "recalculate profit/loss", s.recalculateOne)
}

// RefreshAllPrices refreshes quotes for every pair carrying both stock codes.
// Pairs without stock codes are skipped and not counted.
func (s *Service) RefreshAllPrices(ctx context.Context) (BatchResult, error) {
	if s.quotes == nil {
		return BatchResult{}, nil
	}
	return s.eachPair(ctx, "refresh prices", func(ctx context.Context, pair *models.Pair) (bool, error) {
		if !pair.HasStockCodes() {
			return false, nil
		}
		return true, s.refresh(ctx, pair)
	})
}

// eachPair runs fn once per stored pair. fn reports whether the pair counted
// towards the result.
func (s *Service) eachPair(ctx context.Context, op string, fn func(context.Context, *models.Pair) (bool, error)) (BatchResult, error) {
	var result BatchResult

	ids, err := s.pairs.ListIDs(ctx)
	if err != nil {
		return result, s.unavailable(op, err)
	}

	l := s.log.With(zap.String("job", op))
	l.Info("Starting batch", zap.Int("pairs", len(ids)))

	for _, id := range ids {
		if ctx.Err() != nil {
			l.Warn("Batch cancelled", zap.Error(ctx.Err()))
			break
		}

		pair, err := s.pairs.FindByID(ctx, id)
		if err != nil {
			l.Error("Failed to load pair", zap.Uint("pair_id", id), zap.Error(err))
			result.record(err)
			continue
		}
		if pair == nil {
			// Deleted since the ids were listed.
			continue
		}

		counted, err := fn(ctx, pair)
		if err != nil {
			l.Error("Failed to process pair", zap.Uint("pair_id", id), zap.Error(err))
		}
		if counted || err != nil {
			result.record(err)
		}
	}

	l.Info("Batch complete",
		zap.Int("total_processed", result.TotalProcessed),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", result.ErrorCount),
	)
	return result, nil
}

func (s *Service) recalculateOne(ctx context.Context, pair *models.Pair) (bool, error) {
	if !applyProfitLoss(pair) {
		return true, nil
	}
	return true, s.pairs.UpdateProfitLoss(ctx, pair)
}
