package pairs

import (
	"context"

	"pairs-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// StockCodes is the ordered grouping key of a pair.
type StockCodes struct {
	BuyStockCode  string `json:"buyStockCode"`
	SellStockCode string `json:"sellStockCode"`
}

// DuplicateGroup is two or more pairs sharing the same StockCodes.
type DuplicateGroup struct {
	StockCodes      StockCodes      `json:"stockCodes"`
	Pairs           []models.Pair   `json:"pairs"`
	TotalProfitLoss decimal.Decimal `json:"totalProfitLoss"`
}

// DuplicateReport partitions stock-coded pairs into duplicate groups and
// unique pairs.
type DuplicateReport struct {
	DuplicatePairGroups []DuplicateGroup `json:"duplicatePairGroups"`
	UniquePairs         []models.Pair    `json:"uniquePairs"`
	TotalProfitLoss     decimal.Decimal  `json:"totalProfitLoss"`
}

// GroupDuplicates groups pairs by (buyStockCode, sellStockCode). The key is
// ordered: (A,B) and (B,A) are different groups. Pairs lacking either code
// are left out entirely. Groups and unique pairs keep the order in which
// their first member appears; a missing profit/loss counts as zero.
func GroupDuplicates(pairs []models.Pair) DuplicateReport {
	var keys []StockCodes
	grouped := make(map[StockCodes][]models.Pair)

	for _, p := range pairs {
		if !p.HasStockCodes() {
			continue
		}
		key := StockCodes{BuyStockCode: *p.BuyStockCode, SellStockCode: *p.SellStockCode}
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], p)
	}

	report := DuplicateReport{
		DuplicatePairGroups: make([]DuplicateGroup, 0),
		UniquePairs:         make([]models.Pair, 0),
		TotalProfitLoss:     decimal.Zero,
	}

	for _, key := range keys {
		members := grouped[key]
		if len(members) == 1 {
			report.UniquePairs = append(report.UniquePairs, members[0])
			report.TotalProfitLoss = report.TotalProfitLoss.Add(members[0].ProfitLossOrZero())
			continue
		}

		total := decimal.Zero
		for i := range members {
			total = total.Add(members[i].ProfitLossOrZero())
		}
		report.DuplicatePairGroups = append(report.DuplicatePairGroups, DuplicateGroup{
			StockCodes:      key,
			Pairs:           members,
			TotalProfitLoss: total,
		})
		report.TotalProfitLoss = report.TotalProfitLoss.Add(total)
	}

	return report
}

// DuplicatePairs reads the stock-coded pairs from the store and groups them.
func (s *Service) DuplicatePairs(ctx context.Context) (*DuplicateReport, error) {
	pairs, err := s.pairs.FindWithStockCodes(ctx)
	if err != nil {
		return nil, s.unavailable("list duplicate pairs", err)
	}
	report := GroupDuplicates(pairs)
	return &report, nil
}
