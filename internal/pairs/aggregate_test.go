package pairs

import (
	"testing"

	"pairs-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codedPair(id uint, buy, sell string, profitLoss string) models.Pair {
	p := models.Pair{ID: id, Name: "pair"}
	if buy != "" {
		p.BuyStockCode = &buy
	}
	if sell != "" {
		p.SellStockCode = &sell
	}
	if profitLoss != "" {
		p.ProfitLoss = decimal.NewNullDecimal(d(profitLoss))
	}
	return p
}

func TestGroupDuplicates_Example(t *testing.T) {
	report := GroupDuplicates([]models.Pair{
		codedPair(1, "7203", "9984", "20000"),
		codedPair(2, "7203", "9984", "-5000"),
		codedPair(3, "7203", "1111", "300"),
	})

	require.Len(t, report.DuplicatePairGroups, 1)
	group := report.DuplicatePairGroups[0]
	assert.Equal(t, StockCodes{BuyStockCode: "7203", SellStockCode: "9984"}, group.StockCodes)
	assert.Len(t, group.Pairs, 2)
	assert.True(t, group.TotalProfitLoss.Equal(d("15000")))

	require.Len(t, report.UniquePairs, 1)
	assert.Equal(t, uint(3), report.UniquePairs[0].ID)
	assert.True(t, report.TotalProfitLoss.Equal(d("15300")))
}

func TestGroupDuplicates_OrderSensitive(t *testing.T) {
	report := GroupDuplicates([]models.Pair{
		codedPair(1, "X", "Y", "1"),
		codedPair(2, "Y", "X", "2"),
	})

	assert.Empty(t, report.DuplicatePairGroups)
	assert.Len(t, report.UniquePairs, 2)
}

func TestGroupDuplicates_MissingProfitLossCountsAsZero(t *testing.T) {
	report := GroupDuplicates([]models.Pair{
		codedPair(1, "A", "B", ""),
		codedPair(2, "A", "B", "250"),
		codedPair(3, "C", "D", ""),
	})

	require.Len(t, report.DuplicatePairGroups, 1)
	assert.True(t, report.DuplicatePairGroups[0].TotalProfitLoss.Equal(d("250")))
	assert.True(t, report.TotalProfitLoss.Equal(d("250")))
}

func TestGroupDuplicates_ExcludesPairsWithoutBothCodes(t *testing.T) {
	report := GroupDuplicates([]models.Pair{
		codedPair(1, "A", "", "100"),
		codedPair(2, "", "B", "100"),
		codedPair(3, "", "", "100"),
	})

	assert.NotNil(t, report.DuplicatePairGroups)
	assert.NotNil(t, report.UniquePairs)
	assert.Empty(t, report.DuplicatePairGroups)
	assert.Empty(t, report.UniquePairs)
	assert.True(t, report.TotalProfitLoss.IsZero())
}

func TestGroupDuplicates_TotalsAddUp(t *testing.T) {
	pairs := []models.Pair{
		codedPair(1, "A", "B", "10.5"),
		codedPair(2, "C", "D", "-3"),
		codedPair(3, "A", "B", "4"),
		codedPair(4, "C", "D", ""),
		codedPair(5, "E", "F", "7.25"),
		codedPair(6, "A", "B", "-1"),
	}
	report := GroupDuplicates(pairs)

	sum := decimal.Zero
	for _, g := range report.DuplicatePairGroups {
		memberSum := decimal.Zero
		for i := range g.Pairs {
			memberSum = memberSum.Add(g.Pairs[i].ProfitLossOrZero())
		}
		assert.True(t, memberSum.Equal(g.TotalProfitLoss))
		sum = sum.Add(g.TotalProfitLoss)
	}
	for i := range report.UniquePairs {
		sum = sum.Add(report.UniquePairs[i].ProfitLossOrZero())
	}
	assert.True(t, sum.Equal(report.TotalProfitLoss))
	assert.True(t, report.TotalProfitLoss.Equal(d("17.75")))

	// Groups keep first-appearance order.
	require.Len(t, report.DuplicatePairGroups, 2)
	assert.Equal(t, "A", report.DuplicatePairGroups[0].StockCodes.BuyStockCode)
	assert.Equal(t, "C", report.DuplicatePairGroups[1].StockCodes.BuyStockCode)
}
