package pairs

import (
	"pairs-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// ProfitLoss is the result of settling both legs of a pair.
type ProfitLoss struct {
	Buy   decimal.Decimal
	Sell  decimal.Decimal
	Total decimal.Decimal
}

// CalculateProfitLoss computes realized profit/loss for a pair.
// The long leg gains when the price rises, the short leg when it falls.
func CalculateProfitLoss(buyPrice, currentBuyPrice decimal.Decimal, buyShares int64,
	sellPrice, currentSellPrice decimal.Decimal, sellShares int64) ProfitLoss {
	buy := currentBuyPrice.Sub(buyPrice).Mul(decimal.NewFromInt(buyShares))
	sell := sellPrice.Sub(currentSellPrice).Mul(decimal.NewFromInt(sellShares))
	return ProfitLoss{Buy: buy, Sell: sell, Total: buy.Add(sell)}
}

// canSettle reports whether profit/loss is computable for the pair.
func canSettle(p *models.Pair) bool {
	return p.IsSettled && p.CurrentBuyPrice.Valid && p.CurrentSellPrice.Valid
}

// applyProfitLoss recomputes the derived fields when the pair is settled and
// both current prices are known. Otherwise the stored values are left as they
// are and false is returned.
func applyProfitLoss(p *models.Pair) bool {
	if !canSettle(p) {
		return false
	}
	pl := CalculateProfitLoss(
		p.BuyPrice, p.CurrentBuyPrice.Decimal, p.BuyShares,
		p.SellPrice, p.CurrentSellPrice.Decimal, p.SellShares,
	)
	p.BuyProfitLoss = decimal.NewNullDecimal(pl.Buy)
	p.SellProfitLoss = decimal.NewNullDecimal(pl.Sell)
	p.ProfitLoss = decimal.NewNullDecimal(pl.Total)
	return true
}
