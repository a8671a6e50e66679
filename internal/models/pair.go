package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pair is a long (buy) leg and a short (sell) leg tracked together.
// The profit/loss fields stay null until a settlement computation runs.
// Money columns are text so sqlite keeps the exact decimal string.
type Pair struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"not null" json:"name"`
	Link           *string `json:"link"`
	AnalysisRecord *string `gorm:"type:text" json:"analysisRecord"`

	BuyShares  int64           `gorm:"not null" json:"buyShares"`
	SellShares int64           `gorm:"not null" json:"sellShares"`
	BuyPrice   decimal.Decimal `gorm:"type:text;not null" json:"buyPrice"`
	SellPrice  decimal.Decimal `gorm:"type:text;not null" json:"sellPrice"`

	BuyStockCode  *string `gorm:"index:idx_stock_codes" json:"buyStockCode"`
	SellStockCode *string `gorm:"index:idx_stock_codes" json:"sellStockCode"`

	CurrentBuyPrice  decimal.NullDecimal `gorm:"type:text" json:"currentBuyPrice"`
	CurrentSellPrice decimal.NullDecimal `gorm:"type:text" json:"currentSellPrice"`

	BuyProfitLoss  decimal.NullDecimal `gorm:"type:text" json:"buyProfitLoss"`
	SellProfitLoss decimal.NullDecimal `gorm:"type:text" json:"sellProfitLoss"`
	ProfitLoss     decimal.NullDecimal `gorm:"type:text" json:"profitLoss"`

	IsSettled bool `gorm:"not null;default:false" json:"isSettled"`

	CompanyID uint     `gorm:"not null;index" json:"companyId"`
	Company   *Company `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"company,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasStockCodes reports whether both legs carry a stock code.
func (p *Pair) HasStockCodes() bool {
	return p.BuyStockCode != nil && *p.BuyStockCode != "" &&
		p.SellStockCode != nil && *p.SellStockCode != ""
}

// ProfitLossOrZero returns the stored profit/loss, or zero when it was never computed.
func (p *Pair) ProfitLossOrZero() decimal.Decimal {
	if !p.ProfitLoss.Valid {
		return decimal.Zero
	}
	return p.ProfitLoss.Decimal
}
