// Package pairs implements the pair record service: validation, settlement
// profit/loss, duplicate grouping and the bulk recalculation job.
package pairs

import (
	"context"
	"fmt"

	"pairs-ledger/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PairStore is the persistence the service needs. Finders return (nil, nil)
// when nothing matches.
type PairStore interface {
	FindByID(ctx context.Context, id uint) (*models.Pair, error)
	FindAll(ctx context.Context) ([]models.Pair, error)
	FindWithStockCodes(ctx context.Context) ([]models.Pair, error)
	ListIDs(ctx context.Context) ([]uint, error)
	Create(ctx context.Context, pair *models.Pair) error
	Update(ctx context.Context, pair *models.Pair) error
	UpdateProfitLoss(ctx context.Context, pair *models.Pair) error
	Delete(ctx context.Context, id uint) (bool, error)
}

// CompanyStore looks up and stores companies.
type CompanyStore interface {
	FindByID(ctx context.Context, id uint) (*models.Company, error)
	FindByName(ctx context.Context, name string) (*models.Company, error)
	FindAll(ctx context.Context) ([]models.Company, error)
	Create(ctx context.Context, company *models.Company) error
}

// QuoteSource returns the latest market price for a stock code.
type QuoteSource interface {
	GetPrice(ctx context.Context, stockCode string) (decimal.Decimal, error)
}

// Service is the pair record service.
type Service struct {
	log       *zap.Logger
	pairs     PairStore
	companies CompanyStore
	quotes    QuoteSource
}

// NewService creates a new Service. quotes may be nil, in which case price
// refreshing is unavailable.
func NewService(log *zap.Logger, pairs PairStore, companies CompanyStore, quotes QuoteSource) *Service {
	return &Service{
		log:       log.Named("pairs"),
		pairs:     pairs,
		companies: companies,
		quotes:    quotes,
	}
}

// unavailable logs the underlying cause and returns an opaque error.
func (s *Service) unavailable(op string, err error, fields ...zap.Field) error {
	s.log.Error("Failed to "+op, append(fields, zap.Error(err))...)
	return fmt.Errorf("%w: failed to %s", ErrServiceUnavailable, op)
}

// load fetches an existing pair or returns ErrNotFound.
func (s *Service) load(ctx context.Context, op string, id uint) (*models.Pair, error) {
	pair, err := s.pairs.FindByID(ctx, id)
	if err != nil {
		return nil, s.unavailable(op, err, zap.Uint("pair_id", id))
	}
	if pair == nil {
		return nil, fmt.Errorf("%w: pair %d", ErrNotFound, id)
	}
	return pair, nil
}

// Get returns the pair joined with its company.
func (s *Service) Get(ctx context.Context, rawID string) (*models.Pair, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, "get pair", id)
}

// List returns every pair with its company.
func (s *Service) List(ctx context.Context) ([]models.Pair, error) {
	pairs, err := s.pairs.FindAll(ctx)
	if err != nil {
		return nil, s.unavailable("list pairs", err)
	}
	return pairs, nil
}

// Create validates the input and stores a new pair for an existing company.
func (s *Service) Create(ctx context.Context, in PairInput) (*models.Pair, error) {
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}
	companyID, err := in.CompanyID.Int()
	if err != nil || companyID <= 0 {
		return nil, invalidArgument("companyId is required")
	}

	company, err := s.companies.FindByID(ctx, uint(companyID))
	if err != nil {
		return nil, s.unavailable("create pair", err, zap.Int64("company_id", companyID))
	}
	if company == nil {
		return nil, invalidArgument("company %d does not exist", companyID)
	}

	pair := &models.Pair{
		IsSettled: in.IsSettled,
		CompanyID: company.ID,
	}
	fields.applyTo(pair)
	pair.CurrentBuyPrice = fields.currentBuyPrice
	pair.CurrentSellPrice = fields.currentSellPrice
	applyProfitLoss(pair)

	if err := s.pairs.Create(ctx, pair); err != nil {
		return nil, s.unavailable("create pair", err, zap.String("name", pair.Name))
	}
	pair.Company = company

	s.log.Info("Pair created", zap.Uint("pair_id", pair.ID), zap.Uint("company_id", company.ID))
	return pair, nil
}

// Update replaces the pair's fields with the input. A missing pair is
// reported before the input is validated. Current prices missing
// from the input keep their stored values, and profit/loss is recomputed only
// when the stored pair is settled and both current prices are known.
func (s *Service) Update(ctx context.Context, rawID string, in PairInput) (*models.Pair, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, "update pair", id)
	if err != nil {
		return nil, err
	}
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}

	pair := *existing
	fields.applyTo(&pair)
	if fields.currentBuyPrice.Valid {
		pair.CurrentBuyPrice = fields.currentBuyPrice
	}
	if fields.currentSellPrice.Valid {
		pair.CurrentSellPrice = fields.currentSellPrice
	}
	recomputed := applyProfitLoss(&pair)

	if err := s.pairs.Update(ctx, &pair); err != nil {
		return nil, s.unavailable("update pair", err, zap.Uint("pair_id", id))
	}

	s.log.Info("Pair updated", zap.Uint("pair_id", id), zap.Bool("profit_loss_recomputed", recomputed))
	return &pair, nil
}

// Delete hard-deletes the pair.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}
	if _, err := s.load(ctx, "delete pair", id); err != nil {
		return err
	}

	deleted, err := s.pairs.Delete(ctx, id)
	if err != nil {
		return s.unavailable("delete pair", err, zap.Uint("pair_id", id))
	}
	if !deleted {
		return fmt.Errorf("%w: pair %d", ErrNotFound, id)
	}

	s.log.Info("Pair deleted", zap.Uint("pair_id", id))
	return nil
}

// SetSettled marks the pair settled or unsettled. Settling a pair with both
// current prices known computes its profit/loss; unsettling keeps the stored
// values.
func (s *Service) SetSettled(ctx context.Context, rawID string, settled bool) (*models.Pair, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	pair, err := s.load(ctx, "settle pair", id)
	if err != nil {
		return nil, err
	}

	pair.IsSettled = settled
	applyProfitLoss(pair)

	if err := s.pairs.Update(ctx, pair); err != nil {
		return nil, s.unavailable("settle pair", err, zap.Uint("pair_id", id))
	}
	return pair, nil
}

// RefreshPrices stores the latest quotes for both legs as the pair's current
// prices and recomputes profit/loss if the pair is settled.
func (s *Service) RefreshPrices(ctx context.Context, rawID string) (*models.Pair, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	if s.quotes == nil {
		return nil, fmt.Errorf("%w: no quote source configured", ErrServiceUnavailable)
	}
	pair, err := s.load(ctx, "refresh prices", id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Service) refresh(ctx context.Context, pair *models.Pair) error {
	if !pair.HasStockCodes() {
		return invalidArgument("pair %d needs both stock codes to refresh prices", pair.ID)
	}

	l := s.log.With(
		zap.Uint("pair_id", pair.ID),
		zap.String("buy_stock_code", *pair.BuyStockCode),
		zap.String("sell_stock_code", *pair.SellStockCode),
	)

	buy, err := s.quotes.GetPrice(ctx, *pair.BuyStockCode)
	if err != nil {
		l.Error("Failed to fetch buy leg quote", zap.Error(err))
		return fmt.Errorf("%w: failed to fetch quotes", ErrServiceUnavailable)
	}
	sell, err := s.quotes.GetPrice(ctx, *pair.SellStockCode)
	if err != nil {
		l.Error("Failed to fetch sell leg quote", zap.Error(err))
		return fmt.Errorf("%w: failed to fetch quotes", ErrServiceUnavailable)
	}

	pair.CurrentBuyPrice = decimal.NewNullDecimal(buy)
	pair.CurrentSellPrice = decimal.NewNullDecimal(sell)
	applyProfitLoss(pair)

	if err := s.pairs.Update(ctx, pair); err != nil {
		return s.unavailable("refresh prices", err, zap.Uint("pair_id", pair.ID))
	}
	l.Debug("Prices refreshed", zap.String("buy", buy.String()), zap.String("sell", sell.String()))
	return nil
}

func (f pairFields) applyTo(p *models.Pair) {
	p.Name = f.name
	p.Link = f.link
	p.AnalysisRecord = f.analysisRecord
	p.BuyShares = f.buyShares
	p.SellShares = f.sellShares
	p.BuyPrice = f.buyPrice
	p.SellPrice = f.sellPrice
	p.BuyStockCode = f.buyStockCode
	p.SellStockCode = f.sellStockCode
}
