// Package repository provides the gorm-backed stores for companies and pairs.
package repository

import (
	"context"
	"errors"
	"fmt"

	"pairs-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PairRepository reads and writes pairs.
// Lookups that match nothing return (nil, nil).
type PairRepository struct {
	db *gorm.DB
}

// NewPairRepository creates a new PairRepository.
func NewPairRepository(db *gorm.DB) *PairRepository {
	return &PairRepository{db: db}
}

// FindByID returns the pair with its owning company.
func (r *PairRepository) FindByID(ctx context.Context, id uint) (*models.Pair, error) {
	var pair models.Pair
	err := r.db.WithContext(ctx).Preload("Company").First(&pair, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pair %d: %w", id, err)
	}
	return &pair, nil
}

// FindAll returns every pair with its company, ordered by id.
func (r *PairRepository) FindAll(ctx context.Context) ([]models.Pair, error) {
	var pairs []models.Pair
	if err := r.db.WithContext(ctx).Preload("Company").Order("id asc").Find(&pairs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	return pairs, nil
}

// FindWithStockCodes returns the pairs whose buy and sell stock codes are both set.
func (r *PairRepository) FindWithStockCodes(ctx context.Context) ([]models.Pair, error) {
	var pairs []models.Pair
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("buy_stock_code IS NOT NULL AND buy_stock_code <> ''").
		Where("sell_stock_code IS NOT NULL AND sell_stock_code <> ''").
		Order("id asc").
		Find(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stock-coded pairs: %w", err)
	}
	return pairs, nil
}

// ListIDs returns the ids of all stored pairs in ascending order.
func (r *PairRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Pair{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list pair ids: %w", err)
	}
	return ids, nil
}

// Create inserts a new pair. The company association is never written through.
func (r *PairRepository) Create(ctx context.Context, pair *models.Pair) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(pair).Error; err != nil {
		return fmt.Errorf("failed to create pair: %w", err)
	}
	return nil
}

// Update replaces every column of an existing pair, zero values and nulls included.
// It never inserts: a pair deleted in the meantime stays deleted.
func (r *PairRepository) Update(ctx context.Context, pair *models.Pair) error {
	err := r.db.WithContext(ctx).
		Model(pair).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(pair).Error
	if err != nil {
		return fmt.Errorf("failed to update pair %d: %w", pair.ID, err)
	}
	return nil
}

// UpdateProfitLoss writes only the three derived profit/loss columns.
func (r *PairRepository) UpdateProfitLoss(ctx context.Context, pair *models.Pair) error {
	err := r.db.WithContext(ctx).
		Model(&models.Pair{ID: pair.ID}).
		Select("buy_profit_loss", "sell_profit_loss", "profit_loss").
		Updates(map[string]interface{}{
			"buy_profit_loss":  pair.BuyProfitLoss,
			"sell_profit_loss": pair.SellProfitLoss,
			"profit_loss":      pair.ProfitLoss,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update profit/loss of pair %d: %w", pair.ID, err)
	}
	return nil
}

// Delete hard-deletes the pair and reports whether a row was removed.
func (r *PairRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Pair{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete pair %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
