package repository

import (
	"context"
	"errors"
	"fmt"

	"pairs-ledger/internal/models"

	"gorm.io/gorm"
)

// CompanyRepository reads and writes companies.
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindByID returns the company, or (nil, nil) if it does not exist.
func (r *CompanyRepository) FindByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find company %d: %w", id, err)
	}
	return &company, nil
}

// FindByName returns the company with the exact name, or (nil, nil).
func (r *CompanyRepository) FindByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find company %q: %w", name, err)
	}
	return &company, nil
}

// FindAll returns every company ordered by name.
func (r *CompanyRepository) FindAll(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Order("name asc").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// Create inserts a new company.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}
