package pairs

import (
	"context"
	"fmt"
	"strings"

	"pairs-ledger/internal/models"

	"go.uber.org/zap"
)

// CompanyService manages the companies that own pairs.
type CompanyService struct {
	log       *zap.Logger
	companies CompanyStore
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(log *zap.Logger, companies CompanyStore) *CompanyService {
	return &CompanyService{log: log.Named("companies"), companies: companies}
}

// Create stores a company. Names must be non-blank and unique.
func (s *CompanyService) Create(ctx context.Context, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("company name is required")
	}

	existing, err := s.companies.FindByName(ctx, name)
	if err != nil {
		s.log.Error("Failed to look up company", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to create company", ErrServiceUnavailable)
	}
	if existing != nil {
		return nil, invalidArgument("company %q already exists", name)
	}

	company := &models.Company{Name: name}
	if err := s.companies.Create(ctx, company); err != nil {
		s.log.Error("Failed to create company", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to create company", ErrServiceUnavailable)
	}
	return company, nil
}

// Get returns a company by path id.
func (s *CompanyService) Get(ctx context.Context, rawID string) (*models.Company, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get company", zap.Uint("company_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to get company", ErrServiceUnavailable)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %d", ErrNotFound, id)
	}
	return company, nil
}

// List returns every company.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	companies, err := s.companies.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list companies", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to list companies", ErrServiceUnavailable)
	}
	return companies, nil
}
