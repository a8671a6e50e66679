package api

import (
	"context"
	"errors"
	"net/http"

	"pairs-ledger/internal/models"
	"pairs-ledger/internal/pairs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PairService is the pair record service as seen by the HTTP layer.
type PairService interface {
	Get(ctx context.Context, id string) (*models.Pair, error)
	List(ctx context.Context) ([]models.Pair, error)
	Create(ctx context.Context, in pairs.PairInput) (*models.Pair, error)
	Update(ctx context.Context, id string, in pairs.PairInput) (*models.Pair, error)
	Delete(ctx context.Context, id string) error
	SetSettled(ctx context.Context, id string, settled bool) (*models.Pair, error)
	RefreshPrices(ctx context.Context, id string) (*models.Pair, error)
	DuplicatePairs(ctx context.Context) (*pairs.DuplicateReport, error)
	RecalculateAll(ctx context.Context) (pairs.BatchResult, error)
}

// CompanyService manages companies.
type CompanyService interface {
	Create(ctx context.Context, name string) (*models.Company, error)
	Get(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log       *zap.Logger
	pairs     PairService
	companies CompanyService
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, pairs PairService, companies CompanyService) *APIHandler {
	return &APIHandler{log: log, pairs: pairs, companies: companies}
}

// errorResponse writes {"error": ...}. Invalid-argument messages are shown to
// the caller; anything unexpected gets the generic message.
func (h *APIHandler) errorResponse(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, pairs.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pairs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		if !errors.Is(err, pairs.ErrServiceUnavailable) {
			h.log.Error("Unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}

func (h *APIHandler) bindPairInput(c *gin.Context) (pairs.PairInput, bool) {
	var in pairs.PairInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return in, false
	}
	return in, true
}

// GetPair returns a pair with its company.
func (h *APIHandler) GetPair(c *gin.Context) {
	pair, err := h.pairs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errorResponse(c, err, "failed to get pair")
		return
	}
	c.JSON(http.StatusOK, pair)
}

// ListPairs returns all pairs.
func (h *APIHandler) ListPairs(c *gin.Context) {
	list, err := h.pairs.List(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err, "failed to list pairs")
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreatePair stores a new pair.
func (h *APIHandler) CreatePair(c *gin.Context) {
	in, ok := h.bindPairInput(c)
	if !ok {
		return
	}
	pair, err := h.pairs.Create(c.Request.Context(), in)
	if err != nil {
		h.errorResponse(c, err, "failed to create pair")
		return
	}
	c.JSON(http.StatusCreated, pair)
}

// UpdatePair replaces a pair's fields.
func (h *APIHandler) UpdatePair(c *gin.Context) {
	in, ok := h.bindPairInput(c)
	if !ok {
		return
	}
	pair, err := h.pairs.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.errorResponse(c, err, "failed to update pair")
		return
	}
	c.JSON(http.StatusOK, pair)
}

// DeletePair hard-deletes a pair.
func (h *APIHandler) DeletePair(c *gin.Context) {
	if err := h.pairs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.errorResponse(c, err, "failed to delete pair")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type settledRequest struct {
	IsSettled *bool `json:"isSettled"`
}

// SetSettled flips a pair's settlement flag.
func (h *APIHandler) SetSettled(c *gin.Context) {
	var req settledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsSettled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isSettled is required"})
		return
	}
	pair, err := h.pairs.SetSettled(c.Request.Context(), c.Param("id"), *req.IsSettled)
	if err != nil {
		h.errorResponse(c, err, "failed to update settlement")
		return
	}
	c.JSON(http.StatusOK, pair)
}

// RefreshPrices pulls the latest quotes for a pair's legs.
func (h *APIHandler) RefreshPrices(c *gin.Context) {
	pair, err := h.pairs.RefreshPrices(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errorResponse(c, err, "failed to refresh prices")
		return
	}
	c.JSON(http.StatusOK, pair)
}

// DuplicatePairs returns the duplicate groups, unique pairs and overall total.
func (h *APIHandler) DuplicatePairs(c *gin.Context) {
	report, err := h.pairs.DuplicatePairs(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err, "failed to get duplicate pairs")
		return
	}
	c.JSON(http.StatusOK, report)
}

// CalculateProfitLoss recalculates and saves profit/loss for every pair.
func (h *APIHandler) CalculateProfitLoss(c *gin.Context) {
	result, err := h.pairs.RecalculateAll(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err, "failed to calculate profit/loss")
		return
	}
	c.JSON(http.StatusOK, result)
}

type companyRequest struct {
	Name string `json:"name"`
}

// CreateCompany stores a new company.
func (h *APIHandler) CreateCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	company, err := h.companies.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.errorResponse(c, err, "failed to create company")
		return
	}
	c.JSON(http.StatusCreated, company)
}

// GetCompany returns one company.
func (h *APIHandler) GetCompany(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errorResponse(c, err, "failed to get company")
		return
	}
	c.JSON(http.StatusOK, company)
}

// ListCompanies returns all companies.
func (h *APIHandler) ListCompanies(c *gin.Context) {
	list, err := h.companies.List(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err, "failed to list companies")
		return
	}
	c.JSON(http.StatusOK, list)
}
