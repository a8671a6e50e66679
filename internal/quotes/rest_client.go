package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pairs-ledger/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRetries = 3

// RestClient fetches stock quotes from an HTTP quote source.
type RestClient struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff func(attempt int) time.Duration
}

// NewRestClient creates a new quote client for the configured source.
func NewRestClient(cfg *config.Quotes, logger *zap.Logger) *RestClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	logger.Info("Using quote source", zap.String("base_url", cfg.BaseURL))

	return &RestClient{
		client:  client,
		apiKey:  cfg.ApiKey,
		logger:  logger.Named("quotes"),
		limiter: limiter,
		backoff: exponentialBackoff,
	}
}

// Exponential backoff: 1s, 2s, 4s
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// Quote is the quote source's response for one stock code.
type Quote struct {
	Symbol string      `json:"symbol"`
	Price  json.Number `json:"price"`
}

// GetPrice returns the latest price for a stock code.
func (c *RestClient) GetPrice(ctx context.Context, stockCode string) (decimal.Decimal, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", stockCode).
		SetHeader("Accept", "application/json").
		SetResult(&Quote{})
	if c.apiKey != "" {
		req.SetHeader("X-API-KEY", c.apiKey)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/quote", req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get quote for %s: %w", stockCode, err)
	}

	quote := resp.Result().(*Quote)
	price, err := decimal.NewFromString(quote.Price.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q for %s: %w", quote.Price, stockCode, err)
	}
	return price, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
			if !shouldRetry {
				return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
			}
			err = fmt.Errorf("status %d", statusCode)
		} else if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if i == maxRetries-1 {
			break
		}
		if retryAfter == 0 {
			retryAfter = c.backoff(i)
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
