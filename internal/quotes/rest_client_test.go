package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pairs-ledger/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := &RestClient{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
		backoff: func(int) time.Duration { return time.Millisecond },
	}

	return rc, server
}

func TestGetPrice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quote", r.URL.Path)
			assert.Equal(t, "7203", r.URL.Query().Get("symbol"))
			assert.Equal(t, "test_api_key", r.Header.Get("X-API-KEY"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol": "7203", "price": "2850.5"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		price, err := rc.GetPrice(context.Background(), "7203")

		// Assert
		assert.NoError(t, err)
		assert.True(t, price.Equal(decimal.RequireFromString("2850.5")))
	})

	t.Run("NumericPrice", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol": "9984", "price": 1900}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		price, err := rc.GetPrice(context.Background(), "9984")
		assert.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(1900)))
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol": "7203", "price": "100"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		price, err := rc.GetPrice(context.Background(), "7203")
		assert.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.GetPrice(context.Background(), "7203")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get quote for 7203")
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&calls))
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "unknown symbol"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.GetPrice(context.Background(), "0000")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "request failed with status")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("BadPrice", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol": "7203", "price": "n/a"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.GetPrice(context.Background(), "7203")
		assert.Error(t, err)
	})
}

func TestNewRestClient(t *testing.T) {
	cfg := &config.Quotes{BaseURL: "http://quotes.local/", ApiKey: "k", RateLimit: 5, RateLimitBurst: 2, Timeout: 3}
	rc := NewRestClient(cfg, zap.NewNop())

	assert.NotNil(t, rc)
	assert.Equal(t, "k", rc.apiKey)
	assert.Equal(t, "http://quotes.local", rc.client.BaseURL)
	assert.Equal(t, 2, rc.limiter.Burst())
}
