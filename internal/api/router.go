package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter registers every endpoint on a new gin engine. The price refresh
// route exists only when a quote source is configured.
func NewRouter(log *zap.Logger, h *APIHandler, refreshEnabled bool) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(log), recovery(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	{
		api.GET("/pairs", h.ListPairs)
		api.POST("/pairs", h.CreatePair)
		api.GET("/pairs/:id", h.GetPair)
		api.PUT("/pairs/:id", h.UpdatePair)
		api.DELETE("/pairs/:id", h.DeletePair)
		api.PUT("/pairs/:id/settled", h.SetSettled)
		if refreshEnabled {
			api.POST("/pairs/:id/refresh-prices", h.RefreshPrices)
		}

		api.GET("/duplicate-pairs", h.DuplicatePairs)
		api.POST("/calculate-profit-loss", h.CalculateProfitLoss)

		api.GET("/companies", h.ListCompanies)
		api.POST("/companies", h.CreateCompany)
		api.GET("/companies/:id", h.GetCompany)
	}

	return r
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("Request failed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request served", fields...)
		}
	}
}

// recovery turns a handler panic into a generic 500.
func recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		log.Error("Handler panicked", zap.Any("panic", err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}
