package handlers

import (
	"context"
	"net/http"
	"time"

	"reviewservice/cache"
	"reviewservice/concurrent"
	"reviewservice/db"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves aggregate and health endpoints.
type StatsHandler struct {
	Store *db.Store
	Cache *cache.Cache
}

// GetReviewStats - GET /stats
func (h *StatsHandler) GetReviewStats(c *gin.Context) {
	start := time.Now()

	stats, err := concurrent.CalculateReviewStats(c.Request.Context(), h.Store.DB)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics":       stats,
		"calculation_time": time.Since(start).String(),
	})
}

// Health - GET /health
func (h *StatsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "up"
	status := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		database = "down"
		status = http.StatusServiceUnavailable
	}

	redisState := "disabled"
	if h.Cache.Enabled() {
		redisState = "down"
		if h.Cache.IsAvailable(ctx) {
			redisState = "up"
		}
	}

	c.JSON(status, gin.H{
		"database": database,
		"redis":    redisState,
	})
}
