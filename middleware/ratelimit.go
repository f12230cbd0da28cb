package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reviewservice/cache"
	"reviewservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit limits each client IP to maxRequests per window using Redis.
// It passes everything through when the cache is disabled or maxRequests <= 0.
func RateLimit(store *cache.Cache, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.Enabled() || maxRequests <= 0 {
			c.Next()
			return
		}

		allowed, remaining, err := store.CheckRateLimit(c.Request.Context(), c.ClientIP(), maxRequests, window)
		if err != nil {
			// Fail open on Redis errors.
			utils.Log.WithFields(logrus.Fields{
				"error": err.Error(),
				"ip":    c.ClientIP(),
			}).Warn("Rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Window", window.String())

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Retry after %v", window),
			})
			return
		}

		c.Next()
	}
}
