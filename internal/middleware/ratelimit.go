package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/service"
)

func RateLimitMiddleware(cm *service.CallerManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Must run after AuthMiddleware.
		callerVal, exists := c.Get(ContextCallerKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		caller := callerVal.(*model.Caller)

		limiter := cm.LimiterFor(caller.ID)
		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
