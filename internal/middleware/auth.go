package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/config"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/service"
)

const (
	HeaderGatewayKey = "X-Gateway-Key"
	ContextCallerKey = "caller"
)

func AuthMiddleware(cfg *config.Config, cm *service.CallerManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			if cfg != nil && !cfg.Auth.RequireAPIKey {
				if caller := cm.DefaultCaller(); caller != nil {
					c.Set(ContextCallerKey, caller)
					c.Next()
					return
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		caller, ok := cm.GetByAPIKey(apiKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Set(ContextCallerKey, caller)
		c.Next()
	}
}

// RequireRole gates a route group on the external authorizer. Must run
// after AuthMiddleware.
func RequireRole(auth service.Authorizer, required model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerVal, exists := c.Get(ContextCallerKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		caller := callerVal.(*model.Caller)

		if !auth.IsAuthorized(caller, required) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "caller lacks required role",
				"role":  string(required),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
