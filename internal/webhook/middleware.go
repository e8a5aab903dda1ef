package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const contextTenantKey = "webhookTenant"

// APIKeyAuthMiddleware validates the X-Webhook-API-Key header and sets the
// tenant context for downstream handlers.
func APIKeyAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Webhook-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := repo.GetByHash(c.Request.Context(), HashKey(apiKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(contextTenantKey, key.Tenant)
		c.Next()
	}
}

// tenantFromContext returns the tenant set by APIKeyAuthMiddleware.
func tenantFromContext(c *gin.Context) string {
	tenant, _ := c.Get(contextTenantKey)
	s, _ := tenant.(string)
	return s
}
