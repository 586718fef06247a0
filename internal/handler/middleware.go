package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceKeyHeader carries the operator key guarding forced refreshes.
const ServiceKeyHeader = "X-API-Key"

// APIKeyAuth guards routes that spend the server's OpenAI quota. An empty key
// disables the check.
func APIKeyAuth(key string) gin.HandlerFunc {
	if key == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		provided := strings.TrimSpace(c.GetHeader(ServiceKeyHeader))
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + ServiceKeyHeader + " header"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}
