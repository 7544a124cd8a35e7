package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceAuth validates the shared service token presented by bot clients.
// Expected header: "Authorization: Token <value>".
func ServiceAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			// Refuse to run with auth unconfigured rather than default open.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "service auth is not configured",
			})
			return
		}

		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Token ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization token",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization token",
			})
			return
		}

		c.Next()
	}
}
