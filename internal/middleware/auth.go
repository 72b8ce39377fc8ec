package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"github.com/thikana-bd/app-thikana/internal/token"
	"go.uber.org/zap"
)

// ClaimsKey is the gin context key holding the validated token claims
const ClaimsKey = "claims"

// AuthMiddleware validates the Bearer token and stores its claims in
// the gin context
func AuthMiddleware(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			observability.Logger().Warn("token rejected", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the validated claims stored by AuthMiddleware
func GetClaims(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}

// RequireRole rejects requests whose token does not carry the role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if claims.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient privileges"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSelfOrAdmin lets a request through only when the token subject
// matches the :id path parameter or the token carries the admin role
func RequireSelfOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if claims.Subject != c.Param("id") && claims.Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed for this account"})
			c.Abort()
			return
		}
		c.Next()
	}
}
