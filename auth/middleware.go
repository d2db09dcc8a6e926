package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/resumatch/backend/models"
)

// AuthClaimsKey is the key used to store JWT claims in gin context
const AuthClaimsKey = "auth_claims"

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Authorization header required",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		// Check Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Invalid authorization header format",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Invalid or expired token",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims retrieves auth claims from gin context
func GetAuthClaims(c *gin.Context) *Claims {
	claims, exists := c.Get(AuthClaimsKey)
	if !exists {
		return nil
	}
	return claims.(*Claims)
}
