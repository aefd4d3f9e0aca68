package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kese-app/goldday/internal/auth"
)

const (
	// addressKey is the context key for the authenticated wallet address.
	addressKey = "address"
	// nicknameKey is the context key for the session nickname.
	nicknameKey = "nickname"
)

// GetAddress extracts the authenticated wallet address from the context.
// Returns empty string if the request is unauthenticated.
func GetAddress(c *gin.Context) string {
	address, _ := c.Value(addressKey).(string)
	return address
}

// GetNickname extracts the session nickname from the context.
func GetNickname(c *gin.Context) string {
	nickname, _ := c.Value(nicknameKey).(string)
	return nickname
}

// RequireAuth validates the bearer token and stores the wallet address and
// nickname on the request context.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(addressKey, claims.Address)
		c.Set(nicknameKey, claims.Nickname)
		c.Next()
	}
}
