package middleware

import (
	"net/http"
	"strings"

	"codeleague/internal/service"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key JWT stores the authenticated user id under.
const UserIDKey = "user_id"

// JWT authenticates the request from an "Authorization: Bearer" header. Websocket
// clients cannot set headers, so a token query parameter is accepted as well.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
