package ws

import (
	"net/http"

	"codeleague/internal/logger"
	"codeleague/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades an authenticated request (token query parameter) and subscribes
// the connection to hub events. An empty or "*" allowedOrigin accepts any origin.
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "user_id", userID, "error", err)
			return
		}

		client := NewClient(userID, conn, hub)
		go client.Run()
	}
}
