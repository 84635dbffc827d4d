package handlers

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"taskpad/internal/logger"
	"taskpad/internal/service"
	"taskpad/internal/store"
	"taskpad/internal/ws"
)

// WS upgrades an authenticated connection into a live task session. Each
// session gets its own store subscribed to the caller's identity; the
// subscription and the countdown ticker die with the connection.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		email, err := service.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		identity, err := h.Auth.Identity(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("ws upgrade failed", "error", err)
			return
		}

		// the request context dies when this handler returns; the session
		// lives as long as the connection
		session := ws.NewSession(identity, conn, store.New(h.Tasks), hub)
		go session.Run(context.Background())
	}
}
