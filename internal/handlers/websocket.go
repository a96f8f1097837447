package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/services"
)

// WebSocketHandler attaches the caller to the live notification stream.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.HandleWebSocket(hub, c.Writer, c.Request, c.GetUint("userId"))
	}
}
