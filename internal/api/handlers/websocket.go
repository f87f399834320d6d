package handlers

import (
	"github.com/fairwave/backend/internal/ws"
	"github.com/gin-gonic/gin"
)

// HandleRoundWebSocket handles real-time round communication
func HandleRoundWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
