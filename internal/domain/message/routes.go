package message

import "github.com/gin-gonic/gin"

// RegisterRoutes wires message endpoints. Conversation-scoped routes share the
// /conversations/:id prefix with the conversation domain.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	conversations := rg.Group("/conversations", auth)
	{
		conversations.POST("/:id/messages", h.Send)
		conversations.GET("/:id/messages", h.List)
		conversations.POST("/:id/read", h.MarkAsRead)
		conversations.GET("/:id/unread", h.UnreadCount)
	}

	messages := rg.Group("/messages", auth)
	{
		messages.GET("/unread", h.TotalUnread)
		messages.DELETE("/:id", h.Delete)
	}

	// WebSocket authenticates via query param, not the auth middleware
	rg.GET("/ws", h.ServeWS)
}
