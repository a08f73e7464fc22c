package negotiation

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the protocol endpoints under the conversation they
// operate on.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	conversations := rg.Group("/conversations", auth)
	{
		conversations.POST("/:id/accept", h.Accept)
		conversations.POST("/:id/decline", h.Decline)
		conversations.POST("/:id/counter", h.Counter)
		conversations.POST("/:id/cancellation/request", h.RequestCancellation)
		conversations.POST("/:id/cancellation/respond", h.RespondToCancellation)
		conversations.POST("/:id/cancellation/withdraw", h.WithdrawCancellation)
	}
}
