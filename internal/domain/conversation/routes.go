package conversation

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all conversation routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	convs := r.Group("/conversations")
	{
		convs.POST("", h.Create)
		convs.GET("", h.List)
		convs.GET("/:id", h.Get)
		convs.POST("/:id/deactivate", h.Deactivate)
	}
}
