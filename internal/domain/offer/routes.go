package offer

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all offer routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	offers := r.Group("/offers")
	{
		offers.POST("", h.Create)
		offers.GET("", h.Search)
		offers.GET("/mine", h.Mine)

		offers.GET("/:id", h.Get)
		offers.PATCH("/:id", h.Update)
		offers.DELETE("/:id", h.Delete)

		offers.POST("/:id/cancel", h.Cancel)
		offers.POST("/:id/reopen", h.Reopen)
		offers.POST("/:id/complete", h.Complete)
	}
}
