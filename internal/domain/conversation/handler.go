package conversation

import (
	"errors"
	"net/http"
	"strconv"

	"helpmarket/internal/domain/offer"
	"helpmarket/internal/middleware"
	"helpmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the conversation domain
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createConversationRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
}

// Create godoc
// @Summary Start or get the conversation for an offer
// @Tags Conversations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body createConversationRequest true "Offer"
// @Success 201 {object} map[string]interface{}
// @Router /conversations [post]
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	conv, err := h.service.GetOrCreate(c.Request.Context(), userID, req.OfferID)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, conv)
}

// List godoc
// @Summary List my conversations
// @Tags Conversations
// @Security BearerAuth
// @Param active query bool false "Active only"
// @Param limit query int false "Limit (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /conversations [get]
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	activeOnly := c.Query("active") == "true"
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	convs, err := h.service.List(c.Request.Context(), userID, activeOnly, limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}

	items := make([]gin.H, 0, len(convs))
	for _, conv := range convs {
		item := gin.H{
			"id":                 conv.ID,
			"offer_id":           conv.OfferID,
			"poster_id":          conv.PosterID,
			"interested_user_id": conv.InterestedUserID,
			"is_active":          conv.IsActive,
			"last_message_at":    conv.LastMessageAt,
			"created_at":         conv.CreatedAt,
			"unread_count":       conv.UnreadCount,
		}
		if conv.LastMessage != nil {
			item["last_message"] = conv.LastMessage
		}
		items = append(items, item)
	}
	response.Success(c, http.StatusOK, items)
}

// Get godoc
// @Summary Get a conversation
// @Tags Conversations
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	conv, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, conv)
}

// Deactivate godoc
// @Summary Close a conversation permanently
// @Tags Conversations
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/deactivate [post]
func (h *Handler) Deactivate(c *gin.Context) {
	userID := middleware.UserID(c)
	conv, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), conv.ID); err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_active": false})
}

// HandleError maps conversation domain errors to HTTP responses.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, offer.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrCannotContactSelf):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInactive), errors.Is(err, ErrOfferCancelled):
		response.Error(c, http.StatusConflict, "CONVERSATION_CLOSED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
