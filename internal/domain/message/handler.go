package message

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"helpmarket/internal/domain/conversation"
	"helpmarket/internal/middleware"
	jwtsvc "helpmarket/internal/pkg/jwt"
	"helpmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the message domain
type Handler struct {
	service *Service
	hub     *Hub
	jwt     *jwtsvc.Service
	convs   *conversation.Service
}

func NewHandler(service *Service, hub *Hub, jwt *jwtsvc.Service, convs *conversation.Service) *Handler {
	return &Handler{service: service, hub: hub, jwt: jwt, convs: convs}
}

// Send godoc
// @Summary Send a message in a conversation
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body sendMessageRequest true "Message"
// @Success 201 {object} map[string]interface{}
// @Router /conversations/{id}/messages [post]
func (h *Handler) Send(c *gin.Context) {
	userID := middleware.UserID(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	d, err := req.draft()
	if err != nil {
		HandleError(c, err)
		return
	}

	m, err := h.service.Send(c.Request.Context(), userID, c.Param("id"), d)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.hub.Broadcast(m.ConversationID, &WSEvent{
		Type:           EventNewMessage,
		ConversationID: m.ConversationID,
		Payload:        toResponse(m),
	})

	response.Success(c, http.StatusCreated, toResponse(m))
}

// List godoc
// @Summary List messages in a conversation
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param type query string false "Message type filter"
// @Param unread query bool false "Unread only"
// @Param before query string false "Created before (RFC3339)"
// @Param after query string false "Created after (RFC3339)"
// @Param limit query int false "Limit (default 50, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/messages [get]
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	f := Filter{Kind: Kind(c.Query("type"))}
	f.UnreadOnly = c.Query("unread") == "true"
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	if v := c.Query("before"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Before = &t
		}
	}
	if v := c.Query("after"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.After = &t
		}
	}

	msgs, err := h.service.List(c.Request.Context(), userID, c.Param("id"), f)
	if err != nil {
		HandleError(c, err)
		return
	}

	items := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toResponse(m))
	}
	response.Success(c, http.StatusOK, items)
}

// MarkAsRead godoc
// @Summary Mark messages as read
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Param id path string true "Conversation ID"
// @Param body body markAsReadRequest false "Specific message IDs (empty = all unread)"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/read [post]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := middleware.UserID(c)
	conversationID := c.Param("id")

	var req markAsReadRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	updated, err := h.service.MarkAsRead(c.Request.Context(), userID, conversationID, req.MessageIDs)
	if err != nil {
		HandleError(c, err)
		return
	}

	if updated > 0 {
		h.hub.Broadcast(conversationID, &WSEvent{
			Type:           EventMessagesRead,
			ConversationID: conversationID,
			Payload:        gin.H{"reader_id": userID, "updated": updated},
		})
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// UnreadCount godoc
// @Summary Unread count for one conversation
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/unread [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	userID := middleware.UserID(c)
	count, err := h.service.UnreadCount(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

// TotalUnread godoc
// @Summary Unread count across all my conversations
// @Tags Messages
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /messages/unread [get]
func (h *Handler) TotalUnread(c *gin.Context) {
	userID := middleware.UserID(c)
	count, err := h.service.TotalUnread(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

// Delete godoc
// @Summary Delete my message
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} map[string]interface{}
// @Router /messages/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ServeWS godoc
// @Summary Real-time message feed
// @Description WebSocket endpoint. Authentication via query parameter because
// WebSocket clients cannot set headers: GET /ws?token=JWT
// @Tags Messages
// @Param token query string true "JWT access token"
// @Router /ws [get]
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter required")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	// Subscribe to the user's active conversations up front; the client can
	// subscribe/unsubscribe individual ones after connecting.
	var initial []string
	if convs, err := h.convs.List(c.Request.Context(), claims.UserID, true, 100, 0); err == nil {
		for _, conv := range convs {
			initial = append(initial, conv.ID)
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.hub.ServeWS(conn, claims.UserID, initial)
}

// HandleError maps message domain errors to HTTP responses.
func HandleError(c *gin.Context, err error) {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", gin.H{
			fieldErr.Field: fieldErr.Reason,
		})
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotSender):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, conversation.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, conversation.ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, conversation.ErrInactive), errors.Is(err, conversation.ErrOfferCancelled):
		response.Error(c, http.StatusConflict, "CONVERSATION_CLOSED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
