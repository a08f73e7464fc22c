package negotiation

import (
	"errors"
	"net/http"

	"helpmarket/internal/domain/conversation"
	"helpmarket/internal/domain/message"
	"helpmarket/internal/domain/offer"
	"helpmarket/internal/middleware"
	"helpmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Broadcaster pushes protocol messages onto the realtime feed.
type Broadcaster interface {
	Broadcast(conversationID string, event *message.WSEvent)
}

// Handler handles HTTP requests for the negotiation protocol
type Handler struct {
	service *Service
	hub     Broadcaster
}

func NewHandler(service *Service, hub Broadcaster) *Handler {
	return &Handler{service: service, hub: hub}
}

type respondRequest struct {
	Note string `json:"note"`
}

type counterOfferRequest struct {
	Price   float64 `json:"price" binding:"required"`
	Details string  `json:"details" binding:"required"`
	Note    string  `json:"note"`
}

type requestCancellationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type respondCancellationRequest struct {
	Approved bool   `json:"approved"`
	Note     string `json:"note"`
}

// Accept godoc
// @Summary Accept the interested user's offer response
// @Tags Negotiation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body respondRequest false "Optional note"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	userID := middleware.UserID(c)
	var req respondRequest
	_ = c.ShouldBindJSON(&req)

	res, err := h.service.AcceptOffer(c.Request.Context(), userID, c.Param("id"), req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.finish(c, c.Param("id"), res)
}

// Decline godoc
// @Summary Decline and cancel the offer
// @Tags Negotiation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body respondRequest false "Optional note"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	userID := middleware.UserID(c)
	var req respondRequest
	_ = c.ShouldBindJSON(&req)

	res, err := h.service.DeclineOffer(c.Request.Context(), userID, c.Param("id"), req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.finish(c, c.Param("id"), res)
}

// Counter godoc
// @Summary Send a counter offer
// @Tags Negotiation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body counterOfferRequest true "Counter terms"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/counter [post]
func (h *Handler) Counter(c *gin.Context) {
	userID := middleware.UserID(c)
	var req counterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.CounterOffer(c.Request.Context(), userID, c.Param("id"), req.Price, req.Details, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.finish(c, c.Param("id"), res)
}

// RequestCancellation godoc
// @Summary Request cancellation of an in-progress offer
// @Tags Negotiation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body requestCancellationRequest true "Reason (10-500 chars)"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/cancellation/request [post]
func (h *Handler) RequestCancellation(c *gin.Context) {
	userID := middleware.UserID(c)
	var req requestCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.RequestCancellation(c.Request.Context(), userID, c.Param("id"), req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.finish(c, c.Param("id"), res)
}

// RespondToCancellation godoc
// @Summary Approve or deny a pending cancellation request
// @Tags Negotiation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body respondCancellationRequest true "Decision"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/cancellation/respond [post]
func (h *Handler) RespondToCancellation(c *gin.Context) {
	userID := middleware.UserID(c)
	var req respondCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.RespondToCancellation(c.Request.Context(), userID, c.Param("id"), req.Approved, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.finish(c, c.Param("id"), res)
}

// WithdrawCancellation godoc
// @Summary Withdraw my pending cancellation request
// @Tags Negotiation
// @Security BearerAuth
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/cancellation/withdraw [post]
func (h *Handler) WithdrawCancellation(c *gin.Context) {
	userID := middleware.UserID(c)
	res, err := h.service.WithdrawCancellation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.finish(c, c.Param("id"), res)
}

// finish broadcasts the protocol message (if it landed) and writes the
// result. A non-nil NotifyErr means the offer mutated but the in-chat record
// is missing; the client is told so it can retry the message leg.
func (h *Handler) finish(c *gin.Context, conversationID string, res *Result) {
	if res.Message != nil && h.hub != nil {
		h.hub.Broadcast(conversationID, &message.WSEvent{
			Type:           message.EventNewMessage,
			ConversationID: conversationID,
			Payload:        res.Message,
		})
	}

	body := gin.H{"offer": res.Offer}
	if res.Message != nil {
		body["message"] = res.Message
	}
	if res.NotifyErr != nil {
		body["message_error"] = "offer updated but the chat message was not recorded"
	}
	response.Success(c, http.StatusOK, body)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOfferNotOpen):
		response.Error(c, http.StatusConflict, "PRECONDITION_FAILED", err.Error())
	case errors.Is(err, ErrNotPoster):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, conversation.ErrNotFound), errors.Is(err, conversation.ErrNotParticipant),
		errors.Is(err, conversation.ErrInactive), errors.Is(err, conversation.ErrOfferCancelled):
		conversation.HandleError(c, err)
	default:
		offer.HandleError(c, err)
	}
}
