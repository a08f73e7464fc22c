package offer

import (
	"errors"
	"net/http"
	"strconv"

	"helpmarket/internal/middleware"
	"helpmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the offer domain
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary Create an offer
// @Tags Offers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body createOfferRequest true "Offer"
// @Success 201 {object} map[string]interface{}
// @Router /offers [post]
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	o, err := h.service.Create(c.Request.Context(), userID, CreateInput{
		CategoryID:   req.CategoryID,
		Type:         req.Type,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Deadline:     req.Deadline,
		Requirements: req.Requirements,
		Tags:         req.Tags,
		Attachments:  req.Attachments,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toResponse(o))
}

// Get godoc
// @Summary Get an offer by id
// @Tags Offers
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]interface{}
// @Router /offers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	o, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(o))
}

// Search godoc
// @Summary Search offers
// @Tags Offers
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param type query string false "Type filter"
// @Param category_id query string false "Category filter"
// @Param q query string false "Text query"
// @Success 200 {object} map[string]interface{}
// @Router /offers [get]
func (h *Handler) Search(c *gin.Context) {
	f := SearchFilter{
		Status:     Status(c.Query("status")),
		Type:       Type(c.Query("type")),
		CategoryID: c.Query("category_id"),
		Query:      c.Query("q"),
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		f.Offset = v
	}

	offers, err := h.service.Search(c.Request.Context(), f)
	if err != nil {
		HandleError(c, err)
		return
	}
	items := make([]offerResponse, 0, len(offers))
	for _, o := range offers {
		items = append(items, toResponse(o))
	}
	response.Success(c, http.StatusOK, items)
}

// Mine godoc
// @Summary List offers where I am poster or taker
// @Tags Offers
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /offers/mine [get]
func (h *Handler) Mine(c *gin.Context) {
	userID := middleware.UserID(c)
	offers, err := h.service.FindByParticipant(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	items := make([]offerResponse, 0, len(offers))
	for _, o := range offers {
		items = append(items, toResponse(o))
	}
	response.Success(c, http.StatusOK, items)
}

// Update godoc
// @Summary Edit an open, untaken offer
// @Tags Offers
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Param body body updateOfferRequest true "Changes"
// @Success 200 {object} map[string]interface{}
// @Router /offers/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	userID := middleware.UserID(c)
	var req updateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	o, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Deadline:     req.Deadline,
		Requirements: req.Requirements,
		Tags:         req.Tags,
		Attachments:  req.Attachments,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(o))
}

// Delete godoc
// @Summary Delete an offer (blocked while conversations exist)
// @Tags Offers
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]interface{}
// @Router /offers/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Cancel godoc
// @Summary Cancel an offer directly (poster only)
// @Tags Offers
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]interface{}
// @Router /offers/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID := middleware.UserID(c)
	o, err := h.service.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(o))
}

// Reopen godoc
// @Summary Reopen a cancelled offer (poster only)
// @Tags Offers
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]interface{}
// @Router /offers/{id}/reopen [post]
func (h *Handler) Reopen(c *gin.Context) {
	userID := middleware.UserID(c)
	o, err := h.service.Reopen(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(o))
}

// Complete godoc
// @Summary Mark an in-progress offer completed (poster only)
// @Tags Offers
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} map[string]interface{}
// @Router /offers/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	userID := middleware.UserID(c)
	o, err := h.service.Complete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(o))
}

// HandleError maps offer domain errors to HTTP responses. Exported so the
// negotiation handler reuses the same mapping.
func HandleError(c *gin.Context, err error) {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed",
			gin.H{"field": fieldErr.Field, "reason": fieldErr.Reason})
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotPoster), errors.Is(err, ErrNotTaker), errors.Is(err, ErrNotRequester):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrDeleteBlocked):
		response.Error(c, http.StatusConflict, "DELETE_BLOCKED", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrNotEditable), errors.Is(err, ErrNotInProgress),
		errors.Is(err, ErrNotReopenable), errors.Is(err, ErrTakerRequired),
		errors.Is(err, ErrCancellationPending), errors.Is(err, ErrNoPendingCancellation):
		response.Error(c, http.StatusConflict, "PRECONDITION_FAILED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
