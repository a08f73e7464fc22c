package offer

import "time"

type createOfferRequest struct {
	CategoryID   string       `json:"category_id" binding:"required"`
	Type         Type         `json:"type" binding:"required"`
	Title        string       `json:"title" binding:"required"`
	Description  string       `json:"description" binding:"required"`
	Price        float64      `json:"price"`
	Deadline     *time.Time   `json:"deadline"`
	Requirements string       `json:"requirements"`
	Tags         []string     `json:"tags"`
	Attachments  []Attachment `json:"attachments"`
}

type updateOfferRequest struct {
	Title        *string      `json:"title"`
	Description  *string      `json:"description"`
	Price        *float64     `json:"price"`
	Deadline     *time.Time   `json:"deadline"`
	Requirements *string      `json:"requirements"`
	Tags         []string     `json:"tags"`
	Attachments  []Attachment `json:"attachments"`
}

type offerResponse struct {
	ID           string       `json:"id"`
	PosterID     int64        `json:"poster_id"`
	TakerID      *int64       `json:"taker_id,omitempty"`
	CategoryID   string       `json:"category_id"`
	Type         Type         `json:"type"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Price        float64      `json:"price"`
	Deadline     *time.Time   `json:"deadline,omitempty"`
	Requirements string       `json:"requirements,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	Status       Status       `json:"status"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`

	CancellationRequestedBy *int64     `json:"cancellation_requested_by,omitempty"`
	CancellationReason      string     `json:"cancellation_reason,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(o *Offer) offerResponse {
	resp := offerResponse{
		ID:          o.ID,
		PosterID:    o.PosterID,
		CategoryID:  o.CategoryID,
		Type:        o.Type,
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price,
		Tags:        o.GetTags(),
		Attachments: o.GetAttachments(),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.TakerID.Valid {
		resp.TakerID = &o.TakerID.Int64
	}
	if o.Deadline.Valid {
		resp.Deadline = &o.Deadline.Time
	}
	if o.Requirements.Valid {
		resp.Requirements = o.Requirements.String
	}
	if o.CompletedAt.Valid {
		resp.CompletedAt = &o.CompletedAt.Time
	}
	if o.CancellationRequestedBy.Valid {
		resp.CancellationRequestedBy = &o.CancellationRequestedBy.Int64
	}
	if o.CancellationReason.Valid {
		resp.CancellationReason = o.CancellationReason.String
	}
	if o.CancellationRequestedAt.Valid {
		resp.CancellationRequestedAt = &o.CancellationRequestedAt.Time
	}
	return resp
}
