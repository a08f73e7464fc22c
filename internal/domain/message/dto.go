package message

import "time"

type sendMessageRequest struct {
	MessageType Kind   `json:"message_type" binding:"required"`
	Content     string `json:"content"`

	OfferResponseType   ResponseKind `json:"offer_response_type"`
	CounterOfferPrice   float64      `json:"counter_offer_price"`
	CounterOfferDetails string       `json:"counter_offer_details"`

	CancellationRequestType CancellationKind `json:"cancellation_request_type"`
	CancellationReason      string           `json:"cancellation_reason"`

	Attachments []Attachment `json:"attachments"`
}

// draft maps the wire request onto exactly one Draft variant, rejecting any
// field that belongs to a different message type.
func (r sendMessageRequest) draft() (Draft, error) {
	switch r.MessageType {
	case KindText:
		if err := r.forbid(fieldSet{offerResponse: true, cancellation: true}); err != nil {
			return nil, err
		}
		return TextDraft{Content: r.Content, Attachments: r.Attachments}, nil

	case KindOfferResponse:
		if err := r.forbid(fieldSet{cancellation: true}); err != nil {
			return nil, err
		}
		return OfferResponseDraft{
			Response:            r.OfferResponseType,
			CounterOfferPrice:   r.CounterOfferPrice,
			CounterOfferDetails: r.CounterOfferDetails,
			Content:             r.Content,
			Attachments:         r.Attachments,
		}, nil

	case KindSystem:
		if err := r.forbid(fieldSet{offerResponse: true, cancellation: true, attachments: true}); err != nil {
			return nil, err
		}
		return SystemDraft{Content: r.Content}, nil

	case KindCancellationRequest:
		if err := r.forbid(fieldSet{offerResponse: true, attachments: true}); err != nil {
			return nil, err
		}
		return CancellationDraft{
			Step:    r.CancellationRequestType,
			Reason:  r.CancellationReason,
			Content: r.Content,
		}, nil

	default:
		return nil, &FieldError{Field: "message_type", Reason: "unknown message type"}
	}
}

type fieldSet struct {
	offerResponse bool
	cancellation  bool
	attachments   bool
}

func (r sendMessageRequest) forbid(f fieldSet) error {
	if f.offerResponse && (r.OfferResponseType != "" || r.CounterOfferPrice != 0 || r.CounterOfferDetails != "") {
		return &FieldError{Field: "offer_response_type", Reason: "not allowed for this message type"}
	}
	if f.cancellation && (r.CancellationRequestType != "" || r.CancellationReason != "") {
		return &FieldError{Field: "cancellation_request_type", Reason: "not allowed for this message type"}
	}
	if f.attachments && len(r.Attachments) > 0 {
		return &FieldError{Field: "attachments", Reason: "not allowed for this message type"}
	}
	return nil
}

type markAsReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}

type messageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       int64  `json:"sender_id"`
	MessageType    Kind   `json:"message_type"`
	Content        string `json:"content,omitempty"`

	OfferResponseType   string   `json:"offer_response_type,omitempty"`
	CounterOfferPrice   *float64 `json:"counter_offer_price,omitempty"`
	CounterOfferDetails string   `json:"counter_offer_details,omitempty"`

	CancellationRequestType string `json:"cancellation_request_type,omitempty"`
	CancellationReason      string `json:"cancellation_reason,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`

	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(m *Message) messageResponse {
	resp := messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		MessageType:    m.MessageType,
		Content:        m.Content.String,
		Attachments:    m.GetAttachments(),
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
	if m.OfferResponseType.Valid {
		resp.OfferResponseType = m.OfferResponseType.String
	}
	if m.CounterOfferPrice.Valid {
		resp.CounterOfferPrice = &m.CounterOfferPrice.Float64
	}
	if m.CounterOfferDetails.Valid {
		resp.CounterOfferDetails = m.CounterOfferDetails.String
	}
	if m.CancellationRequestType.Valid {
		resp.CancellationRequestType = m.CancellationRequestType.String
	}
	if m.CancellationReason.Valid {
		resp.CancellationReason = m.CancellationReason.String
	}
	return resp
}
