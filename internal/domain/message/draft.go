package message

import (
	"database/sql"
	"strings"
	"unicode/utf8"
)

// Draft is the sum type of sendable message payloads. Exactly one variant
// exists per message kind, so rendering and handling code gets exhaustiveness
// from the type switch instead of nullable-column conventions.
type Draft interface {
	kind() Kind
	validate() error
	fill(m *Message) error
}

// TextDraft is a plain chat message.
type TextDraft struct {
	Content     string
	Attachments []Attachment
}

func (d TextDraft) kind() Kind { return KindText }

func (d TextDraft) validate() error {
	if l := utf8.RuneCountInString(d.Content); l < 1 || l > 2000 {
		return &FieldError{Field: "content", Reason: "must be 1-2000 characters"}
	}
	return validateAttachments(d.Attachments)
}

func (d TextDraft) fill(m *Message) error {
	m.Content = sql.NullString{String: d.Content, Valid: true}
	return m.SetAttachments(d.Attachments)
}

// OfferResponseDraft is the poster's reply to an interested user: accept,
// decline, or counter-offer with a new price.
type OfferResponseDraft struct {
	Response            ResponseKind
	CounterOfferPrice   float64
	CounterOfferDetails string
	Content             string
	Attachments         []Attachment
}

func (d OfferResponseDraft) kind() Kind { return KindOfferResponse }

func (d OfferResponseDraft) validate() error {
	switch d.Response {
	case ResponseAccept, ResponseDecline:
		if utf8.RuneCountInString(d.Content) > 500 {
			return &FieldError{Field: "content", Reason: "cannot exceed 500 characters"}
		}
	case ResponseCounterOffer:
		if d.CounterOfferPrice <= 0 || d.CounterOfferPrice > 99999.99 {
			return &FieldError{Field: "counter_offer_price", Reason: "must be between 0.01 and 99999.99"}
		}
		if l := utf8.RuneCountInString(d.CounterOfferDetails); l < 1 || l > 1000 {
			return &FieldError{Field: "counter_offer_details", Reason: "must be 1-1000 characters"}
		}
		if utf8.RuneCountInString(d.Content) > 500 {
			return &FieldError{Field: "content", Reason: "cannot exceed 500 characters"}
		}
	default:
		return &FieldError{Field: "offer_response_type", Reason: "must be accept, decline or counter_offer"}
	}
	return validateAttachments(d.Attachments)
}

func (d OfferResponseDraft) fill(m *Message) error {
	m.OfferResponseType = sql.NullString{String: string(d.Response), Valid: true}
	if d.Response == ResponseCounterOffer {
		m.CounterOfferPrice = sql.NullFloat64{Float64: d.CounterOfferPrice, Valid: true}
		m.CounterOfferDetails = sql.NullString{String: d.CounterOfferDetails, Valid: true}
	}
	if d.Content != "" {
		m.Content = sql.NullString{String: d.Content, Valid: true}
	}
	return m.SetAttachments(d.Attachments)
}

// SystemDraft is a protocol-generated notice with no sender-visible actions.
type SystemDraft struct {
	Content string
}

func (d SystemDraft) kind() Kind { return KindSystem }

func (d SystemDraft) validate() error {
	if l := utf8.RuneCountInString(d.Content); l < 1 || l > 1000 {
		return &FieldError{Field: "content", Reason: "must be 1-1000 characters"}
	}
	return nil
}

func (d SystemDraft) fill(m *Message) error {
	m.Content = sql.NullString{String: d.Content, Valid: true}
	return nil
}

// CancellationDraft records a step of the cancellation negotiation.
type CancellationDraft struct {
	Step    CancellationKind
	Reason  string
	Content string
}

func (d CancellationDraft) kind() Kind { return KindCancellationRequest }

func (d CancellationDraft) validate() error {
	switch d.Step {
	case CancellationRequest:
		reason := strings.TrimSpace(d.Reason)
		if l := utf8.RuneCountInString(reason); l < 10 || l > 500 {
			return &FieldError{Field: "cancellation_reason", Reason: "must be 10-500 characters"}
		}
	case CancellationApprove, CancellationDeny:
		if d.Reason != "" {
			return &FieldError{Field: "cancellation_reason", Reason: "only allowed on a request"}
		}
	default:
		return &FieldError{Field: "cancellation_request_type", Reason: "must be request, approve or deny"}
	}
	if utf8.RuneCountInString(d.Content) > 500 {
		return &FieldError{Field: "content", Reason: "cannot exceed 500 characters"}
	}
	return nil
}

func (d CancellationDraft) fill(m *Message) error {
	m.CancellationRequestType = sql.NullString{String: string(d.Step), Valid: true}
	if d.Step == CancellationRequest {
		m.CancellationReason = sql.NullString{String: strings.TrimSpace(d.Reason), Valid: true}
	}
	if d.Content != "" {
		m.Content = sql.NullString{String: d.Content, Valid: true}
	}
	return nil
}

func validateAttachments(atts []Attachment) error {
	if len(atts) > 3 {
		return &FieldError{Field: "attachments", Reason: "maximum 3 attachments allowed per message"}
	}
	for _, a := range atts {
		if a.Filename == "" {
			return &FieldError{Field: "attachments", Reason: "filename is required"}
		}
		if a.URL == "" {
			return &FieldError{Field: "attachments", Reason: "url is required"}
		}
		if a.MimeType == "" {
			return &FieldError{Field: "attachments", Reason: "mime_type is required"}
		}
		if a.Size <= 0 {
			return &FieldError{Field: "attachments", Reason: "size must be positive"}
		}
	}
	return nil
}
