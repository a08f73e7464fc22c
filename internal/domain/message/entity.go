package message

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Kind is the closed set of message types. Each kind carries its own payload
// fields; a field belonging to one kind is always null for the others.
type Kind string

const (
	KindText                Kind = "text"
	KindOfferResponse       Kind = "offer_response"
	KindSystem              Kind = "system"
	KindCancellationRequest Kind = "cancellation_request"
)

// ResponseKind is the sub-kind of an offer_response message.
type ResponseKind string

const (
	ResponseAccept       ResponseKind = "accept"
	ResponseDecline      ResponseKind = "decline"
	ResponseCounterOffer ResponseKind = "counter_offer"
)

// CancellationKind is the sub-kind of a cancellation_request message.
type CancellationKind string

const (
	CancellationRequest CancellationKind = "request"
	CancellationApprove CancellationKind = "approve"
	CancellationDeny    CancellationKind = "deny"
)

// Attachment is file metadata attached to a message (max 3 per message).
type Attachment struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	Type       string `json:"type"` // image, code, document, other
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
}

// Message is an append-only record within a conversation, ordered by
// created_at. Only is_read (and updated_at) ever change after insert.
type Message struct {
	ID             string `gorm:"column:id;primaryKey" json:"id"`
	ConversationID string `gorm:"column:conversation_id;index" json:"conversation_id"`
	SenderID       int64  `gorm:"column:sender_id;index" json:"sender_id"`
	MessageType    Kind   `gorm:"column:message_type" json:"message_type"`

	Content sql.NullString `gorm:"column:content" json:"content,omitempty"`

	OfferResponseType   sql.NullString  `gorm:"column:offer_response_type" json:"offer_response_type,omitempty"`
	CounterOfferPrice   sql.NullFloat64 `gorm:"column:counter_offer_price" json:"counter_offer_price,omitempty"`
	CounterOfferDetails sql.NullString  `gorm:"column:counter_offer_details" json:"counter_offer_details,omitempty"`

	CancellationRequestType sql.NullString `gorm:"column:cancellation_request_type" json:"cancellation_request_type,omitempty"`
	CancellationReason      sql.NullString `gorm:"column:cancellation_reason" json:"cancellation_reason,omitempty"`

	Attachments json.RawMessage `gorm:"column:attachments;type:jsonb" json:"attachments,omitempty"`

	IsRead    bool      `gorm:"column:is_read" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Message) TableName() string { return "messages" }

// SetAttachments encodes attachment metadata into the JSON column.
func (m *Message) SetAttachments(atts []Attachment) error {
	if len(atts) == 0 {
		m.Attachments = nil
		return nil
	}
	b, err := json.Marshal(atts)
	if err != nil {
		return err
	}
	m.Attachments = b
	return nil
}

// GetAttachments decodes the attachments column.
func (m *Message) GetAttachments() []Attachment {
	if len(m.Attachments) == 0 {
		return nil
	}
	var atts []Attachment
	_ = json.Unmarshal(m.Attachments, &atts)
	return atts
}
