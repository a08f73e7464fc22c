package notification

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Notification type constants
const (
	TypeOfferAccepted          = "offer_accepted"
	TypeOfferDeclined          = "offer_declined"
	TypeCounterOffer           = "counter_offer"
	TypeCancellationRequested  = "cancellation_requested"
	TypeCancellationApproved   = "cancellation_approved"
	TypeCancellationDenied     = "cancellation_denied"
	TypeCancellationWithdrawn  = "cancellation_withdrawn"
	TypeNewMessage             = "new_message"
)

// Notification represents a user notification record
type Notification struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	UserID    int64           `gorm:"index" json:"user_id"`
	Type      string          `gorm:"index" json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Data      json.RawMessage `gorm:"type:jsonb" json:"data,omitempty"`
	ReadAt    sql.NullTime    `json:"read_at"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// IsRead returns true if the notification has been read
func (n *Notification) IsRead() bool { return n.ReadAt.Valid }
