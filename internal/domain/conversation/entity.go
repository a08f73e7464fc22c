package conversation

import "time"

// Conversation is the messaging channel between an offer's poster and exactly
// one interested user. poster_id is resolved from the offer at creation time
// and frozen on the row. is_active only ever moves true → false.
type Conversation struct {
	ID               string    `gorm:"column:id;primaryKey" json:"id"`
	OfferID          string    `gorm:"column:offer_id;uniqueIndex:idx_conversations_offer_user" json:"offer_id"`
	PosterID         int64     `gorm:"column:poster_id;index" json:"poster_id"`
	InterestedUserID int64     `gorm:"column:interested_user_id;uniqueIndex:idx_conversations_offer_user" json:"interested_user_id"`
	IsActive         bool      `gorm:"column:is_active" json:"is_active"`
	LastMessageAt    time.Time `gorm:"column:last_message_at" json:"last_message_at"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

// HasParticipant reports whether userID is the poster or the interested user.
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.PosterID == userID || c.InterestedUserID == userID
}

// OtherParticipant returns the counterpart of userID in this conversation.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.PosterID == userID {
		return c.InterestedUserID
	}
	return c.PosterID
}

// MessagePreview is the last message shown in conversation lists.
type MessagePreview struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	SenderID    int64     `json:"sender_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// WithDetails is used in list responses.
type WithDetails struct {
	*Conversation
	UnreadCount int64
	LastMessage *MessagePreview
}
