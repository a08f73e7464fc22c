package message

import (
	"context"
	"time"

	"helpmarket/internal/domain/conversation"

	"github.com/google/uuid"
)

// ConversationGuard is implemented by the conversation service. Usable gates
// sends (the derived activity rule is re-checked on every call); Get gates
// reads, which stay available on closed conversations.
type ConversationGuard interface {
	Get(ctx context.Context, userID int64, id string) (*conversation.Conversation, error)
	Usable(ctx context.Context, id string) (*conversation.Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// Service handles message business logic
type Service struct {
	repo          Repository
	conversations ConversationGuard
}

func NewService(repo Repository, conversations ConversationGuard) *Service {
	return &Service{repo: repo, conversations: conversations}
}

// Send validates the draft against its kind, appends the message, and bumps
// the conversation's last_message_at. The conversation must be usable and the
// sender must be a participant.
func (s *Service) Send(ctx context.Context, senderID int64, conversationID string, d Draft) (*Message, error) {
	conv, err := s.conversations.Usable(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, conversation.ErrNotParticipant
	}
	return s.insert(ctx, senderID, conversationID, d)
}

// Append records a protocol message without re-checking the conversation's
// activity rule. Negotiation outcomes close conversations, and the message
// recording the outcome must still land in them.
func (s *Service) Append(ctx context.Context, senderID int64, conversationID string, d Draft) (*Message, error) {
	if _, err := s.conversations.Get(ctx, senderID, conversationID); err != nil {
		return nil, err
	}
	return s.insert(ctx, senderID, conversationID, d)
}

func (s *Service) insert(ctx context.Context, senderID int64, conversationID string, d Draft) (*Message, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	m := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		MessageType:    d.kind(),
		IsRead:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.fill(m); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	// last_message_at drives conversation-list ordering; a failed bump is not
	// worth failing the send over
	_ = s.conversations.Touch(ctx, conversationID, now)

	return m, nil
}

// List returns a chronologically ascending page of messages.
func (s *Service) List(ctx context.Context, userID int64, conversationID string, f Filter) ([]*Message, error) {
	if _, err := s.conversations.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, conversationID, f)
}

// MarkAsRead flips is_read on messages not sent by the reader. This is the
// only mutation path for the flag; it never goes back to false.
func (s *Service) MarkAsRead(ctx context.Context, readerID int64, conversationID string, ids []string) (int64, error) {
	if _, err := s.conversations.Get(ctx, readerID, conversationID); err != nil {
		return 0, err
	}
	return s.repo.MarkAsRead(ctx, conversationID, readerID, ids)
}

// UnreadCount returns the authoritative unread count for one conversation.
// Consumers of the realtime feed re-fetch this rather than trusting deltas.
func (s *Service) UnreadCount(ctx context.Context, userID int64, conversationID string) (int64, error) {
	if _, err := s.conversations.Get(ctx, userID, conversationID); err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, conversationID, userID)
}

// TotalUnread returns the unread count across all of the user's conversations.
func (s *Service) TotalUnread(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountTotalUnread(ctx, userID)
}

// Delete removes a message. Sender only; not part of the negotiation protocol.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != userID {
		return ErrNotSender
	}
	return s.repo.Delete(ctx, id)
}
