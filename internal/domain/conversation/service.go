package conversation

import (
	"context"
	"errors"
	"time"

	"helpmarket/internal/domain/offer"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// OfferLookup is implemented by the offer repository.
type OfferLookup interface {
	GetByID(ctx context.Context, id string) (*offer.Offer, error)
}

// MessageStats is implemented by the message repository; it backs unread
// counts and last-message previews in conversation lists.
type MessageStats interface {
	CountUnread(ctx context.Context, conversationID string, userID int64) (int64, error)
	LastMessagePreview(ctx context.Context, conversationID string) (*MessagePreview, error)
}

// Service handles conversation business logic
type Service struct {
	repo     Repository
	offers   OfferLookup
	messages MessageStats
}

func NewService(repo Repository, offers OfferLookup, messages MessageStats) *Service {
	return &Service{repo: repo, offers: offers, messages: messages}
}

// GetOrCreate returns the existing conversation for (offer, interested user)
// or creates it, resolving and freezing the poster from the offer. Creation
// is idempotent: a concurrent duplicate insert loses on the unique index and
// falls back to the winner's row.
func (s *Service) GetOrCreate(ctx context.Context, interestedUserID int64, offerID string) (*Conversation, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.PosterID == interestedUserID {
		return nil, ErrCannotContactSelf
	}

	existing, err := s.repo.GetByParticipants(ctx, offerID, interestedUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	conv := &Conversation{
		ID:               uuid.New().String(),
		OfferID:          offerID,
		PosterID:         o.PosterID,
		InterestedUserID: interestedUserID,
		IsActive:         true,
		LastMessageAt:    now,
		CreatedAt:        now,
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return s.getExisting(ctx, offerID, interestedUserID)
		}
		return nil, err
	}
	return conv, nil
}

func (s *Service) getExisting(ctx context.Context, offerID string, interestedUserID int64) (*Conversation, error) {
	existing, err := s.repo.GetByParticipants(ctx, offerID, interestedUserID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	return existing, nil
}

// Get returns a conversation the caller participates in.
func (s *Service) Get(ctx context.Context, userID int64, id string) (*Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

// List returns the caller's conversations sorted by last_message_at, each
// enriched with its unread count and last message.
func (s *Service) List(ctx context.Context, userID int64, activeOnly bool, limit, offset int) ([]*WithDetails, error) {
	convs, err := s.repo.ListByUser(ctx, userID, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]*WithDetails, 0, len(convs))
	for _, conv := range convs {
		unread, _ := s.messages.CountUnread(ctx, conv.ID, userID)
		last, _ := s.messages.LastMessagePreview(ctx, conv.ID)
		result = append(result, &WithDetails{
			Conversation: conv,
			UnreadCount:  unread,
			LastMessage:  last,
		})
	}
	return result, nil
}

// ListByOffer returns every conversation referencing the offer. Used by the
// negotiation protocol to locate the taker's channel.
func (s *Service) ListByOffer(ctx context.Context, offerID string) ([]*Conversation, error) {
	return s.repo.ListByOffer(ctx, offerID)
}

// Deactivate permanently closes a conversation for new messages. There is no
// reactivation operation.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

// Usable re-derives whether the conversation accepts new messages. Both legs
// are checked independently: the row's is_active flag AND the linked offer's
// status. A directly-cancelled offer makes the conversation unusable even
// while is_active is still true.
func (s *Service) Usable(ctx context.Context, id string) (*Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.IsActive {
		return nil, ErrInactive
	}
	o, err := s.offers.GetByID(ctx, conv.OfferID)
	if err != nil {
		return nil, err
	}
	if o.Status == offer.StatusCancelled {
		return nil, ErrOfferCancelled
	}
	return conv, nil
}

// Touch bumps last_message_at; called on every message insert.
func (s *Service) Touch(ctx context.Context, id string, at time.Time) error {
	return s.repo.TouchLastMessage(ctx, id, at)
}
