package negotiation

import (
	"context"

	"helpmarket/internal/domain/conversation"
	"helpmarket/internal/domain/message"
	"helpmarket/internal/domain/offer"
)

// OfferActions is the slice of the offer service the protocol drives.
type OfferActions interface {
	Get(ctx context.Context, id string) (*offer.Offer, error)
	SetStatus(ctx context.Context, id string, status offer.Status, takerID *int64) (*offer.Offer, error)
	RequestCancellation(ctx context.Context, requesterID int64, id, reason string) error
	RespondToCancellation(ctx context.Context, responderID int64, id string, approved bool) error
	WithdrawCancellation(ctx context.Context, requesterID int64, id string) error
}

// ConversationActions resolves the negotiation channel and closes it on
// approved cancellation.
type ConversationActions interface {
	Get(ctx context.Context, userID int64, id string) (*conversation.Conversation, error)
	Deactivate(ctx context.Context, id string) error
}

// MessageAppender records protocol outcomes in the conversation. Append
// bypasses the activity rule so outcome messages land even in conversations
// the outcome itself closed.
type MessageAppender interface {
	Append(ctx context.Context, senderID int64, conversationID string, d message.Draft) (*message.Message, error)
}

// Notifier delivers out-of-chat notifications. Best-effort: a failed
// notification never fails the protocol step.
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind, title, body string, data map[string]any) error
}

// Result reports a protocol step. Offer mutation is the unit of success; the
// in-chat message and notification are follow-ups whose failure is reported
// in NotifyErr rather than rolling back the offer. Callers seeing a non-nil
// NotifyErr hold an offer in its new state with the chat record missing and
// may retry the message leg.
type Result struct {
	Offer     *offer.Offer
	Message   *message.Message
	NotifyErr error
}

// Service coordinates the multi-entity negotiation steps: offer responses and
// the cancellation request/approve-or-deny/withdraw protocol. Each step
// mutates the offer first, then appends the message recording the outcome.
type Service struct {
	offers        OfferActions
	conversations ConversationActions
	messages      MessageAppender
	notifier      Notifier
}

func NewService(offers OfferActions, conversations ConversationActions, messages MessageAppender, notifier Notifier) *Service {
	return &Service{
		offers:        offers,
		conversations: conversations,
		messages:      messages,
		notifier:      notifier,
	}
}

// AcceptOffer binds the conversation's interested user as taker and moves the
// offer to in_progress. Poster only; the offer must be open.
func (s *Service) AcceptOffer(ctx context.Context, posterID int64, conversationID, note string) (*Result, error) {
	conv, o, err := s.resolve(ctx, posterID, conversationID)
	if err != nil {
		return nil, err
	}
	if o.PosterID != posterID {
		return nil, ErrNotPoster
	}
	if o.Status != offer.StatusOpen {
		return nil, ErrOfferNotOpen
	}

	taker := conv.InterestedUserID
	o, err = s.offers.SetStatus(ctx, o.ID, offer.StatusInProgress, &taker)
	if err != nil {
		return nil, err
	}

	res := &Result{Offer: o}
	res.Message, res.NotifyErr = s.messages.Append(ctx, posterID, conversationID, message.OfferResponseDraft{
		Response: message.ResponseAccept,
		Content:  note,
	})
	s.notify(ctx, taker, "offer_accepted", "Offer accepted", o.Title, o.ID, conversationID)
	return res, nil
}

// DeclineOffer cancels the offer and records the decline. Poster only; the
// offer must be open.
func (s *Service) DeclineOffer(ctx context.Context, posterID int64, conversationID, note string) (*Result, error) {
	conv, o, err := s.resolve(ctx, posterID, conversationID)
	if err != nil {
		return nil, err
	}
	if o.PosterID != posterID {
		return nil, ErrNotPoster
	}
	if o.Status != offer.StatusOpen {
		return nil, ErrOfferNotOpen
	}

	o, err = s.offers.SetStatus(ctx, o.ID, offer.StatusCancelled, nil)
	if err != nil {
		return nil, err
	}

	res := &Result{Offer: o}
	res.Message, res.NotifyErr = s.messages.Append(ctx, posterID, conversationID, message.OfferResponseDraft{
		Response: message.ResponseDecline,
		Content:  note,
	})
	s.notify(ctx, conv.InterestedUserID, "offer_declined", "Offer declined", o.Title, o.ID, conversationID)
	return res, nil
}

// CounterOffer records a counter proposal. Message-only: the offer's status
// and price are untouched until the counterparty reacts.
func (s *Service) CounterOffer(ctx context.Context, posterID int64, conversationID string, price float64, details, note string) (*Result, error) {
	conv, o, err := s.resolve(ctx, posterID, conversationID)
	if err != nil {
		return nil, err
	}
	if o.PosterID != posterID {
		return nil, ErrNotPoster
	}
	if o.Status != offer.StatusOpen {
		return nil, ErrOfferNotOpen
	}

	m, err := s.messages.Append(ctx, posterID, conversationID, message.OfferResponseDraft{
		Response:            message.ResponseCounterOffer,
		CounterOfferPrice:   price,
		CounterOfferDetails: details,
		Content:             note,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, conv.InterestedUserID, "counter_offer", "Counter offer", o.Title, o.ID, conversationID)
	return &Result{Offer: o, Message: m}, nil
}

// RequestCancellation opens a cancellation request on the offer and records
// it in the conversation. Taker only; the offer must be in progress with no
// request already pending. Those preconditions are enforced by the offer
// layer's conditional update.
func (s *Service) RequestCancellation(ctx context.Context, takerID int64, conversationID, reason string) (*Result, error) {
	conv, o, err := s.resolve(ctx, takerID, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.offers.RequestCancellation(ctx, takerID, o.ID, reason); err != nil {
		return nil, err
	}
	o, err = s.offers.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	res := &Result{Offer: o}
	res.Message, res.NotifyErr = s.messages.Append(ctx, takerID, conversationID, message.CancellationDraft{
		Step:   message.CancellationRequest,
		Reason: reason,
	})
	s.notify(ctx, o.PosterID, "cancellation_requested", "Cancellation requested", reason, o.ID, conv.ID)
	return res, nil
}

// RespondToCancellation resolves the pending request. Approval returns the
// offer to open, unbinds the taker, and permanently closes the conversation;
// denial clears the request and leaves everything else in place. Either way
// the requester gets an in-chat record and a notification.
func (s *Service) RespondToCancellation(ctx context.Context, posterID int64, conversationID string, approved bool, note string) (*Result, error) {
	_, o, err := s.resolve(ctx, posterID, conversationID)
	if err != nil {
		return nil, err
	}
	requesterID := o.CancellationRequestedBy.Int64

	if err := s.offers.RespondToCancellation(ctx, posterID, o.ID, approved); err != nil {
		return nil, err
	}
	o, err = s.offers.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	res := &Result{Offer: o}

	if approved {
		if err := s.conversations.Deactivate(ctx, conversationID); err != nil {
			res.NotifyErr = err
			return res, nil
		}
	}

	step := message.CancellationDeny
	kind, title := "cancellation_denied", "Cancellation denied"
	if approved {
		step = message.CancellationApprove
		kind, title = "cancellation_approved", "Cancellation approved"
	}
	res.Message, res.NotifyErr = s.messages.Append(ctx, posterID, conversationID, message.CancellationDraft{
		Step:    step,
		Content: note,
	})
	s.notify(ctx, requesterID, kind, title, o.Title, o.ID, conversationID)
	return res, nil
}

// WithdrawCancellation lets the requester retract a pending request. The
// offer stays in progress; a system message records the retraction.
func (s *Service) WithdrawCancellation(ctx context.Context, requesterID int64, conversationID string) (*Result, error) {
	_, o, err := s.resolve(ctx, requesterID, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.offers.WithdrawCancellation(ctx, requesterID, o.ID); err != nil {
		return nil, err
	}
	o, err = s.offers.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	res := &Result{Offer: o}
	res.Message, res.NotifyErr = s.messages.Append(ctx, requesterID, conversationID, message.SystemDraft{
		Content: "Cancellation request withdrawn",
	})
	s.notify(ctx, o.PosterID, "cancellation_withdrawn", "Cancellation request withdrawn", o.Title, o.ID, conversationID)
	return res, nil
}

// resolve loads the conversation (with a participant check) and its offer.
func (s *Service) resolve(ctx context.Context, userID int64, conversationID string) (*conversation.Conversation, *offer.Offer, error) {
	conv, err := s.conversations.Get(ctx, userID, conversationID)
	if err != nil {
		return nil, nil, err
	}
	o, err := s.offers.Get(ctx, conv.OfferID)
	if err != nil {
		return nil, nil, err
	}
	return conv, o, nil
}

func (s *Service) notify(ctx context.Context, userID int64, kind, title, body, offerID, conversationID string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, userID, kind, title, body, map[string]any{
		"offer_id":        offerID,
		"conversation_id": conversationID,
	})
}
