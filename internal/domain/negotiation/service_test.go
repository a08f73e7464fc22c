package negotiation

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"helpmarket/internal/domain/conversation"
	"helpmarket/internal/domain/message"
	"helpmarket/internal/domain/offer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock collaborators
type MockOfferActions struct {
	mock.Mock
}

func (m *MockOfferActions) Get(ctx context.Context, id string) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferActions) SetStatus(ctx context.Context, id string, status offer.Status, takerID *int64) (*offer.Offer, error) {
	args := m.Called(ctx, id, status, takerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferActions) RequestCancellation(ctx context.Context, requesterID int64, id, reason string) error {
	args := m.Called(ctx, requesterID, id, reason)
	return args.Error(0)
}

func (m *MockOfferActions) RespondToCancellation(ctx context.Context, responderID int64, id string, approved bool) error {
	args := m.Called(ctx, responderID, id, approved)
	return args.Error(0)
}

func (m *MockOfferActions) WithdrawCancellation(ctx context.Context, requesterID int64, id string) error {
	args := m.Called(ctx, requesterID, id)
	return args.Error(0)
}

type MockConversationActions struct {
	mock.Mock
}

func (m *MockConversationActions) Get(ctx context.Context, userID int64, id string) (*conversation.Conversation, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conversation.Conversation), args.Error(1)
}

func (m *MockConversationActions) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMessageAppender struct {
	mock.Mock
}

func (m *MockMessageAppender) Append(ctx context.Context, senderID int64, conversationID string, d message.Draft) (*message.Message, error) {
	args := m.Called(ctx, senderID, conversationID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*message.Message), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int64, kind, title, body string, data map[string]any) error {
	args := m.Called(ctx, userID, kind, title, body, data)
	return args.Error(0)
}

const (
	posterID = int64(1)
	takerID  = int64(2)
)

func testConversation() *conversation.Conversation {
	return &conversation.Conversation{
		ID:               "conv-1",
		OfferID:          "offer-1",
		PosterID:         posterID,
		InterestedUserID: takerID,
		IsActive:         true,
	}
}

func openOffer() *offer.Offer {
	return &offer.Offer{ID: "offer-1", PosterID: posterID, Status: offer.StatusOpen, Title: "Go debugging", Price: 25}
}

func inProgressOffer() *offer.Offer {
	o := openOffer()
	o.Status = offer.StatusInProgress
	o.TakerID = sql.NullInt64{Int64: takerID, Valid: true}
	return o
}

func pendingCancellationOffer() *offer.Offer {
	o := inProgressOffer()
	o.CancellationRequestedBy = sql.NullInt64{Int64: takerID, Valid: true}
	o.CancellationReason = sql.NullString{String: "schedule conflict", Valid: true}
	return o
}

type fixture struct {
	offers *MockOfferActions
	convs  *MockConversationActions
	msgs   *MockMessageAppender
	notif  *MockNotifier
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{
		offers: new(MockOfferActions),
		convs:  new(MockConversationActions),
		msgs:   new(MockMessageAppender),
		notif:  new(MockNotifier),
	}
	f.svc = NewService(f.offers, f.convs, f.msgs, f.notif)
	return f
}

func TestService_AcceptOffer_BindsTakerAndMovesInProgress(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(openOffer(), nil)
	f.offers.On("SetStatus", mock.Anything, "offer-1", offer.StatusInProgress, mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == takerID
	})).Return(inProgressOffer(), nil)
	f.msgs.On("Append", mock.Anything, posterID, "conv-1", message.OfferResponseDraft{
		Response: message.ResponseAccept,
	}).Return(&message.Message{ID: "msg-1", MessageType: message.KindOfferResponse}, nil)
	f.notif.On("Notify", mock.Anything, takerID, "offer_accepted", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.AcceptOffer(context.Background(), posterID, "conv-1", "")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusInProgress, res.Offer.Status)
	assert.True(t, res.Offer.TakerID.Valid)
	assert.Equal(t, takerID, res.Offer.TakerID.Int64)
	assert.NotNil(t, res.Message)
	assert.NoError(t, res.NotifyErr)
	f.offers.AssertExpectations(t)
	f.msgs.AssertExpectations(t)
}

func TestService_AcceptOffer_NotPoster(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, takerID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(openOffer(), nil)

	_, err := f.svc.AcceptOffer(context.Background(), takerID, "conv-1", "")

	assert.ErrorIs(t, err, ErrNotPoster)
	f.offers.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AcceptOffer_NotOpen(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(inProgressOffer(), nil)

	_, err := f.svc.AcceptOffer(context.Background(), posterID, "conv-1", "")
	assert.ErrorIs(t, err, ErrOfferNotOpen)
}

func TestService_AcceptOffer_MessageFailureIsPartialSuccess(t *testing.T) {
	// the offer is already in_progress; the caller learns the chat record is
	// missing instead of seeing the whole step fail
	f := newFixture()
	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(openOffer(), nil)
	f.offers.On("SetStatus", mock.Anything, "offer-1", offer.StatusInProgress, mock.Anything).
		Return(inProgressOffer(), nil)
	f.msgs.On("Append", mock.Anything, posterID, "conv-1", mock.Anything).
		Return(nil, errors.New("connection reset"))
	f.notif.On("Notify", mock.Anything, takerID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.AcceptOffer(context.Background(), posterID, "conv-1", "")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusInProgress, res.Offer.Status)
	assert.Nil(t, res.Message)
	assert.Error(t, res.NotifyErr)
}

func TestService_DeclineOffer_CancelsOffer(t *testing.T) {
	f := newFixture()
	cancelled := openOffer()
	cancelled.Status = offer.StatusCancelled

	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(openOffer(), nil)
	f.offers.On("SetStatus", mock.Anything, "offer-1", offer.StatusCancelled, (*int64)(nil)).
		Return(cancelled, nil)
	f.msgs.On("Append", mock.Anything, posterID, "conv-1", message.OfferResponseDraft{
		Response: message.ResponseDecline,
		Content:  "found someone else",
	}).Return(&message.Message{ID: "msg-1"}, nil)
	f.notif.On("Notify", mock.Anything, takerID, "offer_declined", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.DeclineOffer(context.Background(), posterID, "conv-1", "found someone else")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusCancelled, res.Offer.Status)
	assert.False(t, res.Offer.TakerID.Valid)
}

func TestService_CounterOffer_MessageOnly(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(openOffer(), nil)
	f.msgs.On("Append", mock.Anything, posterID, "conv-1", message.OfferResponseDraft{
		Response:            message.ResponseCounterOffer,
		CounterOfferPrice:   30,
		CounterOfferDetails: "including the writeup",
	}).Return(&message.Message{ID: "msg-1"}, nil)
	f.notif.On("Notify", mock.Anything, takerID, "counter_offer", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.CounterOffer(context.Background(), posterID, "conv-1", 30, "including the writeup", "")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusOpen, res.Offer.Status, "counter offer does not move the offer")
	f.offers.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RequestCancellation_EmitsRequestMessage(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, takerID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(inProgressOffer(), nil).Once()
	f.offers.On("RequestCancellation", mock.Anything, takerID, "offer-1", "schedule conflict").Return(nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(pendingCancellationOffer(), nil)
	f.msgs.On("Append", mock.Anything, takerID, "conv-1", message.CancellationDraft{
		Step:   message.CancellationRequest,
		Reason: "schedule conflict",
	}).Return(&message.Message{ID: "msg-1"}, nil)
	f.notif.On("Notify", mock.Anything, posterID, "cancellation_requested", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.RequestCancellation(context.Background(), takerID, "conv-1", "schedule conflict")

	assert.NoError(t, err)
	assert.True(t, res.Offer.HasPendingCancellation())
	assert.Equal(t, takerID, res.Offer.CancellationRequestedBy.Int64)
	assert.Equal(t, "schedule conflict", res.Offer.CancellationReason.String)
	f.msgs.AssertExpectations(t)
}

func TestService_RequestCancellation_NotTaker(t *testing.T) {
	// a non-taker is rejected by the offer layer; nothing else happens
	f := newFixture()
	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(inProgressOffer(), nil)
	f.offers.On("RequestCancellation", mock.Anything, posterID, "offer-1", mock.Anything).
		Return(offer.ErrNotTaker)

	_, err := f.svc.RequestCancellation(context.Background(), posterID, "conv-1", "changed my mind here")

	assert.ErrorIs(t, err, offer.ErrNotTaker)
	f.msgs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.convs.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestService_RespondToCancellation_Approve(t *testing.T) {
	f := newFixture()
	reopened := openOffer() // back to open, taker cleared, cancellation fields null

	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(pendingCancellationOffer(), nil).Once()
	f.offers.On("RespondToCancellation", mock.Anything, posterID, "offer-1", true).Return(nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(reopened, nil)
	f.convs.On("Deactivate", mock.Anything, "conv-1").Return(nil)
	f.msgs.On("Append", mock.Anything, posterID, "conv-1", message.CancellationDraft{
		Step: message.CancellationApprove,
	}).Return(&message.Message{ID: "msg-1"}, nil)
	f.notif.On("Notify", mock.Anything, takerID, "cancellation_approved", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.RespondToCancellation(context.Background(), posterID, "conv-1", true, "")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusOpen, res.Offer.Status)
	assert.False(t, res.Offer.TakerID.Valid)
	assert.False(t, res.Offer.HasPendingCancellation())
	f.convs.AssertExpectations(t)
	f.msgs.AssertExpectations(t)
}

func TestService_RespondToCancellation_Deny(t *testing.T) {
	f := newFixture()
	denied := inProgressOffer() // cancellation cleared, status and taker intact

	f.convs.On("Get", mock.Anything, posterID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(pendingCancellationOffer(), nil).Once()
	f.offers.On("RespondToCancellation", mock.Anything, posterID, "offer-1", false).Return(nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(denied, nil)
	f.msgs.On("Append", mock.Anything, posterID, "conv-1", message.CancellationDraft{
		Step: message.CancellationDeny,
	}).Return(&message.Message{ID: "msg-1"}, nil)
	f.notif.On("Notify", mock.Anything, takerID, "cancellation_denied", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.RespondToCancellation(context.Background(), posterID, "conv-1", false, "")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusInProgress, res.Offer.Status)
	assert.True(t, res.Offer.TakerID.Valid)
	f.convs.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
	f.notif.AssertExpectations(t)
}

func TestService_WithdrawCancellation_EmitsSystemMessage(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, takerID, "conv-1").Return(testConversation(), nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(pendingCancellationOffer(), nil).Once()
	f.offers.On("WithdrawCancellation", mock.Anything, takerID, "offer-1").Return(nil)
	f.offers.On("Get", mock.Anything, "offer-1").Return(inProgressOffer(), nil)
	f.msgs.On("Append", mock.Anything, takerID, "conv-1", mock.MatchedBy(func(d message.Draft) bool {
		_, ok := d.(message.SystemDraft)
		return ok
	})).Return(&message.Message{ID: "msg-1"}, nil)
	f.notif.On("Notify", mock.Anything, posterID, "cancellation_withdrawn", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.WithdrawCancellation(context.Background(), takerID, "conv-1")

	assert.NoError(t, err)
	assert.Equal(t, offer.StatusInProgress, res.Offer.Status)
	assert.False(t, res.Offer.HasPendingCancellation())
}
