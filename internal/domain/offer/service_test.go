package offer

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock repositories
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offer), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, o *Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, f SearchFilter) ([]*Offer, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Offer), args.Error(1)
}

func (m *MockRepository) FindByParticipant(ctx context.Context, userID int64) ([]*Offer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Offer), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, status Status, takerID sql.NullInt64, completedAt sql.NullTime) (int64, error) {
	args := m.Called(ctx, id, status, takerID, completedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) SetCancellationRequest(ctx context.Context, id string, requesterID int64, reason string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, requesterID, reason, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ResolveCancellation(ctx context.Context, id string, posterID int64, approved bool) (int64, error) {
	args := m.Called(ctx, id, posterID, approved)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) WithdrawCancellation(ctx context.Context, id string, requesterID int64) (int64, error) {
	args := m.Called(ctx, id, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

type MockConversationCounter struct {
	mock.Mock
}

func (m *MockConversationCounter) CountForOffer(ctx context.Context, offerID string) (int64, error) {
	args := m.Called(ctx, offerID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo *MockRepository, convs *MockConversationCounter) *Service {
	if convs == nil {
		convs = new(MockConversationCounter)
	}
	return NewService(repo, convs)
}

func TestService_Create_Success(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, nil)
	o, err := svc.Create(context.Background(), 1, CreateInput{
		CategoryID:  "cat-1",
		Type:        TypeHelpWanted,
		Title:       "Need a hand with calculus",
		Description: "Two sessions before the exam",
		Price:       20,
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, int64(1), o.PosterID)
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.TakerID.Valid)
	repo.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService(new(MockRepository), nil)

	cases := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing category", CreateInput{Type: TypeHelpWanted, Title: "t", Description: "d"}, "category_id"},
		{"bad type", CreateInput{CategoryID: "c", Type: "urgent", Title: "t", Description: "d"}, "type"},
		{"empty title", CreateInput{CategoryID: "c", Type: TypeHelpWanted, Title: "  ", Description: "d"}, "title"},
		{"negative price", CreateInput{CategoryID: "c", Type: TypeHelpWanted, Title: "t", Description: "d", Price: -1}, "price"},
		{"price over cap", CreateInput{CategoryID: "c", Type: TypeHelpWanted, Title: "t", Description: "d", Price: 100000}, "price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tc.in)
			assert.ErrorIs(t, err, ErrValidation)
			var fe *FieldError
			assert.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestService_SetStatus_InProgressRequiresTaker(t *testing.T) {
	svc := newTestService(new(MockRepository), nil)
	_, err := svc.SetStatus(context.Background(), "offer-1", StatusInProgress, nil)
	assert.ErrorIs(t, err, ErrTakerRequired)
}

func TestService_SetStatus_CompletedKeepsTaker(t *testing.T) {
	repo := new(MockRepository)
	o := inProgressOffer(1, 2)
	repo.On("GetByID", mock.Anything, "offer-1").Return(o, nil)
	repo.On("UpdateStatus", mock.Anything, "offer-1", StatusCompleted,
		sql.NullInt64{Int64: 2, Valid: true}, mock.Anything).Return(int64(1), nil)

	svc := newTestService(repo, nil)
	_, err := svc.SetStatus(context.Background(), "offer-1", StatusCompleted, nil)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Complete_NotPoster(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, "offer-1").Return(inProgressOffer(1, 2), nil)

	svc := newTestService(repo, nil)
	_, err := svc.Complete(context.Background(), 2, "offer-1")
	assert.ErrorIs(t, err, ErrNotPoster)
}

func TestService_Reopen_OnlyFromCancelled(t *testing.T) {
	repo := new(MockRepository)
	o := openOffer(1)
	o.Status = StatusCompleted
	repo.On("GetByID", mock.Anything, "offer-1").Return(o, nil)

	svc := newTestService(repo, nil)
	_, err := svc.Reopen(context.Background(), 1, "offer-1")
	assert.ErrorIs(t, err, ErrNotReopenable)
}

func TestService_RequestCancellation_ReasonLength(t *testing.T) {
	svc := newTestService(new(MockRepository), nil)

	err := svc.RequestCancellation(context.Background(), 2, "offer-1", "too short")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.RequestCancellation(context.Background(), 2, "offer-1", "   padded   ")
	assert.ErrorIs(t, err, ErrValidation, "reason is trimmed before length check")
}

func TestService_RequestCancellation_Success(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SetCancellationRequest", mock.Anything, "offer-1", int64(2), "schedule conflict", mock.Anything).
		Return(int64(1), nil)

	svc := newTestService(repo, nil)
	err := svc.RequestCancellation(context.Background(), 2, "offer-1", "schedule conflict")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_RequestCancellation_ZeroRowsClassified(t *testing.T) {
	cases := []struct {
		name    string
		offer   *Offer
		caller  int64
		wantErr error
	}{
		{"not in progress", openOffer(1), 2, ErrNotInProgress},
		{"not the taker", inProgressOffer(1, 2), 3, ErrNotTaker},
		{"already pending", withPendingCancellation(inProgressOffer(1, 2), 2), 2, ErrCancellationPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("SetCancellationRequest", mock.Anything, "offer-1", tc.caller, mock.Anything, mock.Anything).
				Return(int64(0), nil)
			repo.On("GetByID", mock.Anything, "offer-1").Return(tc.offer, nil)

			svc := newTestService(repo, nil)
			err := svc.RequestCancellation(context.Background(), tc.caller, "offer-1", "a perfectly valid reason")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestService_RespondToCancellation_ZeroRowsClassified(t *testing.T) {
	cases := []struct {
		name    string
		offer   *Offer
		caller  int64
		wantErr error
	}{
		{"not the poster", withPendingCancellation(inProgressOffer(1, 2), 2), 2, ErrNotPoster},
		{"nothing pending", inProgressOffer(1, 2), 1, ErrNoPendingCancellation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("ResolveCancellation", mock.Anything, "offer-1", tc.caller, true).
				Return(int64(0), nil)
			repo.On("GetByID", mock.Anything, "offer-1").Return(tc.offer, nil)

			svc := newTestService(repo, nil)
			err := svc.RespondToCancellation(context.Background(), tc.caller, "offer-1", true)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestService_WithdrawCancellation_NotRequester(t *testing.T) {
	repo := new(MockRepository)
	repo.On("WithdrawCancellation", mock.Anything, "offer-1", int64(1)).Return(int64(0), nil)
	repo.On("GetByID", mock.Anything, "offer-1").
		Return(withPendingCancellation(inProgressOffer(1, 2), 2), nil)

	svc := newTestService(repo, nil)
	err := svc.WithdrawCancellation(context.Background(), 1, "offer-1")
	assert.ErrorIs(t, err, ErrNotRequester)
}

func TestService_Delete_BlockedByConversations(t *testing.T) {
	repo := new(MockRepository)
	convs := new(MockConversationCounter)
	repo.On("GetByID", mock.Anything, "offer-1").Return(openOffer(1), nil)
	convs.On("CountForOffer", mock.Anything, "offer-1").Return(int64(2), nil)

	svc := newTestService(repo, convs)
	err := svc.Delete(context.Background(), 1, "offer-1")
	assert.ErrorIs(t, err, ErrDeleteBlocked)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Delete_Success(t *testing.T) {
	repo := new(MockRepository)
	convs := new(MockConversationCounter)
	repo.On("GetByID", mock.Anything, "offer-1").Return(openOffer(1), nil)
	convs.On("CountForOffer", mock.Anything, "offer-1").Return(int64(0), nil)
	repo.On("Delete", mock.Anything, "offer-1").Return(nil)

	svc := newTestService(repo, convs)
	err := svc.Delete(context.Background(), 1, "offer-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Create_MultibyteLengthsCountRunes(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, nil)

	// 200 Cyrillic runes are 400 bytes; the title limit counts characters
	_, err := svc.Create(context.Background(), 1, CreateInput{
		CategoryID:  "cat-1",
		Type:        TypeHelpWanted,
		Title:       strings.Repeat("я", 200),
		Description: strings.Repeat("ü", 2000),
		Price:       20,
	})
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, CreateInput{
		CategoryID:  "cat-1",
		Type:        TypeHelpWanted,
		Title:       strings.Repeat("я", 201),
		Description: "ok",
		Price:       20,
	})
	var fe *FieldError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, "title", fe.Field)
}
