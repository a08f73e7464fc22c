package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 1 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type fakeIssuer struct{}

func (fakeIssuer) GenerateToken(userID int64) (string, error) { return "token", nil }

func TestService_Register_Success(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, ErrUserNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, fakeIssuer{})
	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: "hunter2hunter2",
		Name:     "Alice",
	})

	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email, "email is normalized")
	assert.Equal(t, "token", res.AccessToken)
	assert.NotEqual(t, "hunter2hunter2", res.User.PasswordHash)
}

func TestService_Register_EmailTaken(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&User{ID: 1}, nil)

	svc := NewService(repo, fakeIssuer{})
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		Name:     "Alice",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&User{ID: 1, Email: "alice@example.com", PasswordHash: string(hash)}, nil)

	svc := NewService(repo, fakeIssuer{})
	_, err := svc.Login(context.Background(), "alice@example.com", "wrong-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownEmailSameError(t *testing.T) {
	// unknown email and wrong password are indistinguishable to the caller
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)

	svc := NewService(repo, fakeIssuer{})
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&User{ID: 1, Email: "alice@example.com", PasswordHash: string(hash)}, nil)

	svc := NewService(repo, fakeIssuer{})
	res, err := svc.Login(context.Background(), "alice@example.com", "correct-password")

	assert.NoError(t, err)
	assert.Equal(t, "token", res.AccessToken)
}
