package usecase_test

import (
	"context"
	"errors"
	"testing"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newAuthUsecase(users *UserRepoMock, carts *CartRepoMock) *usecase.AuthUsecase {
	cfg := config.Config{JWTSecret: "test-secret"}
	return usecase.NewAuthUsecase(cfg, users, carts, zap.NewNop())
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestAuth_Register_OK(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// Plaintext must never reach the repository.
		return u.Email == "a@example.com" &&
			u.PasswordHash != "password123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil &&
			u.IsActive
	})).Return(nil)

	out, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "a@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", out.User.Email)
	users.AssertExpectations(t)
}

func TestAuth_Register_BadEmail(t *testing.T) {
	uc := newAuthUsecase(new(UserRepoMock), new(CartRepoMock))

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "not-an-email",
		Password: "password123",
	})

	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestAuth_Register_ShortPassword(t *testing.T) {
	uc := newAuthUsecase(new(UserRepoMock), new(CartRepoMock))

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "a@example.com",
		Password: "short",
	})

	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	users.On("Create", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "a@example.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, usecase.ErrConflict)
}

func TestAuth_Login_OK(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	stored := &model.User{
		ID:           42,
		Email:        "a@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(stored, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@example.com",
		Password: "password123",
	}, "")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.User.ID)
	assert.NotEmpty(t, out.Token.AccessToken)
	assert.Equal(t, 900, out.Token.ExpiresIn)
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	stored := &model.User{
		ID:           42,
		Email:        "a@example.com",
		PasswordHash: mustHash(t, "password123"),
		IsActive:     true,
	}
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(stored, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@example.com",
		Password: "wrong-password",
	}, "")

	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestAuth_Login_UnknownEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	users.On("FindByEmail", mock.Anything, "who@example.com").Return(nil, errors.New("record not found"))

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "who@example.com",
		Password: "password123",
	}, "")

	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestAuth_Login_InactiveUser(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	stored := &model.User{
		ID:           42,
		Email:        "a@example.com",
		PasswordHash: mustHash(t, "password123"),
		IsActive:     false,
	}
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(stored, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@example.com",
		Password: "password123",
	}, "")

	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestAuth_Login_MergesGuestCart(t *testing.T) {
	users := new(UserRepoMock)
	carts := new(CartRepoMock)
	uc := newAuthUsecase(users, carts)

	stored := &model.User{
		ID:           42,
		Email:        "a@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(stored, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	carts.On("MergeGuestIntoUser", mock.Anything, "guest-abc", int64(42)).Return(nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@example.com",
		Password: "password123",
	}, "guest-abc")

	assert.NoError(t, err)
	carts.AssertExpectations(t)
}

func TestAuth_Login_MergeFailureDoesNotBlockLogin(t *testing.T) {
	users := new(UserRepoMock)
	carts := new(CartRepoMock)
	uc := newAuthUsecase(users, carts)

	stored := &model.User{
		ID:           42,
		Email:        "a@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(stored, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	carts.On("MergeGuestIntoUser", mock.Anything, "guest-abc", int64(42)).Return(errors.New("db down"))

	out, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@example.com",
		Password: "password123",
	}, "guest-abc")

	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token.AccessToken)
}

func TestAuth_Me_OK(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	stored := &model.User{ID: 42, Email: "a@example.com", Role: model.RoleUser, IsActive: true}
	users.On("FindByID", mock.Anything, int64(42)).Return(stored, nil)

	out, err := uc.Me(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", out.Email)
}

func TestAuth_Me_Unknown(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthUsecase(users, new(CartRepoMock))

	users.On("FindByID", mock.Anything, int64(9)).Return(nil, errors.New("record not found"))

	_, err := uc.Me(context.Background(), 9)

	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}
