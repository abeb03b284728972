package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type AuthUserRepoMock struct{ mock.Mock }

func (m *AuthUserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *AuthUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type AuthPendingRepoMock struct{ mock.Mock }

func (m *AuthPendingRepoMock) Create(ctx context.Context, p model.PendingRegistration) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *AuthPendingRepoMock) FindByToken(ctx context.Context, token string) (model.PendingRegistration, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(model.PendingRegistration)
	return p, args.Error(1)
}

func (m *AuthPendingRepoMock) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *AuthPendingRepoMock) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newAuthUsecaseForTest() (*usecase.AuthUsecase, *AuthUserRepoMock, *AuthPendingRepoMock) {
	users := new(AuthUserRepoMock)
	pending := new(AuthPendingRepoMock)
	cfg := config.Config{JWTSecret: "test-secret"}
	return usecase.NewAuthUsecase(cfg, users, pending), users, pending
}

// =====================
// Register
// =====================

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	uc, users, _ := newAuthUsecaseForTest()

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "taro@example.com",
		Password: "password123",
	})
	assertErrContains(t, err, "email already registered")
}

func TestAuthUsecase_Register_ShortPassword(t *testing.T) {
	uc, _, _ := newAuthUsecaseForTest()

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "taro@example.com",
		Password: "short",
	})
	assertErrContains(t, err, "at least 8 characters")
}

// 仮登録：平文は保存せず、tokenとcodeと期限を持つ
func TestAuthUsecase_Register_CreatesPending(t *testing.T) {
	uc, users, pending := newAuthUsecaseForTest()

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, repo.ErrNotFound)

	pending.On("Create", mock.Anything, mock.MatchedBy(func(p model.PendingRegistration) bool {
		if p.Email != "taro@example.com" || p.Token == "" || len(p.Code) != 6 {
			return false
		}
		//パスワードはハッシュで保存される
		if p.PasswordHash == "password123" {
			return false
		}
		if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("password123")) != nil {
			return false
		}
		//期限は約15分後
		return p.ExpiresAt.After(time.Now().Add(14 * time.Minute))
	})).Return(nil)
	pending.On("DeleteExpired", mock.Anything).Return(nil)

	out, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    " Taro@Example.com ",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, 6, len(out.Code))

	pending.AssertExpectations(t)
}

// =====================
// VerifyRegistration
// =====================

func TestAuthUsecase_VerifyRegistration_ExpiredToken(t *testing.T) {
	uc, users, pending := newAuthUsecaseForTest()

	pending.On("FindByToken", mock.Anything, "tok").Return(model.PendingRegistration{
		Token:     "tok",
		Email:     "taro@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	pending.On("DeleteByToken", mock.Anything, "tok").Return(nil)

	_, err := uc.VerifyRegistration(context.Background(), usecase.AuthVerifyRequest{Token: "tok", Code: "123456"})
	assertErrContains(t, err, "token expired")

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	//期限切れtokenは消される
	pending.AssertCalled(t, "DeleteByToken", mock.Anything, "tok")
}

func TestAuthUsecase_VerifyRegistration_WrongCode(t *testing.T) {
	uc, users, pending := newAuthUsecaseForTest()

	pending.On("FindByToken", mock.Anything, "tok").Return(model.PendingRegistration{
		Token:     "tok",
		Email:     "taro@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil)

	_, err := uc.VerifyRegistration(context.Background(), usecase.AuthVerifyRequest{Token: "tok", Code: "999999"})
	assertErrContains(t, err, "invalid code")

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_VerifyRegistration_UnknownToken(t *testing.T) {
	uc, _, pending := newAuthUsecaseForTest()

	pending.On("FindByToken", mock.Anything, "nope").Return(model.PendingRegistration{}, repo.ErrNotFound)

	_, err := uc.VerifyRegistration(context.Background(), usecase.AuthVerifyRequest{Token: "nope", Code: "123456"})
	assertErrContains(t, err, "invalid token")
}

// 成功：ユーザー作成＋tokenは単回使用で消す
func TestAuthUsecase_VerifyRegistration_Success(t *testing.T) {
	uc, users, pending := newAuthUsecaseForTest()

	pending.On("FindByToken", mock.Anything, "tok").Return(model.PendingRegistration{
		Token:        "tok",
		Email:        "taro@example.com",
		PasswordHash: "$2a$10$hash",
		Code:         "123456",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}, nil)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "taro@example.com" &&
			u.PasswordHash == "$2a$10$hash" &&
			u.Role == model.RoleUser &&
			u.IsActive
	})).Return(nil).Run(func(args mock.Arguments) {
		u := args.Get(1).(*model.User)
		u.ID = 7
	})

	pending.On("DeleteByToken", mock.Anything, "tok").Return(nil)

	out, err := uc.VerifyRegistration(context.Background(), usecase.AuthVerifyRequest{Token: "tok", Code: "123456"})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.User.ID)
	assert.Equal(t, "USER", out.User.Role)

	users.AssertExpectations(t)
	pending.AssertExpectations(t)
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	uc, users, _ := newAuthUsecaseForTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", PasswordHash: string(hash), Role: model.RoleUser, IsActive: true,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "taro@example.com",
		Password: "wrong-password",
	})
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	uc, users, _ := newAuthUsecaseForTest()

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", IsActive: false,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "taro@example.com",
		Password: "whatever1",
	})
	assertErrContains(t, err, "forbidden")
}

// 成功：HS256で検証できるJWTが返る
func TestAuthUsecase_Login_Success(t *testing.T) {
	uc, users, _ := newAuthUsecaseForTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 7, Email: "taro@example.com", PasswordHash: string(hash), Role: model.RoleAdmin, IsActive: true,
	}, nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	out, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "taro@example.com",
		Password: "correct-password",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.User.ID)
	assert.Equal(t, 900, out.Token.ExpiresIn)

	token, parseErr := jwt.Parse(out.Token.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, parseErr)
	assert.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}
