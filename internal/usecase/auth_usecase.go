package usecase

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// 登録トークンの有効期限
const pendingRegistrationTTL = 15 * time.Minute

type AuthUsecase struct {
	cfg     config.Config
	users   repo.UserRepository
	pending repo.PendingRegistrationRepository
}

func NewAuthUsecase(
	cfg config.Config,
	users repo.UserRepository,
	pending repo.PendingRegistrationRepository,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:     cfg,
		users:   users,
		pending: pending,
	}
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenとcodeで本登録を完了する（codeはメール送信を想定。今はレスポンスに含める）。
type AuthRegisterResponse struct {
	Token     string    `json:"token"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthVerifyRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

type AuthVerifyResponse struct {
	User UserDTO `json:"user"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

// Register は仮登録を作る。ユーザーはまだ作らない。
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	//メール重複チェック
	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil && err != repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return nil, NewHTTPError(http.StatusConflict, "email already registered")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	code, err := newVerificationCode()
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	p := model.PendingRegistration{
		Token:        uuid.NewString(),
		Email:        email,
		PasswordHash: string(pwHash),
		Code:         code,
		ExpiresAt:    time.Now().Add(pendingRegistrationTTL),
		CreatedAt:    time.Now(),
	}

	if err := u.pending.Create(ctx, p); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ついでに期限切れの掃除（失敗しても登録は続行）
	_ = u.pending.DeleteExpired(ctx)

	return &AuthRegisterResponse{
		Token:     p.Token,
		Code:      p.Code,
		ExpiresAt: p.ExpiresAt,
	}, nil
}

// VerifyRegistration はtoken+codeで本登録を完了する。tokenは1回だけ。
func (u *AuthUsecase) VerifyRegistration(ctx context.Context, req AuthVerifyRequest) (*AuthVerifyResponse, error) {
	token := strings.TrimSpace(req.Token)
	code := strings.TrimSpace(req.Code)
	if token == "" || code == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "token and code required")
	}

	p, err := u.pending.FindByToken(ctx, token)
	if err == repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//期限切れは使えない
	if p.ExpiresAt.Before(time.Now()) {
		_ = u.pending.DeleteByToken(ctx, token)
		return nil, NewHTTPError(http.StatusUnauthorized, "token expired")
	}

	if p.Code != code {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid code")
	}

	user := &model.User{
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         model.RoleUser,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//検証までの間に同じメールが登録済みになった
		return nil, NewHTTPError(http.StatusConflict, "email already registered")
	}

	//使用済みtokenを消す（単回使用）
	if err := u.pending.DeleteByToken(ctx, token); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return &AuthVerifyResponse{User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil || user == nil {
		//存在の有無は漏らさない
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.CanAuthenticate() {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//last_login更新
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken: accessToken,
			ExpiresIn:   expiresIn,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if !user.CanAuthenticate() {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, int, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}

func validateEmail(email string) error {
	if email == "" {
		return NewHTTPError(http.StatusBadRequest, "email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	if len(password) > 72 {
		//bcryptの上限
		return NewHTTPError(http.StatusBadRequest, "password too long")
	}
	return nil
}

// 6桁の確認コード
func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := n.Int64()

	digits := []byte{
		byte('0' + code/100000%10),
		byte('0' + code/10000%10),
		byte('0' + code/1000%10),
		byte('0' + code/100%10),
		byte('0' + code/10%10),
		byte('0' + code%10),
	}
	return string(digits), nil
}
