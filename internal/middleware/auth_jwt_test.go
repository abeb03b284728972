package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func issueTestToken(t *testing.T, secret string, userID int64, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runAuthJWT(cfg config.Config, authz string) (*httptest.ResponseRecorder, echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := AuthJWT(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	return rec, c, err
}

func TestAuthJWT_ValidTokenSetsContext(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := issueTestToken(t, "test-secret", 7, "USER")

	rec, c, err := runAuthJWT(cfg, "Bearer "+token)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(CtxUserRoleKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	rec, _, err := runAuthJWT(cfg, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := issueTestToken(t, "other-secret", 7, "USER")

	rec, _, err := runAuthJWT(cfg, "Bearer "+token)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	claims := jwt.MapClaims{
		"sub":  int64(7),
		"role": "USER",
		"iat":  time.Now().Add(-time.Hour).Unix(),
		"exp":  time.Now().Add(-30 * time.Minute).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	rec, _, herr := runAuthJWT(cfg, "Bearer "+signed)
	assert.NoError(t, herr)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := issueTestToken(t, "test-secret", 7, "USER")

	rec, _, err := runAuthJWT(cfg, "Basic "+token)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxUserRoleKey, "ADMIN")

	h := AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_RejectsUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxUserRoleKey, "USER")

	h := AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
