package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse { return errorResponse{Error: msg} }

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}

// AuthJWT はBearerトークンを検証してuser_idとroleをcontextに積む。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return unauthorized(c)
			}

			userID, role, ok := parseAccessToken(cfg.JWTSecret, raw)
			if !ok {
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)
			return next(c)
		}
	}
}

// AuthorizationヘッダからBearerトークンだけを取り出す
func bearerToken(c echo.Context) (string, bool) {
	const prefix = "bearer "

	authz := c.Request().Header.Get("Authorization")
	if len(authz) <= len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return "", false
	}

	raw := strings.TrimSpace(authz[len(prefix):])
	return raw, raw != ""
}

// HS256で署名検証し、subとroleを取り出す
func parseAccessToken(secret string, raw string) (int64, string, bool) {
	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !token.Valid {
		return 0, "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}

	userID := subjectID(claims["sub"])
	role, _ := claims["role"].(string)
	if userID <= 0 || role == "" {
		return 0, "", false
	}
	return userID, role, true
}

// subは数値でも文字列でも受ける
func subjectID(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
