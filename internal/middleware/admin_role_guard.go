package middleware

import (
	"net/http"

	"app/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AdminRoleGuard はAuthJWTの後段に置く。ADMIN以外は通さない。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)

			switch model.Role(role) {
			case model.RoleAdmin:
				return next(c)
			case "":
				//AuthJWTを通っていない
				return unauthorized(c)
			default:
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
		}
	}
}
