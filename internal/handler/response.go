package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのHTTPErrorをそのまま返す。それ以外は500に落とす。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// :id パスパラメータ。正のIDだけ許す。
func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// 数値クエリ。未指定はdef。壊れた値は最初の1つだけbadに記録する。
func intQuery(c echo.Context, name string, def int, bad *string) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if *bad == "" {
			*bad = name
		}
		return def
	}
	return n
}

func int64PtrQuery(c echo.Context, name string, bad *string) *int64 {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if *bad == "" {
			*bad = name
		}
		return nil
	}
	return &n
}
