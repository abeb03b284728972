package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	appmw "app/internal/middleware"
)

// New はechoを組み立てて返す。起動はmain側。
func New(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger(logger))

	return e
}
