package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Plant      *handler.PlantHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	Payment    *handler.PaymentHandler
	Address    *handler.AddressHandler
	AdminPlant *handler.AdminPlantHandler
	AdminOrder *handler.AdminOrderHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg)
	h.Plant.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Payment.RegisterRoutes(e, cfg)
	h.Address.RegisterRoutes(e, cfg)
	h.AdminPlant.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
}
