package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /paymentsのHTTP（プロバイダ注文の作成と署名検証）
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type CreatePaymentOrderRequest struct {
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payments")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/create-order", h.createOrder)
	g.POST("/verify", h.verify)
}

func (h *PaymentHandler) createOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreatePaymentOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreatePaymentOrder(c.Request().Context(), userID, usecase.CreatePaymentOrderInput{
		Currency: req.Currency,
		Notes:    req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.VerifyPayment(c.Request().Context(), userID, usecase.VerifyPaymentInput{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
