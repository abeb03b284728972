package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/gateway"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// PaymentUsecase は決済ゲートウェイとの往復を扱う。
// 金額は必ずサーバ側でカートから計算する（クライアントの金額は受け取らない）。
type PaymentUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	plantRepo    repo.PlantRepository
	gw           gateway.PaymentGateway
}

func NewPaymentUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	plantRepo repo.PlantRepository,
	gw gateway.PaymentGateway,
) *PaymentUsecase {
	return &PaymentUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		plantRepo:    plantRepo,
		gw:           gw,
	}
}

type CreatePaymentOrderInput struct {
	Currency string
	Notes    map[string]string
}

type GatewayOrderOutput struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Receipt  string `json:"receipt"`
}

// CreatePaymentOrder はプロバイダ側に決済用の注文を作る。
// 失敗してもこちら側には何も残らない（自動リトライはしない。再試行はユーザー操作）。
func (u *PaymentUsecase) CreatePaymentOrder(ctx context.Context, userID int64, in CreatePaymentOrderInput) (GatewayOrderOutput, error) {
	if userID <= 0 {
		return GatewayOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "INR"
	}
	if len(currency) != 3 {
		return GatewayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid currency")
	}

	//カートから金額を計算
	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return GatewayOrderOutput{}, NewHTTPError(http.StatusConflict, "cart empty")
	}
	if err != nil {
		return GatewayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return GatewayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(items) == 0 {
		return GatewayOrderOutput{}, NewHTTPError(http.StatusConflict, "cart empty")
	}

	var amount int64 = 0
	for _, it := range items {
		p, err := u.plantRepo.FindByID(ctx, it.PlantID)
		if err == repo.ErrNotFound {
			return GatewayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return GatewayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return GatewayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		amount += p.EffectivePrice() * it.Quantity
	}

	receipt := uuid.NewString()

	gwOrder, err := u.gw.CreateOrder(ctx, amount, currency, receipt, in.Notes)
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			return GatewayOrderOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
		}
		var rej *gateway.RejectedError
		if errors.As(err, &rej) {
			return GatewayOrderOutput{}, NewHTTPError(http.StatusBadRequest, rej.Message)
		}
		return GatewayOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return GatewayOrderOutput{
		ID:       gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		Status:   gwOrder.Status,
		Receipt:  receipt,
	}, nil
}

type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

type VerifyPaymentOutput struct {
	Verified bool `json:"verified"`
}

// VerifyPayment は署名の照合結果を返す。不一致はエラーではなくfalse。
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, userID int64, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	if userID <= 0 {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.GatewayOrderID) == "" || strings.TrimSpace(in.PaymentID) == "" {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment")
	}

	ok := u.gw.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature)
	return VerifyPaymentOutput{Verified: ok}, nil
}
