package gateway

import (
	"context"
	"errors"
)

// 決済プロバイダが落ちている/届かない（502扱い）
var ErrUnavailable = errors.New("payment gateway unavailable")

// プロバイダが注文作成を拒否した（400扱い）
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return "payment gateway rejected: " + e.Message
}

// プロバイダ側の注文
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// 決済ゲートウェイの約束。
// VerifySignatureの不一致はfalseで返す（エラーではない）。
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string, notes map[string]string) (Order, error)
	VerifySignature(orderID string, paymentID string, signature string) bool
}
