package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/gateway"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClient_CreateOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":1800,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_id", "key_secret", zap.NewNop())

	out, err := c.CreateOrder(context.Background(), 1800, "INR", "receipt-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, "order_abc", out.ID)
	assert.Equal(t, int64(1800), out.Amount)
	assert.Equal(t, "created", out.Status)
}

// プロバイダ5xxは「利用不可」として返す
func TestClient_CreateOrder_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_id", "key_secret", zap.NewNop())

	_, err := c.CreateOrder(context.Background(), 100, "INR", "receipt-1", nil)
	assert.True(t, errors.Is(err, gateway.ErrUnavailable))
}

// 接続できない場合も「利用不可」
func TestClient_CreateOrder_NetworkErrorIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "key_id", "key_secret", zap.NewNop())

	_, err := c.CreateOrder(context.Background(), 100, "INR", "receipt-1", nil)
	assert.True(t, errors.Is(err, gateway.ErrUnavailable))
}

// 4xxはRejectedError（エラーコード付き）
func TestClient_CreateOrder_RejectedWithCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_id", "key_secret", zap.NewNop())

	_, err := c.CreateOrder(context.Background(), 1, "INR", "receipt-1", nil)

	var rej *gateway.RejectedError
	assert.True(t, errors.As(err, &rej))
	assert.Equal(t, "BAD_REQUEST_ERROR", rej.Code)
	assert.Equal(t, "amount too small", rej.Message)
}

func signFor(secret string, orderID string, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestClient_VerifySignature_Valid(t *testing.T) {
	c := NewClient("http://example.invalid", "key_id", "key_secret", zap.NewNop())

	sig := signFor("key_secret", "order_abc", "pay_123")
	assert.True(t, c.VerifySignature("order_abc", "pay_123", sig))
}

// 1バイトでも違えばfalse
func TestClient_VerifySignature_TamperedIsFalse(t *testing.T) {
	c := NewClient("http://example.invalid", "key_id", "key_secret", zap.NewNop())

	sig := signFor("key_secret", "order_abc", "pay_123")
	tampered := "0" + sig[1:]
	if tampered == sig {
		tampered = "1" + sig[1:]
	}
	assert.False(t, c.VerifySignature("order_abc", "pay_123", tampered))
}

// 別の決済IDに付け替えてもfalse
func TestClient_VerifySignature_DifferentPaymentIsFalse(t *testing.T) {
	c := NewClient("http://example.invalid", "key_id", "key_secret", zap.NewNop())

	sig := signFor("key_secret", "order_abc", "pay_123")
	assert.False(t, c.VerifySignature("order_abc", "pay_999", sig))
}

func TestClient_VerifySignature_EmptyInputsAreFalse(t *testing.T) {
	c := NewClient("http://example.invalid", "key_id", "key_secret", zap.NewNop())

	assert.False(t, c.VerifySignature("", "pay_123", "sig"))
	assert.False(t, c.VerifySignature("order_abc", "", "sig"))
	assert.False(t, c.VerifySignature("order_abc", "pay_123", ""))
}
