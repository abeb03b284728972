package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/gateway"

	"go.uber.org/zap"
)

// プロバイダへのHTTP往復はここだけ。タイムアウトは必ず付ける。
const defaultTimeout = 10 * time.Second

type Client struct {
	apiURL    string
	keyID     string
	keySecret string
	http      *http.Client
	logger    *zap.Logger
}

func NewClient(apiURL string, keyID string, keySecret string, logger *zap.Logger) *Client {
	return &Client{
		apiURL:    strings.TrimRight(apiURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    logger,
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Error    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateOrder はプロバイダ側に注文を作る。
// ネットワーク障害・プロバイダ5xxは gateway.ErrUnavailable。
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency string, receipt string, notes map[string]string) (gateway.Order, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return gateway.Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return gateway.Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		//タイムアウト含む。未検証のまま先に進まない
		c.logger.Warn("gateway create order failed", zap.Error(err))
		return gateway.Order{}, gateway.ErrUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		c.logger.Warn("gateway returned server error", zap.Int("status", resp.StatusCode))
		return gateway.Order{}, gateway.ErrUnavailable
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return gateway.Order{}, fmt.Errorf("decode gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		rej := &gateway.RejectedError{Code: "BAD_REQUEST", Message: "order rejected"}
		if out.Error != nil {
			rej.Code = out.Error.Code
			rej.Message = out.Error.Description
		}
		return gateway.Order{}, rej
	}

	return gateway.Order{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Status:   out.Status,
	}, nil
}

// VerifySignature は orderID|paymentID のHMAC-SHA256を再計算して照合する。
// 比較は定数時間。署名不一致はfalse（エラー扱いにしない）。
func (c *Client) VerifySignature(orderID string, paymentID string, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
