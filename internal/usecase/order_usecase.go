package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/gateway"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	gw        gateway.PaymentGateway
}

func NewOrderUsecase(tx repo.TransactionManager, addresses repo.AddressRepository, gw gateway.PaymentGateway) *OrderUsecase {
	return &OrderUsecase{tx: tx, addresses: addresses, gw: gw}
}

type PlaceOrderInput struct {
	AddressID      int64
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

type OrderItemOutput struct {
	PlantID  int64  `json:"plant_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Status     string            `json:"status"`
	TotalPrice int64             `json:"total_price"`
	PaymentID  string            `json:"payment_id"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

// PlaceOrder は検証済みの決済とカートから注文を確定する。
// 在庫減算・注文作成・カートクリアは1トランザクション（全部成功か全部失敗）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	if strings.TrimSpace(in.GatewayOrderID) == "" || strings.TrimSpace(in.PaymentID) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment")
	}

	//未検証の決済では注文を作らない。署名照合が最初。
	if !u.gw.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment verification failed")
	}

	//address_idの存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//所有チェック（他人の住所なら403）
	if addr.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	var out OrderOutput

	//注文処理はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じ決済IDなら既存注文を返す（リトライで二重注文を作らない）
		existing, found, err := r.Orders().FindByPaymentID(ctx, in.PaymentID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//他人の決済IDを使い回しても注文本体は返さない
			if existing.UserID != userID {
				return NewHTTPError(http.StatusConflict, "payment conflict")
			}
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusConflict, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusConflict, "cart empty")
		}

		//価格は必ずサーバ側でカタログから計算し直す。
		//クライアントが送ってきた価格は使わない。
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var total int64 = 0

		for _, ci := range cartItems {
			p, err := r.Plants().FindByID(ctx, ci.PlantID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			//在庫減算（足りないなら false）。
			//1つでも足りなければ注文全体が失敗し、ここまでの減算も戻る。
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.PlantID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock: "+p.Name)
			}

			//割引適用後の価格スナップショット
			unitPrice := p.EffectivePrice()
			now := time.Now()
			orderItems = append(orderItems, model.OrderItem{
				PlantID:           ci.PlantID,
				PlantNameSnapshot: p.Name,
				UnitPriceSnapshot: unitPrice,
				Quantity:          ci.Quantity,
				CreatedAt:         now,
			})

			total += unitPrice * ci.Quantity
		}

		// 注文作成（配送先は住所のスナップショット）
		now := time.Now()
		order := model.Order{
			UserID:         userID,
			Status:         model.OrderStatusPending,
			TotalPrice:     total,
			GatewayOrderID: in.GatewayOrderID,
			PaymentID:      in.PaymentID,
			ShipName:       addr.Name,
			ShipPostalCode: addr.PostalCode,
			ShipPrefecture: addr.Prefecture,
			ShipCity:       addr.City,
			ShipLine1:      addr.Line1,
			ShipLine2:      addr.Line2,
			ShipPhone:      addr.Phone,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//unique違反（同時に同じ決済IDが入った等）はもう一度検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByPaymentID(ctx, in.PaymentID)
			if err2 != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !found2 {
				//unique違反ではなくただの保存失敗
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if ex2.UserID != userID {
				return NewHTTPError(http.StatusConflict, "payment conflict")
			}
			items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
			if err3 != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(ex2, items2)
			return nil
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			PlantID:  it.PlantID,
			Name:     it.PlantNameSnapshot,
			Price:    it.UnitPriceSnapshot,
			Quantity: it.Quantity,
		})
	}

	return OrderOutput{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		PaymentID:  o.PaymentID,
		CreatedAt:  o.CreatedAt,
		Items:      outItems,
	}
}
