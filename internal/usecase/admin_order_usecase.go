package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 許可される遷移だけtrue。
// PENDING → CONFIRMED / CANCELED
// CONFIRMED → SHIPPED / CANCELED
// SHIPPED → DELIVERED
// DELIVERED / CANCELED は終端。
func canTransition(from model.OrderStatus, to model.OrderStatus) bool {
	switch from {
	case model.OrderStatusPending:
		return to == model.OrderStatusConfirmed || to == model.OrderStatusCanceled
	case model.OrderStatusConfirmed:
		return to == model.OrderStatusShipped || to == model.OrderStatusCanceled
	case model.OrderStatusShipped:
		return to == model.OrderStatusDelivered
	default:
		return false
	}
}

// 注文一覧（管理者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
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

// ステータス更新（CANCELEDなら在庫戻し）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	switch newStatus {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCanceled:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}

		// 遷移ガード
		if !canTransition(o.Status, newStatus) {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		// キャンセル時は全明細の在庫を戻す
		if newStatus == model.OrderStatusCanceled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.PlantID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		// ステータス更新
		beforeStatus := string(o.Status)
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + beforeStatus + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}
