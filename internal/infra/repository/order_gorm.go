package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, orderID).Error; err != nil {
		return model.Order{}, mapNotFound(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	byUser := func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", userID) }

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(byUser).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]model.Order, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(byUser).
		Order("id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	return requireRow(res)
}

// 決済IDのunique indexが冪等性の根拠。見つからないのはエラーではない。
func (r *OrderGormRepository) FindByPaymentID(ctx context.Context, paymentID string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func adminOrderScope(f repo.AdminOrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.From != nil {
			db = db.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("created_at <= ?", *f.To)
		}
		return db
	}
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Scopes(adminOrderScope(f)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	orders := make([]model.Order, 0, f.Limit)
	err = r.db.WithContext(ctx).
		Scopes(adminOrderScope(f)).
		Order("id desc").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
