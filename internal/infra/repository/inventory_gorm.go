package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

// 在庫はplants.stockの条件付きUPDATEだけで扱う。
// 行ロックを取らずに同時注文の売り越しを防ぐ。
type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) stock(ctx context.Context, plantID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Plant{}).Where("id = ?", plantID)
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, plantID int64, newStock int64) error {
	return requireRow(r.stock(ctx, plantID).Update("stock", newStock))
}

// WHERE stock >= qty が成立した行だけ減算する。0行なら在庫不足。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, plantID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("id = ? AND stock >= ?", plantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// キャンセル時の在庫戻し
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, plantID int64, qty int64) error {
	return requireRow(r.stock(ctx, plantID).Update("stock", gorm.Expr("stock + ?", qty)))
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
