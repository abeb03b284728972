package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	items := make([]model.CartItem, 0, 8)
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// (cart_id, plant_id)のunique制約を使ったatomicな加算upsert
func (r *CartItemGormRepository) UpsertByCartAndPlant(ctx context.Context, cartID int64, plantID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	now := time.Now()
	item := model.CartItem{
		CartID:    cartID,
		PlantID:   plantID,
		Quantity:  addQty,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "plant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", addQty),
				"updated_at": now,
			}),
		}).
		Create(&item).Error
}

func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)
	return requireRow(res)
}

func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	return requireRow(r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID))
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem
	if err := r.db.WithContext(ctx).First(&item, cartItemID).Error; err != nil {
		return model.CartItem{}, mapNotFound(err)
	}
	return item, nil
}

// 明細がそのユーザーのカートに属するか
func (r *CartItemGormRepository) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", cartItemID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
