package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// カート本体（carts）の永続化。明細はCartItemGormRepository。
type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func activeCartQuery(tx *gorm.DB, userID int64) *gorm.DB {
	return tx.
		Where("user_id = ? AND status = ?", userID, model.CartStatusActive).
		Order("id desc")
}

// ACTIVEカートを取得し、無ければ作る。
// FOR UPDATEで同一ユーザーの同時リクエストを直列化する。
func (r *CartGormRepository) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		err := activeCartQuery(locked, userID).First(&cart).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		cart = model.Cart{
			UserID:    userID,
			Status:    model.CartStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if createErr := tx.Create(&cart).Error; createErr != nil {
			//同時作成に負けたら勝った方の行を引く
			if retryErr := activeCartQuery(tx, userID).First(&cart).Error; retryErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	if err := activeCartQuery(r.db.WithContext(ctx), userID).First(&cart).Error; err != nil {
		return model.Cart{}, mapNotFound(err)
	}
	return cart, nil
}

func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", status)
	return requireRow(res)
}

// 明細を空にする。カート行そのものは残す。
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Cart{}).Where("id = ?", cartID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
	})
}
