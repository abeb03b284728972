package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算
	UpsertByCartAndPlant(ctx context.Context, cartID int64, plantID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
