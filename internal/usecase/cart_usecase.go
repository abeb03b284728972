package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	plantRepo    repo.PlantRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	plantRepo repo.PlantRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		plantRepo:    plantRepo,
	}
}

// priceは表示用の現在売価（割引適用後）。確定価格は注文時に計算し直す。
type CartItemResponse struct {
	ID        int64  `json:"id"`
	PlantID   int64  `json:"plant_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	PlantID  int64
	Quantity int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// 販売可能な植物を引く。存在しない・非公開は400。
func (u *CartUsecase) sellablePlant(ctx context.Context, plantID int64) (model.Plant, error) {
	p, err := u.plantRepo.FindByID(ctx, plantID)
	if err == repo.ErrNotFound {
		return model.Plant{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return model.Plant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return model.Plant{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	return p, nil
}

// 明細が本人のカートのものでなければ「存在しない扱い」
func (u *CartUsecase) requireOwnedItem(ctx context.Context, userID int64, cartItemID int64) error {
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 同一植物は数量加算。加算後の数量が在庫を超えるなら拒否。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.PlantID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid plant_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.sellablePlant(ctx, in.PlantID)
	if err != nil {
		return CartResponse{}, err
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var inCart int64
	for _, it := range items {
		if it.PlantID == in.PlantID {
			inCart = it.Quantity
			break
		}
	}
	if inCart+in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpsertByCartAndPlant(ctx, cart.ID, in.PlantID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更。0は明細削除として扱う（quantity=0の行は保存しない）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	if err := u.requireOwnedItem(ctx, userID, cartItemID); err != nil {
		return CartResponse{}, err
	}

	if in.Quantity == 0 {
		return u.DeleteCartItem(ctx, userID, cartItemID)
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.sellablePlant(ctx, item.PlantID)
	if err != nil {
		return CartResponse{}, err
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.currentCartResponse(ctx, userID)
}

func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.requireOwnedItem(ctx, userID, cartItemID); err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.currentCartResponse(ctx, userID)
}

// ACTIVEカートを引き直して返却形を作る
func (u *CartUsecase) currentCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 明細と現在売価から返却形を組む。非公開になった植物は表示から除く。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		p, err := u.plantRepo.FindByID(ctx, it.PlantID)
		if err != nil || !p.IsActive {
			continue
		}

		price := p.EffectivePrice()
		line := price * it.Quantity
		resp.Items = append(resp.Items, CartItemResponse{
			ID:        it.ID,
			PlantID:   it.PlantID,
			Name:      p.Name,
			Price:     price,
			Quantity:  it.Quantity,
			LineTotal: line,
		})
		resp.Total += line
	}
	return resp, nil
}
