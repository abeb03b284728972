package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/gateway"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newPaymentUsecaseForTest() (*usecase.PaymentUsecase, *CartRepoMock, *CartItemRepoMock, *CartPlantRepoMock, *GatewayMock) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	plantRepo := new(CartPlantRepoMock)
	gw := new(GatewayMock)
	return usecase.NewPaymentUsecase(cartRepo, itemRepo, plantRepo, gw), cartRepo, itemRepo, plantRepo, gw
}

// 金額はサーバ側でカートから計算する（割引適用後）
func TestPaymentUsecase_CreatePaymentOrder_AmountFromCart(t *testing.T) {
	uc, cartRepo, itemRepo, plantRepo, gw := newPaymentUsecaseForTest()

	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, PlantID: 100, Quantity: 2},
	}, nil)
	//1000の10%引き → 900 × 2 = 1800
	plantRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Plant{ID: 100, Price: 1000, DiscountPercentage: 10, Stock: 5, IsActive: true}, nil)

	gw.On("CreateOrder", mock.Anything, int64(1800), "INR", mock.AnythingOfType("string"), map[string]string(nil)).
		Return(gateway.Order{ID: "order_abc", Amount: 1800, Currency: "INR", Status: "created"}, nil)

	out, err := uc.CreatePaymentOrder(context.Background(), 1, usecase.CreatePaymentOrderInput{})
	assert.NoError(t, err)
	assert.Equal(t, "order_abc", out.ID)
	assert.Equal(t, int64(1800), out.Amount)
	assert.NotEmpty(t, out.Receipt)

	gw.AssertExpectations(t)
}

// カートが空なら409でゲートウェイには行かない
func TestPaymentUsecase_CreatePaymentOrder_EmptyCart(t *testing.T) {
	uc, cartRepo, itemRepo, _, gw := newPaymentUsecaseForTest()

	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	_, err := uc.CreatePaymentOrder(context.Background(), 1, usecase.CreatePaymentOrderInput{})
	assertErrContains(t, err, "cart empty")

	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ゲートウェイ停止は502
func TestPaymentUsecase_CreatePaymentOrder_GatewayUnavailable(t *testing.T) {
	uc, cartRepo, itemRepo, plantRepo, gw := newPaymentUsecaseForTest()

	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, PlantID: 100, Quantity: 1},
	}, nil)
	plantRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Plant{ID: 100, Price: 500, Stock: 5, IsActive: true}, nil)

	gw.On("CreateOrder", mock.Anything, int64(500), "INR", mock.AnythingOfType("string"), map[string]string(nil)).
		Return(gateway.Order{}, gateway.ErrUnavailable)

	_, err := uc.CreatePaymentOrder(context.Background(), 1, usecase.CreatePaymentOrderInput{})
	assertErrContains(t, err, "payment gateway unavailable")
}

// 不正な通貨コードは400
func TestPaymentUsecase_CreatePaymentOrder_InvalidCurrency(t *testing.T) {
	uc, _, _, _, _ := newPaymentUsecaseForTest()

	_, err := uc.CreatePaymentOrder(context.Background(), 1, usecase.CreatePaymentOrderInput{Currency: "RUPEES"})
	assertErrContains(t, err, "invalid currency")
}

// 署名不一致はエラーではなくverified=false
func TestPaymentUsecase_VerifyPayment_MismatchIsFalse(t *testing.T) {
	uc, _, _, _, gw := newPaymentUsecaseForTest()

	gw.On("VerifySignature", "order_abc", "pay_123", "tampered").Return(false)

	out, err := uc.VerifyPayment(context.Background(), 1, usecase.VerifyPaymentInput{
		GatewayOrderID: "order_abc",
		PaymentID:      "pay_123",
		Signature:      "tampered",
	})
	assert.NoError(t, err)
	assert.False(t, out.Verified)
}

func TestPaymentUsecase_VerifyPayment_Success(t *testing.T) {
	uc, _, _, _, gw := newPaymentUsecaseForTest()

	gw.On("VerifySignature", "order_abc", "pay_123", "good").Return(true)

	out, err := uc.VerifyPayment(context.Background(), 1, usecase.VerifyPaymentInput{
		GatewayOrderID: "order_abc",
		PaymentID:      "pay_123",
		Signature:      "good",
	})
	assert.NoError(t, err)
	assert.True(t, out.Verified)
}
