package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type AdminAuditRepoMock struct{ mock.Mock }

func (m *AdminAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AdminAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in AdminOrderUsecase tests")
}

type adminOrderFixture struct {
	tx        *OrderTxManagerMock
	orders    *OrderRepoMock2
	items     *OrderItemRepoMock
	inventory *AdminInventoryRepoMock
	audit     *AdminAuditRepoMock
	uc        *usecase.AdminOrderUsecase
}

// UpdateStatusを使うのでOrderRepoMockとは別に用意
type OrderRepoMock2 struct{ mock.Mock }

func (m *OrderRepoMock2) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock2) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock2) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock2) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock2) FindByPaymentID(ctx context.Context, paymentID string) (model.Order, bool, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *OrderRepoMock2) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type AdminInventoryRepoMock struct{ mock.Mock }

func (m *AdminInventoryRepoMock) SetStock(ctx context.Context, plantID int64, newStock int64) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, plantID int64, qty int64) (bool, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminInventoryRepoMock) IncreaseStock(ctx context.Context, plantID int64, qty int64) error {
	args := m.Called(ctx, plantID, qty)
	return args.Error(0)
}

func (m *AdminInventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used in AdminOrderUsecase tests")
}

func newAdminOrderFixture() *adminOrderFixture {
	f := &adminOrderFixture{
		orders:    new(OrderRepoMock2),
		items:     new(OrderItemRepoMock),
		inventory: new(AdminInventoryRepoMock),
		audit:     new(AdminAuditRepoMock),
	}

	f.tx = &OrderTxManagerMock{Repos: &OrderTxReposMock{
		orders:     f.orders,
		orderItems: f.items,
		inventory:  f.inventory,
	}}

	f.uc = usecase.NewAdminOrderUsecase(f.tx, f.audit)
	return f
}

// =====================
// UpdateStatus
// =====================

// PENDING → SHIPPED は飛ばせない
func TestAdminOrderUsecase_UpdateStatus_InvalidTransition(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusPending}, nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 42, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	assertErrContains(t, err, "invalid status transition")

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// 終端状態からは動かせない
func TestAdminOrderUsecase_UpdateStatus_TerminalState(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusDelivered}, nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 42, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assertErrContains(t, err, "invalid status transition")
}

// 知らないステータスは400
func TestAdminOrderUsecase_UpdateStatus_UnknownStatus(t *testing.T) {
	f := newAdminOrderFixture()

	err := f.uc.UpdateStatus(context.Background(), 1, 42, usecase.AdminUpdateOrderStatusInput{Status: "REFUNDED"})
	assertErrContains(t, err, "invalid status")
}

// 同じステータスなら何もしないで成功
func TestAdminOrderUsecase_UpdateStatus_NoopWhenSame(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusPending}, nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 42, usecase.AdminUpdateOrderStatusInput{Status: "PENDING"})
	assert.NoError(t, err)

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// 確定→発送＋監査ログ
func TestAdminOrderUsecase_UpdateStatus_ConfirmedToShipped(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusConfirmed}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusShipped).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 42 &&
			l.BeforeJSON == `{"status":"CONFIRMED"}` &&
			l.AfterJSON == `{"status":"SHIPPED"}`
	})).Return(nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 42, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	assert.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

// キャンセルは明細分の在庫を戻す
func TestAdminOrderUsecase_UpdateStatus_CancelRestocks(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusPending}, nil)
	f.items.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{OrderID: 42, PlantID: 100, Quantity: 2},
		{OrderID: 42, PlantID: 200, Quantity: 1},
	}, nil)
	f.inventory.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	f.inventory.On("IncreaseStock", mock.Anything, int64(200), int64(1)).Return(nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCanceled).Return(nil)
	f.audit.On("Create", mock.Anything, mock.AnythingOfType("model.AuditLog")).Return(nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 42, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assert.NoError(t, err)

	f.inventory.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

// =====================
// List
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	f := newAdminOrderFixture()

	outs, err := f.uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid page")
}

func TestAdminOrderUsecase_List_Success(t *testing.T) {
	f := newAdminOrderFixture()

	filter := repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "PENDING"}

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("ListAdmin", mock.Anything, filter).Return([]model.Order{
		{ID: 1, UserID: 3, Status: model.OrderStatusPending},
	}, int64(1), nil)
	f.items.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	outs, err := f.uc.List(context.Background(), filter)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(outs))

	f.orders.AssertExpectations(t)
}
