package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderFixture() (*OrderUC, *mockOrderRepo, *mockStoreRepo) {
	orderRepo := newMockOrderRepo()
	storeRepo := newMockStoreRepo()
	return NewOrderUC(orderRepo, storeRepo, logger.Nop()), orderRepo, storeRepo
}

func pendingOrder(repo *mockOrderRepo, userID uuid.UUID) *domain.Order {
	order, _ := repo.Create(context.Background(), &domain.Order{
		UserID: userID,
		Status: domain.OrderPending,
	})
	return order
}

func TestUpdateStatus_AllowedTransition(t *testing.T) {
	uc, orderRepo, _ := newOrderFixture()
	order := pendingOrder(orderRepo, uuid.New())

	updated, err := uc.UpdateStatus(context.Background(), &UpdateOrderStatusReq{
		OrderID: order.ID,
		Status:  domain.OrderPaymentReceived,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPaymentReceived, updated.Status)

	stored, err := orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaymentReceived, stored.Status)
}

func TestUpdateStatus_Rejected(t *testing.T) {
	uc, orderRepo, _ := newOrderFixture()
	order := pendingOrder(orderRepo, uuid.New())

	// Перепрыгнуть через оплату нельзя.
	_, err := uc.UpdateStatus(context.Background(), &UpdateOrderStatusReq{
		OrderID: order.ID,
		Status:  domain.OrderShipped,
	})
	assert.ErrorIs(t, err, e.ErrInvalidStatusTransition)

	// Неизвестный статус отклоняется до чтения заказа.
	_, err = uc.UpdateStatus(context.Background(), &UpdateOrderStatusReq{
		OrderID: order.ID,
		Status:  "REFUNDED",
	})
	assert.ErrorIs(t, err, e.ErrInvalidStatusTransition)

	stored, err := orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, stored.Status)
}

func TestGetStoreOrders_OwnerOnly(t *testing.T) {
	uc, _, storeRepo := newOrderFixture()
	ownerID := uuid.New()
	storeRepo.stores[7] = &domain.Store{ID: 7, Name: "shop", OwnerID: ownerID}

	_, err := uc.GetStoreOrders(context.Background(), 7, uuid.New())
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	_, err = uc.GetStoreOrders(context.Background(), 7, ownerID)
	assert.NoError(t, err)

	_, err = uc.GetStoreOrders(context.Background(), 8, ownerID)
	assert.ErrorIs(t, err, e.ErrStoreNotFound)
}

func TestSetPaymentMethod(t *testing.T) {
	uc, orderRepo, _ := newOrderFixture()
	order := pendingOrder(orderRepo, uuid.New())

	err := uc.SetPaymentMethod(context.Background(), order.ID, "")
	assert.ErrorIs(t, err, e.ErrInvalidPaymentMethod)

	err = uc.SetPaymentMethod(context.Background(), uuid.New(), "card")
	assert.ErrorIs(t, err, e.ErrOrderNotFound)

	err = uc.SetPaymentMethod(context.Background(), order.ID, "card")
	require.NoError(t, err)

	stored, err := orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, "card", *stored.PaymentMethod)
}
