package usecase

import (
	"context"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
)

// OrderUC — чтение заказов и переводы по машине состояний.
type OrderUC struct {
	orderRepo OrderRepository
	storeRepo StoreRepository
	logger    logger.Logger
}

func NewOrderUC(orderRepo OrderRepository, storeRepo StoreRepository, logger logger.Logger) *OrderUC {
	return &OrderUC{
		orderRepo: orderRepo,
		storeRepo: storeRepo,
		logger:    logger,
	}
}

func (o *OrderUC) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const op = "OrderUC.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

func (o *OrderUC) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	const op = "OrderUC.GetUserOrders"

	orders, err := o.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// GetStoreOrders возвращает заказы, содержащие товары магазина.
// Доступ только владельцу магазина.
func (o *OrderUC) GetStoreOrders(ctx context.Context, storeID int64, actorID uuid.UUID) ([]domain.Order, error) {
	const op = "OrderUC.GetStoreOrders"

	store, err := o.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if store.OwnerID != actorID {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	orders, err := o.orderRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// UpdateStatus переводит заказ в новое состояние. Переход проверяется по
// машине состояний от текущего статуса, прочитанного из хранилища, и пишется
// охраняемым UPDATE: гонка двух переводов завершится ошибкой у проигравшего.
func (o *OrderUC) UpdateStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error) {
	const op = "OrderUC.UpdateStatus"

	if !domain.ValidOrderStatus(req.Status) {
		return nil, e.Wrap(op, e.ErrInvalidStatusTransition)
	}

	order, err := o.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, e.Wrap(op, e.ErrInvalidStatusTransition)
	}

	if err := o.orderRepo.UpdateStatus(ctx, req.OrderID, order.Status, req.Status); err != nil {
		return nil, e.Wrap(op, err)
	}

	order.Status = req.Status

	return order, nil
}

// SetPaymentMethod фиксирует способ оплаты заказа.
func (o *OrderUC) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method string) error {
	const op = "OrderUC.SetPaymentMethod"

	if method == "" {
		return e.Wrap(op, e.ErrInvalidPaymentMethod)
	}

	if _, err := o.orderRepo.GetByID(ctx, orderID); err != nil {
		return e.Wrap(op, err)
	}

	if err := o.orderRepo.SetPaymentMethod(ctx, orderID, method); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
