package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderPending, OrderPaymentReceived},
		{OrderPending, OrderDeclined},
		{OrderPending, OrderCancelled},
		{OrderPaymentReceived, OrderApproved},
		{OrderApproved, OrderShipped},
		{OrderApproved, OrderDeclined},
		{OrderApproved, OrderCancelled},
		{OrderShipped, OrderDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderPending, OrderShipped},
		{OrderPending, OrderDelivered},
		{OrderPaymentReceived, OrderShipped},
		{OrderShipped, OrderCancelled},
		{OrderDelivered, OrderPending},
		{OrderCancelled, OrderPending},
		{OrderDeclined, OrderApproved},
		{OrderDelivered, OrderDelivered},
	}
	for _, tr := range denied {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderPending))
	assert.True(t, ValidOrderStatus(OrderDelivered))
	assert.False(t, ValidOrderStatus(OrderStatus("UNKNOWN")))
	assert.False(t, ValidOrderStatus(OrderStatus("")))
}

func TestNewOrder_TotalFromFrozenPrices(t *testing.T) {
	items := []OrderItem{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("80.00")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("19.99")},
	}

	order := NewOrder(uuid.New(), items, "Тверская 1", "Москва", "+79990000000")

	assert.Equal(t, OrderPending, order.Status)
	assert.True(t, decimal.RequireFromString("179.99").Equal(order.TotalAmount))
	assert.Len(t, order.Items, 2)
}
