package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus — состояние заказа.
type OrderStatus string

const (
	OrderPending         OrderStatus = "PENDING"
	OrderPaymentReceived OrderStatus = "PAYMENT_RECEIVED"
	OrderApproved        OrderStatus = "APPROVED"
	OrderShipped         OrderStatus = "SHIPPED"
	OrderDelivered       OrderStatus = "DELIVERED"
	OrderDeclined        OrderStatus = "DECLINED"
	OrderCancelled       OrderStatus = "CANCELLED"
)

// orderTransitions описывает машину состояний заказа.
// DECLINED и CANCELLED — терминальные ветки, достижимые из PENDING и APPROVED.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:         {OrderPaymentReceived, OrderDeclined, OrderCancelled},
	OrderPaymentReceived: {OrderApproved},
	OrderApproved:        {OrderShipped, OrderDeclined, OrderCancelled},
	OrderShipped:         {OrderDelivered},
}

// CanTransitionTo сообщает, допустим ли переход заказа в состояние next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidOrderStatus сообщает, является ли строка известным статусом заказа.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderPaymentReceived, OrderApproved, OrderShipped,
		OrderDelivered, OrderDeclined, OrderCancelled:
		return true
	}
	return false
}

// Order описывает заказ пользователя.
// TotalAmount фиксируется при создании как сумма строк и никогда не пересчитывается
// из текущих цен товаров.
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	ShippingAddress string
	City            string
	ContactNumber   string
	PaymentMethod   *string
	Status          OrderStatus
	CreatedAt       time.Time
}

// OrderItem — строка заказа. UnitPrice — цена, замороженная в момент оформления:
// последующие изменения цены или скидки товара её не затрагивают.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice decimal.Decimal
}

// NewOrder создаёт заказ в начальном состоянии PENDING.
func NewOrder(userID uuid.UUID, items []OrderItem, shippingAddress, city, contactNumber string) *Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	return &Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
		City:            city,
		ContactNumber:   contactNumber,
		Status:          OrderPending,
	}
}
