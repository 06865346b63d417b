package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem — позиция корзины пользователя.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	CreatedAt time.Time
}

func NewCartItem(userID, productID uuid.UUID, quantity int32) *CartItem {
	return &CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
}
