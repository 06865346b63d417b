package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store описывает магазин продавца. OwnerID используется для проверки прав
// на мутации товаров магазина.
type Store struct {
	ID        int64
	Name      string
	OwnerID   uuid.UUID
	CreatedAt time.Time
}
