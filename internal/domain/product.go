package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product описывает товар продавца.
// Version — токен оптимистичной блокировки: инкрементируется при каждой успешной записи,
// сравнивается в условном UPDATE для обнаружения потерянных обновлений.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Quantity    int32
	CategoryID  int64
	StoreID     int64
	IsAvailable bool
	TotalSell   int32
	Version     int32
	Discount    *Discount
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name, description string, price decimal.Decimal, quantity int32, categoryID, storeID int64, imageURL string) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		Quantity:    quantity,
		CategoryID:  categoryID,
		StoreID:     storeID,
		IsAvailable: true,
	}
}
