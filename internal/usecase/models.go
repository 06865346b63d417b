package usecase

import (
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// CreateProductReq — запрос на создание товара продавцом.
type CreateProductReq struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
	CategoryID  int64
	StoreID     int64
	ActorID     uuid.UUID
	Image       *ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// ProductCursor — позиция keyset-пагинации: (время создания, id) последней
// возвращённой строки. Стабилен при конкурентных вставках, в отличие от offset.
type ProductCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// ListProductsQuery — параметры выборки товаров.
type ListProductsQuery struct {
	StoreID    *int64
	CategoryID *int64
	Limit      int32
	Cursor     *ProductCursor
}

// ProductView — товар вместе с действующей ценой для внешнего использования.
type ProductView struct {
	Product        domain.Product
	EffectivePrice decimal.Decimal
}

// ListProductsRes — страница товаров и курсор следующей страницы.
type ListProductsRes struct {
	Products   []ProductView
	NextCursor *ProductCursor
}

// UpdateQuantityReq — запрос продавца на изменение остатка.
type UpdateQuantityReq struct {
	ProductID uuid.UUID
	Quantity  int32
	ActorID   uuid.UUID
}

// UpdatePriceReq — запрос продавца на изменение базовой цены.
type UpdatePriceReq struct {
	ProductID uuid.UUID
	Price     decimal.Decimal
	ActorID   uuid.UUID
}

// DISCOUNT USECASE

// DiscountReq — запрос на применение скидки к товару.
type DiscountReq struct {
	Type            domain.DiscountType
	Value           decimal.Decimal
	DiscountedPrice *decimal.Decimal // явная цена со скидкой, переопределяет формулу
	StartDate       *time.Time
	EndDate         *time.Time
	Name            string
	MinQuantity     int32
}

// BulkApplyItemRes — результат применения скидки к одному товару из пакета.
// Ошибка одного товара не откатывает успешные применения к остальным.
type BulkApplyItemRes struct {
	ProductID uuid.UUID
	Err       error
}

// SweepRes — итоги одного прохода по статусам скидок.
type SweepRes struct {
	Activated   int
	Deactivated int
}

// CHECKOUT USECASE

// CheckoutReq — запрос на оформление заказа из корзины пользователя.
type CheckoutReq struct {
	UserID          uuid.UUID
	ShippingAddress string
	City            string
	ContactNumber   string
}

// ORDER USECASE

type UpdateOrderStatusReq struct {
	OrderID uuid.UUID
	Status  domain.OrderStatus
}

// CART USECASE

type CartItemReq struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

// MAPPERS

func NewProductView(product domain.Product, effectivePrice decimal.Decimal) ProductView {
	return ProductView{
		Product:        product,
		EffectivePrice: effectivePrice,
	}
}

func NewProductCursor(product *domain.Product) *ProductCursor {
	return &ProductCursor{
		CreatedAt: product.CreatedAt,
		ID:        product.ID,
	}
}
