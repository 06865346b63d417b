package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
// Скидочные колонки денормализованы в ту же строку: скидка — это состояние
// товара, а не отдельная сущность, и меняется под тем же токеном версии.
type ProductModel struct {
	ID                  uuid.UUID        `db:"id"`
	Name                string           `db:"name"`
	Description         string           `db:"description"`
	Price               decimal.Decimal  `db:"price"`
	ImageURL            string           `db:"image_url"`
	Quantity            int32            `db:"quantity"`
	CategoryID          int64            `db:"category_id"`
	StoreID             int64            `db:"store_id"`
	IsAvailable         bool             `db:"is_available"`
	TotalSell           int32            `db:"total_sell"`
	Version             int32            `db:"version"`
	DiscountType        *string          `db:"discount_type"`
	DiscountValue       *decimal.Decimal `db:"discount_value"`
	DiscountPrice       *decimal.Decimal `db:"discount_price"`
	DiscountStartDate   *time.Time       `db:"discount_start_date"`
	DiscountEndDate     *time.Time       `db:"discount_end_date"`
	DiscountName        *string          `db:"discount_name"`
	DiscountMinQuantity int32            `db:"discount_min_quantity"`
	DiscountActive      bool             `db:"discount_active"`
	CreatedAt           time.Time        `db:"created_at"`
	UpdatedAt           *time.Time       `db:"updated_at"`
}

// StoreModel представляет запись таблицы stores в PostgreSQL.
type StoreModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	OwnerID   uuid.UUID `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID              uuid.UUID       `db:"id"`
	UserID          uuid.UUID       `db:"user_id"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	ShippingAddress string          `db:"shipping_address"`
	City            string          `db:"city"`
	ContactNumber   string          `db:"contact_number"`
	PaymentMethod   *string         `db:"payment_method"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}

// OrderItemModel представляет запись таблицы order_items в PostgreSQL.
type OrderItemModel struct {
	ID        uuid.UUID       `db:"id"`
	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int32           `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

// CartItemModel представляет запись таблицы cart_items в PostgreSQL.
type CartItemModel struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int32     `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID        int64      `db:"id"`
	EventID   string     `db:"event_id"`
	EventType string     `db:"event_type"`
	ProductID uuid.UUID  `db:"product_id"`
	Payload   []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
