package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, query *ListProductsQuery) ([]domain.Product, error)
	BestSellers(ctx context.Context, limit int32) ([]domain.Product, error)
	// UpdateWithVersion записывает изменяемые поля товара условно по токену версии.
	// Возвращает e.ErrVersionConflict, если строку успела изменить другая транзакция.
	UpdateWithVersion(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// DecrementStock атомарно списывает остаток и увеличивает счётчик продаж
	// условно по токену версии.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int32, version int32) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListDiscountsToActivate(ctx context.Context, today time.Time) ([]uuid.UUID, error)
	ListDiscountsToDeactivate(ctx context.Context, today time.Time) ([]uuid.UUID, error)
	// ActivateDiscount включает скидку охраняемым UPDATE. Возвращает false,
	// если к моменту записи условия включения уже не выполнялись.
	ActivateDiscount(ctx context.Context, id uuid.UUID, today time.Time) (bool, error)
	DeactivateDiscount(ctx context.Context, id uuid.UUID, today time.Time) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	// ListByStore возвращает заказы, содержащие товары магазина,
	// с отфильтрованными до этого магазина строками.
	ListByStore(ctx context.Context, storeID int64) ([]domain.Order, error)
	// UpdateStatus переводит заказ из from в to охраняемым UPDATE.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	SetPaymentMethod(ctx context.Context, id uuid.UUID, method string) error
}

type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type StoreRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
