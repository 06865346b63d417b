package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/cfg"
	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/jitter"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CheckoutUC оформляет заказ из корзины пользователя: снимок каждого товара,
// проверка остатка, заморозка цены, условное списание остатка, заказ, очистка корзины.
// Всё — одна атомарная единица работы: либо заказ создан и остатки списаны,
// либо ни того, ни другого.
type CheckoutUC struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	prices      *priceResolver
	logger      logger.Logger
	cfg         *cfg.CheckoutCfg
	now         func() time.Time
}

func NewCheckoutUC(
	cartRepo CartRepository,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	cache PriceCache,
	logger logger.Logger,
	cfg *cfg.CheckoutCfg,
) *CheckoutUC {
	return &CheckoutUC{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		prices:      newPriceResolver(cache, logger),
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Checkout оформляет заказ по текущему содержимому корзины пользователя.
func (c *CheckoutUC) Checkout(ctx context.Context, req *CheckoutReq) (*domain.Order, error) {
	const op = "CheckoutUC.Checkout"

	var err error

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	cartItems, err := c.cartRepo.ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(cartItems) == 0 {
		err = e.ErrEmptyCart
		return nil, e.Wrap(op, err)
	}

	today := c.now()

	orderItems := make([]domain.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		var reserved *reservation
		reserved, err = c.reserveStock(ctx, item.ProductID, item.Quantity, today)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		orderItems = append(orderItems, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: reserved.unitPrice,
		})

		// Событие об изменении остатка уходит через outbox в той же транзакции:
		// доставка at-least-once, но никогда — для отменённого списания.
		var event *OutboxEvent
		event, err = NewStockChangedEvent(reserved.product.ID, reserved.product.Quantity, today)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if _, err = c.outboxRepo.Create(ctx, event); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	order := domain.NewOrder(req.UserID, orderItems, req.ShippingAddress, req.City, req.ContactNumber)

	created, err := c.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Корзина очищается последней, когда заказ уже записан.
	if err = c.cartRepo.DeleteByUser(ctx, req.UserID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

type reservation struct {
	product   *domain.Product
	unitPrice decimal.Decimal
}

// reserveStock списывает остаток товара условной записью по токену версии.
// При конфликте версий перечитывает строку и повторяет в пределах бюджета попыток,
// после чего отдаёт ErrConcurrentModification — перепродажа исключена.
func (c *CheckoutUC) reserveStock(ctx context.Context, productID uuid.UUID, quantity int32, today time.Time) (*reservation, error) {
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := jitter.ExponentialBackoff(c.cfg.BackoffBase, c.cfg.BackoffMax, attempt-1, jitter.DefaultJitter)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		// Свежее чтение строки: цена, скидка, остаток и версия берутся вместе.
		product, err := c.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}

		if quantity > product.Quantity {
			return nil, e.Wrap(product.Name, e.ErrInsufficientStock)
		}

		unitPrice := c.unitPrice(ctx, product, today)

		updated, err := c.productRepo.DecrementStock(ctx, productID, quantity, product.Version)
		if errors.Is(err, e.ErrVersionConflict) {
			c.logger.Debugf("stock version conflict, retrying: product_id=%s attempt=%d", productID, attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		return &reservation{product: updated, unitPrice: unitPrice}, nil
	}

	return nil, e.Wrap(productID.String(), e.ErrConcurrentModification)
}

// unitPrice возвращает замораживаемую цену строки заказа.
// Скидка с порогом минимального количества применяется, только если текущий
// остаток товара дотягивает до порога; этот выбор делается до обращения к кэшу,
// поэтому кэш остаётся по-товарным.
func (c *CheckoutUC) unitPrice(ctx context.Context, product *domain.Product, today time.Time) decimal.Decimal {
	if d := product.Discount; d != nil && d.Active && d.MinQuantity > product.Quantity {
		return product.Price
	}

	return c.prices.Effective(ctx, product, today)
}
