package usecase

import (
	"context"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
)

// CartUC — корзина пользователя. Количество в корзине не резервирует остаток:
// резервирование происходит только при оформлении заказа.
type CartUC struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	logger      logger.Logger
}

func NewCartUC(cartRepo CartRepository, productRepo ProductRepository, logger logger.Logger) *CartUC {
	return &CartUC{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// AddItem кладёт товар в корзину; повторное добавление наращивает количество.
func (c *CartUC) AddItem(ctx context.Context, req *CartItemReq) (*domain.CartItem, error) {
	const op = "CartUC.AddItem"

	if req.Quantity < 1 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	if _, err := c.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, e.Wrap(op, err)
	}

	item, err := c.cartRepo.Upsert(ctx, domain.NewCartItem(req.UserID, req.ProductID, req.Quantity))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return item, nil
}

// UpdateItemQuantity задаёт количество позиции; ноль удаляет её из корзины.
func (c *CartUC) UpdateItemQuantity(ctx context.Context, req *CartItemReq) error {
	const op = "CartUC.UpdateItemQuantity"

	if req.Quantity < 0 {
		return e.Wrap(op, e.ErrInvalidQuantity)
	}

	if req.Quantity == 0 {
		if err := c.cartRepo.Delete(ctx, req.UserID, req.ProductID); err != nil {
			return e.Wrap(op, err)
		}
		return nil
	}

	if err := c.cartRepo.UpdateQuantity(ctx, req.UserID, req.ProductID, req.Quantity); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c *CartUC) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	const op = "CartUC.RemoveItem"

	if err := c.cartRepo.Delete(ctx, userID, productID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c *CartUC) GetUserCart(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	const op = "CartUC.GetUserCart"

	items, err := c.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return items, nil
}
