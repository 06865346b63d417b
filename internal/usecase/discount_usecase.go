package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// DiscountUC реализует единственный канонический путь мутации скидок:
// применение, снятие, пакетное применение и календарный проход по статусам.
// Каждая мутация синхронно сбрасывает кэш цены затронутого товара.
type DiscountUC struct {
	productRepo ProductRepository
	prices      *priceResolver
	logger      logger.Logger
	now         func() time.Time
}

func NewDiscountUC(productRepo ProductRepository, cache PriceCache, logger logger.Logger) *DiscountUC {
	return &DiscountUC{
		productRepo: productRepo,
		prices:      newPriceResolver(cache, logger),
		logger:      logger,
		now:         time.Now,
	}
}

// ApplyDiscount применяет скидку к товару. Невалидный запрос отклоняется целиком,
// без частичной записи. Флаг активности ставится сразу, только если окно действия
// уже включает сегодняшний день; иначе скидку позже включит календарный проход.
func (d *DiscountUC) ApplyDiscount(ctx context.Context, productID uuid.UUID, req *DiscountReq) (*domain.Product, error) {
	const op = "DiscountUC.ApplyDiscount"

	product, err := d.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := validateDiscount(req, product.Price); err != nil {
		return nil, e.Wrap(op, err)
	}

	discount := &domain.Discount{
		Type:        req.Type,
		Value:       req.Value,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Name:        req.Name,
		MinQuantity: req.MinQuantity,
	}

	discountPrice := d.discountPrice(product, req)
	discount.Price = &discountPrice
	discount.Active = discount.WindowContains(d.now())

	product.Discount = discount

	saved, err := d.productRepo.UpdateWithVersion(ctx, product)
	if errors.Is(err, e.ErrVersionConflict) {
		return nil, e.Wrap(op, e.ErrConcurrentModification)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	d.prices.Invalidate(ctx, productID)

	return saved, nil
}

// RemoveDiscount сбрасывает скидочное состояние товара к неактивным значениям по умолчанию.
func (d *DiscountUC) RemoveDiscount(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	const op = "DiscountUC.RemoveDiscount"

	product, err := d.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product.Discount = nil

	saved, err := d.productRepo.UpdateWithVersion(ctx, product)
	if errors.Is(err, e.ErrVersionConflict) {
		return nil, e.Wrap(op, e.ErrConcurrentModification)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	d.prices.Invalidate(ctx, productID)

	return saved, nil
}

// BulkApplyDiscount применяет один и тот же запрос к каждому товару независимо.
// Каждая позиция — собственная единица работы: ошибка не откатывает остальных.
func (d *DiscountUC) BulkApplyDiscount(ctx context.Context, productIDs []uuid.UUID, req *DiscountReq) []BulkApplyItemRes {
	results := make([]BulkApplyItemRes, 0, len(productIDs))
	for _, id := range productIDs {
		_, err := d.ApplyDiscount(ctx, id, req)
		if err != nil {
			d.logger.Warnf("bulk discount apply failed: product_id=%s: %v", id, err)
		}
		results = append(results, BulkApplyItemRes{ProductID: id, Err: err})
	}

	return results
}

// SweepDiscountStatuses — идемпотентная точка входа календарного прохода.
// Единственный путь, который включает и выключает скидки из-за течения времени.
// Каждый переворот — отдельная охраняемая запись плюс сброс кэша этого товара;
// ошибка по одному товару логируется, проход продолжается.
// Повторный запуск в тот же день не производит дополнительных записей.
func (d *DiscountUC) SweepDiscountStatuses(ctx context.Context, today time.Time) (*SweepRes, error) {
	const op = "DiscountUC.SweepDiscountStatuses"

	today = domain.DateOnly(today)
	res := &SweepRes{}

	toActivate, err := d.productRepo.ListDiscountsToActivate(ctx, today)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	for _, id := range toActivate {
		flipped, err := d.productRepo.ActivateDiscount(ctx, id, today)
		if err != nil {
			d.logger.Warnf("discount activation failed: product_id=%s: %v", id, e.Wrap(whereami.WhereAmI(), err))
			continue
		}
		if flipped {
			d.prices.Invalidate(ctx, id)
			res.Activated++
		}
	}

	toDeactivate, err := d.productRepo.ListDiscountsToDeactivate(ctx, today)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	for _, id := range toDeactivate {
		flipped, err := d.productRepo.DeactivateDiscount(ctx, id, today)
		if err != nil {
			d.logger.Warnf("discount deactivation failed: product_id=%s: %v", id, e.Wrap(whereami.WhereAmI(), err))
			continue
		}
		if flipped {
			d.prices.Invalidate(ctx, id)
			res.Deactivated++
		}
	}

	return res, nil
}

// discountPrice возвращает сохраняемую цену со скидкой: явное переопределение
// из запроса либо результат формулы.
func (d *DiscountUC) discountPrice(product *domain.Product, req *DiscountReq) decimal.Decimal {
	if req.DiscountedPrice != nil {
		return *req.DiscountedPrice
	}

	return domain.DiscountedPrice(product.Price, req.Type, req.Value)
}

// validateDiscount проверяет параметры скидки относительно текущей базовой цены.
func validateDiscount(req *DiscountReq, price decimal.Decimal) error {
	switch req.Type {
	case domain.DiscountPercentage:
		if req.Value.LessThanOrEqual(decimal.Zero) || req.Value.GreaterThan(decimal.NewFromInt(100)) {
			return e.ErrInvalidDiscountValue
		}
	case domain.DiscountFixedAmount:
		if req.Value.LessThanOrEqual(decimal.Zero) {
			return e.ErrInvalidDiscountValue
		}
		if req.Value.GreaterThanOrEqual(price) {
			return e.ErrDiscountExceedsPrice
		}
	default:
		return e.ErrInvalidDiscountType
	}

	if req.StartDate != nil && req.EndDate != nil && domain.DateOnly(*req.StartDate).After(domain.DateOnly(*req.EndDate)) {
		return e.ErrInvalidDiscountWindow
	}

	if req.MinQuantity < 1 {
		return e.ErrInvalidMinQuantity
	}

	return nil
}
