package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// priceResolver выдаёт эффективную цену товара через кэш.
// Ошибки кэша деградируют до пересчёта и никогда не роняют запрос.
type priceResolver struct {
	cache  PriceCache
	logger logger.Logger
}

func newPriceResolver(cache PriceCache, logger logger.Logger) *priceResolver {
	return &priceResolver{cache: cache, logger: logger}
}

// Effective возвращает действующую цену: из кэша при попадании,
// иначе вычисляет и кэширует. Кэш хранит цену на товар, а не на (товар, количество):
// порог минимального количества разрешается до обращения сюда.
func (r *priceResolver) Effective(ctx context.Context, product *domain.Product, today time.Time) decimal.Decimal {
	price, ok, err := r.cache.GetPrice(ctx, product.ID)
	if err != nil {
		r.logger.Warnf("price cache read failed: %v", e.Wrap(whereami.WhereAmI(), err))
	} else if ok {
		return price
	}

	price = domain.EffectivePrice(product, today)

	if err := r.cache.SetPrice(ctx, product.ID, price); err != nil {
		r.logger.Warnf("price cache write failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return price
}

// Invalidate синхронно сбрасывает кэш цен указанных товаров.
// Вызывается на каждом пути мутации скидки или базовой цены.
func (r *priceResolver) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}

	if err := r.cache.InvalidatePrices(ctx, ids); err != nil {
		r.logger.Warnf("price cache invalidation failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}
