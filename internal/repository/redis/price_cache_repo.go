package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/marketplace-backend/internal/cfg"
	"github.com/DRSN-tech/marketplace-backend/pkg/clients"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// PriceCacheRepo хранит эффективные цены товаров в Redis.
// Значение — строковое десятичное представление, ключ — price:<uuid>.
type PriceCacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewPriceCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *PriceCacheRepo {
	return &PriceCacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (p *PriceCacheRepo) GetPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	val, err := p.client.Client.Get(ctx, p.priceKey(productID)).Result()
	if errors.Is(err, r.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, e.Wrap(whereami.WhereAmI(), err)
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		// Битая запись: убираем и считаем промахом.
		p.logger.Warnf("corrupt cached price for %s: %v", productID, err)
		if delErr := p.client.Client.Del(ctx, p.priceKey(productID)).Err(); delErr != nil {
			p.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), delErr))
		}
		return decimal.Zero, false, nil
	}

	return price, true, nil
}

func (p *PriceCacheRepo) SetPrice(ctx context.Context, productID uuid.UUID, price decimal.Decimal) error {
	err := p.client.Client.Set(ctx, p.priceKey(productID), price.String(), p.cfg.PriceTTL).Err()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *PriceCacheRepo) InvalidatePrices(ctx context.Context, productIDs []uuid.UUID) error {
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = p.priceKey(id)
	}

	if err := p.client.Client.Del(ctx, keys...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *PriceCacheRepo) priceKey(id uuid.UUID) string {
	return fmt.Sprintf("price:%s", id)
}
