package memcache

import (
	"context"

	"github.com/DRSN-tech/marketplace-backend/internal/cfg"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
)

// PriceCache — процессный LRU-кэш цен с TTL. Запасной вариант для окружений
// без Redis и готовый дублёр в тестах: интерфейс тот же.
type PriceCache struct {
	lru *expirable.LRU[uuid.UUID, decimal.Decimal]
}

func NewPriceCache(size int, cfg *cfg.RedisCfg) *PriceCache {
	return &PriceCache{
		lru: expirable.NewLRU[uuid.UUID, decimal.Decimal](size, nil, cfg.PriceTTL),
	}
}

func (p *PriceCache) GetPrice(_ context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	price, ok := p.lru.Get(productID)
	return price, ok, nil
}

func (p *PriceCache) SetPrice(_ context.Context, productID uuid.UUID, price decimal.Decimal) error {
	p.lru.Add(productID, price)
	return nil
}

func (p *PriceCache) InvalidatePrices(_ context.Context, productIDs []uuid.UUID) error {
	for _, id := range productIDs {
		p.lru.Remove(id)
	}
	return nil
}
